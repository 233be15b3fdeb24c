package mutate

import (
	"errors"
	"fmt"

	"mandalart/internal/model"
)

// ErrReasonRequired is returned for a delete request without a reason.
var ErrReasonRequired = errors.New("reason required")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type OwnerOnlyError struct {
	UserID      string
	OwnerUserID string
	MandalartID string
}

func (e OwnerOnlyError) Error() string {
	// Keep this generic; CLI/web can wrap with more specific phrasing.
	return "owner-only"
}

// NotPendingError is returned when moderating a request that was already
// approved or rejected.
type NotPendingError struct {
	RequestID string
	Status    model.RequestStatus
}

func (e NotPendingError) Error() string {
	return fmt.Sprintf("delete request %s is %s, not pending", e.RequestID, e.Status)
}
