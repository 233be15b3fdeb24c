package cli

import (
	"errors"
	"fmt"

	"mandalart/internal/grid"
	"mandalart/internal/mutate"
)

// describeErr phrases service errors for a terminal user.
func describeErr(err error) string {
	var owner mutate.OwnerOnlyError
	if errors.As(err, &owner) {
		return fmt.Sprintf("permission denied: mandalart %s belongs to another user (only the owner may change it)", owner.MandalartID)
	}
	var verrs grid.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg := "grid is incomplete or invalid:"
		for _, v := range verrs {
			msg += "\n  - " + v.Error()
		}
		return msg
	}
	return err.Error()
}
