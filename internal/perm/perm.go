package perm

import (
	"crypto/subtle"
	"errors"
	"strings"

	"mandalart/internal/model"
)

// ErrAdminNotConfigured is returned when no admin password is set.
var ErrAdminNotConfigured = errors.New("admin password not configured")

// CanEditMandalart enforces ownership for mutating a mandalart.
//
// Rules:
// - Only the user who created it can edit or delete it.
// - Everyone else (including admins) goes through delete requests.
func CanEditMandalart(userID string, m *model.Mandalart) bool {
	if m == nil {
		return false
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	return m.UserID == userID
}

// CanViewMandalart reports whether userID may read m. Public mandalarts are
// readable by anyone; private ones only by their owner or an admin.
func CanViewMandalart(userID string, m *model.Mandalart, admin bool) bool {
	if m == nil {
		return false
	}
	if m.IsPublic || admin {
		return true
	}
	return CanEditMandalart(userID, m)
}

// CheckAdminPassword compares given against the configured password in
// constant time.
func CheckAdminPassword(configured, given string) (bool, error) {
	if configured == "" {
		return false, ErrAdminNotConfigured
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1, nil
}
