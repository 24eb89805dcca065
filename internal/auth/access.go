// Package auth holds the access control model and the identity/session
// lifecycle.
package auth

import (
	"planpro/internal/models"
)

// CanAccess reports whether user may act on module at the desired level.
// Only APPROVED users may act at all; a PENDING or DISABLED user is denied
// regardless of stored permissions. VIEW is satisfied by VIEW or EDIT;
// EDIT only by EDIT.
func CanAccess(user *models.User, module string, desired models.AccessLevel) bool {
	if user == nil || user.Status != models.StatusApproved {
		return false
	}
	return user.Permissions.Level(module).Satisfies(desired)
}

// CanManageUsers reports whether user may touch the user directory and job
// titles. This is ADMIN-only functionality and is not expressed as a module
// key: the ADMIN role implicitly holds EDIT on it.
func CanManageUsers(user *models.User) bool {
	return user != nil && user.Status == models.StatusApproved && user.IsAdmin()
}
