// Package session carries the identity of the active user. It is built
// once at login by the host application and injected explicitly; the
// engine never reaches into device storage for the current user.
package session

import "classline/pkg/models"

type Session struct {
	UserID   string
	Role     models.Role
	AuthCode string
}

// Valid reports whether the session carries enough identity to act.
func (s Session) Valid() bool {
	return s.UserID != "" && (s.Role == models.RoleStaff || s.Role == models.RoleStudent) && s.AuthCode != ""
}
