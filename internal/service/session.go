package service

import "strings"

// Session identifies the authenticated caller. It is built once per request
// from the verified token and passed explicitly into services; no service
// reads identity from ambient state. Lifecycle follows the token: created on
// authentication, refreshed on renewal, gone on sign-out.
type Session struct {
	UserID string
	Role   string
	Banned bool
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(s.Role), "admin")
}

// IsAnonymous reports whether no user is bound to the session.
func (s Session) IsAnonymous() bool {
	return strings.TrimSpace(s.UserID) == ""
}
