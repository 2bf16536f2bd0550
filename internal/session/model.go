package session

import "strconv"

// RoleCode identifies which dashboard area a user may enter. Values match the
// backend's user_type field.
type RoleCode int

const (
	RoleNone       RoleCode = 0
	RoleCoach      RoleCode = 3
	RoleSuperAdmin RoleCode = 9
)

// String returns the role's name, or "user_type N" for codes this app does not know.
func (r RoleCode) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleCoach:
		return "coach"
	case RoleSuperAdmin:
		return "super-admin"
	}
	return "user_type " + strconv.Itoa(int(r))
}

// User is the authenticated account.
type User struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  RoleCode `json:"role"`
}

// Session is the currently authenticated user in this client context.
//
// Authenticated implies User != nil and Token != "". Hydrated never goes back
// to false once set. Generation increases on every identity change (login
// result, logout, reset) and lets observers tell a new session from a re-read
// of the same one.
type Session struct {
	User          *User
	Token         string
	Authenticated bool
	Hydrated      bool
	Loading       bool
	Error         string
	Generation    uint64
}

// UserID returns the local user id, or 0 when nobody is logged in.
func (s Session) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

// Role returns the user's role code, or RoleNone when nobody is logged in.
func (s Session) Role() RoleCode {
	if s.User == nil {
		return RoleNone
	}
	return s.User.Role
}

// clone returns a copy that shares nothing mutable with s.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
