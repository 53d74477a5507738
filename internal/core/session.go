package core

import "time"

// Session is the authenticated caller context handed to every service call.
type Session struct {
	UserID    string
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the session identifies a user.
func (s Session) Valid() bool {
	return s.UserID != ""
}
