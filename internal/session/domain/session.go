package domain

import "time"

// Session is one refresh-token record, one per logged-in device. SecretHash is
// a bcrypt hash of the raw refresh token; the raw value is never persisted.
type Session struct {
	ID         string
	UserID     string
	SecretHash string
	Device     string
	IPAddress  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Live reports whether the session is still valid at the given instant.
// Expired sessions are inert: excluded from validation and eventually purged.
func (s *Session) Live(now time.Time) bool {
	return !s.ExpiresAt.Before(now)
}
