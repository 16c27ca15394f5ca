package models

import "time"

// SessionToken is the persisted half of a session. The secret it was derived
// from lives only on the client.
type SessionToken struct {
	TokenHash      string
	UserIdentifier string
	// UserAgent is the fingerprint (hex SHA-1) of the client's User-Agent.
	UserAgent string
	ExpiresAt time.Time
	Created   time.Time
	Updated   time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
