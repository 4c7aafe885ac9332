package domain

import (
	"time"
)

// SessionRecord is the persisted form of one browser tab's session state.
// StateJSON is opaque to the store; the session package owns its shape.
type SessionRecord struct {
	UserID    string
	SessionID string
	StateJSON string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the record has been idle longer than ttl at now.
func (r *SessionRecord) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.UpdatedAt) > ttl
}
