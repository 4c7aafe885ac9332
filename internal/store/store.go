// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/kneeoa/internal/domain"
)

// Repository persists visitors and their per-tab session state.
type Repository interface {
	// GetUser retrieves a user by their user ID. It returns nil, nil when
	// the user does not exist.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// UpdateLastSeen updates the last_seen_at timestamp for a user.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// GetSession retrieves the state of one tab. It returns nil, nil when
	// no state has been saved yet.
	GetSession(ctx context.Context, userID, sessionID string) (*domain.SessionRecord, error)

	// UpsertSession creates or replaces the state of one tab.
	UpsertSession(ctx context.Context, rec *domain.SessionRecord) error

	// DeleteSession removes the state of one tab.
	DeleteSession(ctx context.Context, userID, sessionID string) error

	// ListExpiredSessions returns sessions idle for longer than ttl.
	ListExpiredSessions(ctx context.Context, ttl time.Duration) ([]*domain.SessionRecord, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
