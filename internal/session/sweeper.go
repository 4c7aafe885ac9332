package session

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 5 * time.Minute

// CleanupCallback is called for every session removed by the sweeper.
type CleanupCallback func(key Key)

// StartSweeper runs a background goroutine that periodically removes
// sessions idle for longer than ttl.
func StartSweeper(ctx context.Context, m *Manager, ttl time.Duration, onCleanup CleanupCallback) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				m.Sweep(ctx, ttl, onCleanup)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Sweep removes expired sessions once and returns how many were removed.
func (m *Manager) Sweep(ctx context.Context, ttl time.Duration, onCleanup CleanupCallback) int {
	expired, err := m.repo.ListExpiredSessions(ctx, ttl)
	if err != nil {
		slog.Error("Session sweeper failed to list expired sessions", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	slog.Info("Session sweeper found expired sessions", "count", len(expired))

	removed := 0
	for _, rec := range expired {
		key := Key{UserID: rec.UserID, SessionID: rec.SessionID}
		if m.expire(ctx, key, ttl) {
			removed++
			if onCleanup != nil {
				onCleanup(key)
			}
		}
	}

	slog.Info("Session sweeper cleanup completed", "removed", removed)
	return removed
}

// expire deletes key if it is still idle once its lock is held.
func (m *Manager) expire(ctx context.Context, key Key, ttl time.Duration) bool {
	unlock := m.lock(key)
	defer unlock()

	rec, err := m.repo.GetSession(ctx, key.UserID, key.SessionID)
	if err != nil {
		slog.Warn("Session sweeper failed to reload session", "error", err, "session", key.String())
		return false
	}
	if rec == nil || !rec.Expired(m.now(), ttl) {
		return false
	}
	if err := m.repo.DeleteSession(ctx, key.UserID, key.SessionID); err != nil {
		slog.Warn("Session sweeper failed to delete session", "error", err, "session", key.String())
		return false
	}
	return true
}
