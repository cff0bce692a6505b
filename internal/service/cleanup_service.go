package service

import (
	"context"
	"time"

	"entangle_backend/internal/logger"
)

// CleanupService deletes sessions past the grace age that nobody occupies.
// Run one-shot from the cleanup binary or on a ticker inside the app.
type CleanupService struct {
	sessions SessionStore
	seats    SeatStore
	intents  IntentStore
	grace    time.Duration
	now      func() time.Time
}

func NewCleanupService(sessions SessionStore, seats SeatStore, intents IntentStore, grace time.Duration) *CleanupService {
	return &CleanupService{sessions: sessions, seats: seats, intents: intents, grace: grace, now: time.Now}
}

// Sweep deletes all empty sessions older than the grace period and returns
// how many were removed.
func (c *CleanupService) Sweep(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.grace)
	old, err := c.sessions.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, sess := range old {
		count, err := c.seats.CountBySession(ctx, sess.ID)
		if err != nil {
			logger.Warn("cleanup: count players failed", "session_id", sess.ID, "error", err)
			continue
		}
		if count > 0 {
			continue
		}
		if err := c.intents.DeleteBySession(ctx, sess.ID); err != nil {
			logger.Warn("cleanup: delete intents failed", "session_id", sess.ID, "error", err)
		}
		if err := c.sessions.Delete(ctx, sess.ID); err != nil {
			logger.Warn("cleanup: delete session failed", "session_id", sess.ID, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		logger.Info("cleanup removed empty sessions", "count", deleted)
	}
	return deleted, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (c *CleanupService) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := c.Sweep(ctx); err != nil {
				logger.Error("cleanup sweep failed", "error", err)
			}
		}
	}
}
