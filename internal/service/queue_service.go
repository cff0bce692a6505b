package service

import (
	"context"
	"fmt"

	"entangle_backend/internal/domain"
	"entangle_backend/internal/logger"
)

// QueueService pairs waiting players into fresh sessions. A player enqueues,
// and when the two oldest entries have opposite genders a session is opened
// with the older one as host and both are removed from the queue.
type QueueService struct {
	waiting  WaitingStore
	sessions *SessionService
	gameSize int
}

func NewQueueService(waiting WaitingStore, sessions *SessionService, gameSize int) *QueueService {
	if gameSize < domain.MinGameSize || gameSize > domain.MaxGameSize {
		gameSize = domain.MinGameSize
	}
	return &QueueService{waiting: waiting, sessions: sessions, gameSize: gameSize}
}

type EnqueueResult struct {
	SessionID *int64 `json:"session_id"`
}

// Enqueue registers the player in the waiting queue and tries to form a pair.
// Returns the new session id when a pair was formed, nil while still waiting.
func (q *QueueService) Enqueue(ctx context.Context, playerID int64, gender domain.Gender) (*EnqueueResult, error) {
	if err := q.waiting.Upsert(ctx, playerID, gender); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}

	entries, err := q.waiting.ListOldest(ctx, 2*q.gameSize)
	if err != nil {
		return nil, fmt.Errorf("list waiting: %w", err)
	}
	if len(entries) < 2 {
		return &EnqueueResult{}, nil
	}

	// Oldest entry anchors the pair; scan forward for the first entry of the
	// opposite gender.
	host := entries[0]
	var mate *WaitingEntry
	for _, e := range entries[1:] {
		if e.Gender == host.Gender.Opposite() {
			mate = e
			break
		}
	}
	if mate == nil {
		return &EnqueueResult{}, nil
	}

	created, err := q.sessions.Create(ctx, host.PlayerID, q.gameSize)
	if err != nil {
		return nil, fmt.Errorf("create paired session: %w", err)
	}
	if _, err := q.sessions.Join(ctx, created.SessionID, mate.PlayerID); err != nil {
		return nil, fmt.Errorf("join paired session: %w", err)
	}
	if err := q.waiting.Remove(ctx, []int64{host.PlayerID, mate.PlayerID}); err != nil {
		logger.Warn("failed to remove paired players from queue",
			"session_id", created.SessionID, "error", err)
	}

	logger.Info("paired players from queue",
		"session_id", created.SessionID, "host_id", host.PlayerID, "mate_id", mate.PlayerID)
	return &EnqueueResult{SessionID: &created.SessionID}, nil
}
