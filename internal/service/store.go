package service

import (
	"context"
	"time"

	"entangle_backend/internal/domain"
)

// The persistence collaborator, split per record type. The pgx repositories
// satisfy these; tests use in-memory fakes. No multi-row transaction is
// assumed anywhere.

type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id int64) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	// TryAdvanceTurn atomically bumps turn_index from fromTurn to fromTurn+1
	// and sets the next deadline. Returns false when another closer already
	// advanced past fromTurn; exactly one racing attempt wins.
	TryAdvanceTurn(ctx context.Context, id int64, fromTurn int, deadline time.Time) (bool, error)
	SetNeedsReconcile(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type SeatStore interface {
	Create(ctx context.Context, sa *domain.SeatAssignment) error
	Get(ctx context.Context, sessionID, playerID int64) (*domain.SeatAssignment, error)
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.SeatAssignment, error)
	CountBySession(ctx context.Context, sessionID int64) (int, error)
	AssignSeat(ctx context.Context, sessionID, playerID int64, seat int, pickedBy *int64) error
	SetPickTarget(ctx context.Context, sessionID, pickerID, targetID int64) error
	ClearSeatsExceptHost(ctx context.Context, sessionID, hostID int64) error
	GrantSafetyAll(ctx context.Context, sessionID int64) error
	ConsumeSafety(ctx context.Context, sessionID int64, playerIDs []int64) error
	Eliminate(ctx context.Context, sessionID int64, playerIDs []int64) error
	Delete(ctx context.Context, sessionID, playerID int64) error
	DeleteBySession(ctx context.Context, sessionID int64) error
}

type IntentStore interface {
	// Create fails with domain.ErrDuplicate when the player already has an
	// intent for this turn index.
	Create(ctx context.Context, it *domain.Intent) error
	ListForTurn(ctx context.Context, sessionID int64, turnIndex int) ([]*domain.Intent, error)
	DeleteForTurn(ctx context.Context, sessionID int64, turnIndex int) error
	DeleteBySession(ctx context.Context, sessionID int64) error
}

// ProfileDirectory is the read-only identity collaborator; the core never
// writes to it.
type ProfileDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Profile, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]*domain.Profile, error)
}

type WaitingEntry struct {
	PlayerID  int64
	Gender    domain.Gender
	CreatedAt time.Time
}

type WaitingStore interface {
	Upsert(ctx context.Context, playerID int64, gender domain.Gender) error
	ListOldest(ctx context.Context, limit int) ([]*WaitingEntry, error)
	Remove(ctx context.Context, playerIDs []int64) error
}

// EventSink receives session events for push delivery. The ws hub implements
// it; a nil sink is valid and drops everything.
type EventSink interface {
	Publish(sessionID int64, event string, payload any)
}
