package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entangle_backend/internal/domain"
	"entangle_backend/internal/game"
	"entangle_backend/internal/logger"
)

// SessionService owns the session lifecycle around the game itself:
// creation, joining with gender quotas, leaving, starting the seating phase
// and ending the session. The whole aggregate (session + seat assignments +
// intents) is deleted together.
type SessionService struct {
	sessions SessionStore
	seats    SeatStore
	intents  IntentStore
	profiles ProfileDirectory

	scheduler *TimerScheduler
	events    EventSink
	locks     *SessionLocks
	now       func() time.Time
}

// NewSessionService builds the lifecycle service. locks must be the same
// registry the GameService uses; nil allocates a fresh one for callers that
// run without a GameService.
func NewSessionService(sessions SessionStore, seats SeatStore, intents IntentStore, profiles ProfileDirectory, scheduler *TimerScheduler, events EventSink, locks *SessionLocks) *SessionService {
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &SessionService{
		sessions:  sessions,
		seats:     seats,
		intents:   intents,
		profiles:  profiles,
		scheduler: scheduler,
		events:    events,
		locks:     locks,
		now:       time.Now,
	}
}

type CreateResult struct {
	SessionID  int64 `json:"session_id"`
	MaxFemales int   `json:"max_females"`
	MaxMales   int   `json:"max_males"`
}

type JoinResult struct {
	SessionID int64  `json:"session_id"`
	Seat      *int   `json:"seat,omitempty"`
	IsActive  bool   `json:"is_active"`
	Role      string `json:"role"`
}

func (s *SessionService) publish(sessionID int64, event string, payload any) {
	if s.events != nil {
		s.events.Publish(sessionID, event, payload)
	}
}

// Create opens a new session in stage waiting with the host at seat 1.
// Gender quotas are derived from the host's gender so the final seating can
// alternate.
func (s *SessionService) Create(ctx context.Context, hostID int64, gameSize int) (*CreateResult, error) {
	if gameSize < domain.MinGameSize || gameSize > domain.MaxGameSize {
		return nil, &game.ValidationError{Code: "invalid_game_size",
			Message: fmt.Sprintf("gameSize must be between %d and %d", domain.MinGameSize, domain.MaxGameSize)}
	}
	host, err := s.profiles.Get(ctx, hostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &game.ValidationError{Code: "unknown_player", Message: "host profile not found"}
		}
		return nil, err
	}

	maxFemales, maxMales := domain.Quotas(host.Gender, gameSize)
	sess := &domain.Session{
		HostID:     hostID,
		Stage:      domain.StageWaiting,
		GameSize:   gameSize,
		MaxFemales: maxFemales,
		MaxMales:   maxMales,
		TurnIndex:  0,
		CreatedAt:  s.now(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	seat := 1
	if err := s.seats.Create(ctx, &domain.SeatAssignment{
		SessionID: sess.ID,
		PlayerID:  hostID,
		Seat:      &seat,
		IsActive:  true,
		JoinedAt:  s.now(),
	}); err != nil {
		return nil, fmt.Errorf("seat host: %w", err)
	}

	logger.Info("session created", "session_id", sess.ID, "host_id", hostID, "game_size", gameSize)
	return &CreateResult{SessionID: sess.ID, MaxFemales: maxFemales, MaxMales: maxMales}, nil
}

// Join adds a player to a waiting session, enforcing the game size cap and
// the per-gender quotas. Joining twice returns the existing membership;
// joining after the waiting stage makes the player a spectator.
func (s *SessionService) Join(ctx context.Context, sessionID, playerID int64) (*JoinResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.seats.Get(ctx, sessionID, playerID); err == nil {
		role := "player"
		if !existing.IsActive {
			role = "spectator"
		}
		return &JoinResult{SessionID: sessionID, Seat: existing.Seat, IsActive: existing.IsActive, Role: role}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if sess.Stage != domain.StageWaiting {
		if err := s.seats.Create(ctx, &domain.SeatAssignment{
			SessionID: sessionID,
			PlayerID:  playerID,
			IsActive:  false,
			JoinedAt:  s.now(),
		}); err != nil {
			return nil, fmt.Errorf("join as spectator: %w", err)
		}
		return &JoinResult{SessionID: sessionID, IsActive: false, Role: "spectator"}, nil
	}

	seats, err := s.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	active := activeOf(seats)
	if len(active) >= sess.GameSize {
		return nil, &game.ValidationError{Code: "session_full", Message: "session is full"}
	}

	me, err := s.profiles.Get(ctx, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &game.ValidationError{Code: "unknown_player", Message: "player profile not found"}
		}
		return nil, err
	}

	ids := make([]int64, 0, len(active))
	for _, sa := range active {
		ids = append(ids, sa.PlayerID)
	}
	profs, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	var males, females int
	for _, p := range profs {
		switch p.Gender {
		case domain.GenderMale:
			males++
		case domain.GenderFemale:
			females++
		}
	}
	if me.Gender == domain.GenderFemale && females >= sess.MaxFemales {
		return nil, &game.ValidationError{Code: "quota_reached", Message: "max number of females reached"}
	}
	if me.Gender == domain.GenderMale && males >= sess.MaxMales {
		return nil, &game.ValidationError{Code: "quota_reached", Message: "max number of males reached"}
	}

	// seats are unique per session and never reused after a leave, so the
	// next lobby seat follows the highest one ever handed out
	seat := nextLobbySeat(seats)
	if err := s.seats.Create(ctx, &domain.SeatAssignment{
		SessionID: sessionID,
		PlayerID:  playerID,
		Seat:      &seat,
		IsActive:  true,
		JoinedAt:  s.now(),
	}); err != nil {
		return nil, fmt.Errorf("join session: %w", err)
	}

	s.publish(sessionID, "player_joined", map[string]any{"player_id": playerID, "seat": seat})
	return &JoinResult{SessionID: sessionID, Seat: &seat, IsActive: true, Role: "player"}, nil
}

func nextLobbySeat(seats []*domain.SeatAssignment) int {
	next := 1
	for _, sa := range seats {
		if sa.Seat != nil && *sa.Seat >= next {
			next = *sa.Seat + 1
		}
	}
	return next
}

// Leave removes the player; the last player out deletes the whole aggregate.
func (s *SessionService) Leave(ctx context.Context, sessionID, playerID int64) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.seats.Delete(ctx, sessionID, playerID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	count, err := s.seats.CountBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if count == 0 {
		if err := s.deleteAggregate(ctx, sessionID); err != nil {
			return err
		}
		sessionsEnded.WithLabelValues("emptied").Inc()
		logger.Info("session deleted after last player left", "session_id", sessionID)
		return nil
	}

	s.publish(sessionID, "player_left", map[string]any{"player_id": playerID})
	return nil
}

// Start moves a waiting session with enough players into the seating phase.
// Everyone except the host loses their provisional lobby seat and returns to
// the pool; the host anchors seat 1.
func (s *SessionService) Start(ctx context.Context, sessionID, callerID int64) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := game.RequireStage(sess, domain.StageWaiting); err != nil {
		return err
	}
	if callerID != sess.HostID {
		return &game.ValidationError{Code: "not_host", Message: "only the host may start this session"}
	}

	count, err := s.seats.CountBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if count < domain.MinGameSize {
		return &game.ValidationError{Code: "not_enough_players",
			Message: fmt.Sprintf("need at least %d players to start", domain.MinGameSize)}
	}

	if err := s.seats.ClearSeatsExceptHost(ctx, sessionID, sess.HostID); err != nil {
		return fmt.Errorf("clear lobby seats: %w", err)
	}
	if err := s.seats.AssignSeat(ctx, sessionID, sess.HostID, 1, nil); err != nil {
		return fmt.Errorf("pin host seat: %w", err)
	}

	sess.RoundDeadline = nil
	if err := game.Advance(sess, domain.StageSeating); err != nil {
		return err
	}
	if err := s.sessions.Update(ctx, sess); err != nil {
		return fmt.Errorf("start seating: %w", err)
	}

	s.publish(sessionID, "seating_started", map[string]any{"host_id": sess.HostID})
	return nil
}

// End deletes the whole aggregate. Host only.
func (s *SessionService) End(ctx context.Context, sessionID, callerID int64) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if callerID != sess.HostID {
		return &game.ValidationError{Code: "not_host", Message: "only the host may end this session"}
	}

	s.publish(sessionID, "session_ended", map[string]any{"by": callerID})
	if err := s.deleteAggregate(ctx, sessionID); err != nil {
		return err
	}
	sessionsEnded.WithLabelValues("ended_by_host").Inc()
	logger.Info("session ended by host", "session_id", sessionID, "host_id", callerID)
	return nil
}

// List returns all sessions.
func (s *SessionService) List(ctx context.Context) ([]*domain.Session, error) {
	return s.sessions.List(ctx)
}

// deleteAggregate removes intents, seat assignments and the session row, and
// drops the timer so an ended session can never have a resolution fire.
func (s *SessionService) deleteAggregate(ctx context.Context, sessionID int64) error {
	if s.scheduler != nil {
		s.scheduler.Cancel(sessionID)
	}
	if err := s.intents.DeleteBySession(ctx, sessionID); err != nil {
		logger.Warn("failed to delete intents for ended session", "session_id", sessionID, "error", err)
	}
	if err := s.seats.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete seat assignments: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.locks.Forget(sessionID)
	return nil
}
