package service

import (
	"context"
	"sync"
	"time"

	"entangle_backend/internal/game"
	"entangle_backend/internal/logger"
)

// TimerScheduler forces round closure at the deadline. One cancellable timer
// per session; the timer path and the manual path share the same CloseRound,
// so a late firing just loses the turn-index race and no-ops.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	close  func(ctx context.Context, sessionID int64) error
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[int64]*time.Timer)}
}

// Bind sets the closure callback. Set once at wiring time, before any
// Schedule call.
func (s *TimerScheduler) Bind(close func(ctx context.Context, sessionID int64) error) {
	s.close = close
}

// Schedule arms (or re-arms) the session's timer to fire at deadline.
func (s *TimerScheduler) Schedule(sessionID int64, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	s.timers[sessionID] = time.AfterFunc(d, func() {
		s.fire(sessionID)
	})
}

// Cancel stops the session's timer. Called when the session ends or leaves
// the in_game stage; a timer that already fired loses the close race instead.
func (s *TimerScheduler) Cancel(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

func (s *TimerScheduler) fire(sessionID int64) {
	if s.close == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.close(ctx, sessionID)
	switch {
	case err == nil:
		logger.Info("round closed by timer", "session_id", sessionID)
	case game.IsConflict(err):
		// a manual close won the race; nothing to do
		logger.Debug("timer close lost race", "session_id", sessionID)
	default:
		logger.Error("timer close failed", "session_id", sessionID, "error", err)
	}
}
