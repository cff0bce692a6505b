package service

import "sync"

// SessionLocks hands out one mutex per session id. Round closure, seat
// assignment, proposal resolution and lifecycle writes are exclusive per
// session; intent submission never takes these locks since it only inserts
// its own row. SessionService and GameService must share one registry,
// otherwise a lifecycle delete could interleave with a round close on the
// same session.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the session's mutex and returns the unlock func.
func (l *SessionLocks) Lock(sessionID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the mutex for a deleted session.
func (l *SessionLocks) Forget(sessionID int64) {
	l.mu.Lock()
	delete(l.locks, sessionID)
	l.mu.Unlock()
}
