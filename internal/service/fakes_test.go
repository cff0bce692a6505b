package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"entangle_backend/internal/domain"
)

// In-memory store fakes. Same error contract as the pgx repositories:
// domain.ErrNotFound on missing rows, domain.ErrDuplicate on key conflicts.

type memSessions struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{nextID: 1, rows: make(map[int64]*domain.Session)}
}

func (m *memSessions) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	m.nextID++
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memSessions) Get(_ context.Context, id int64) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) List(_ context.Context) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Session, 0, len(m.rows))
	for _, s := range m.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memSessions) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.rows {
		if s.CreatedAt.Before(cutoff) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSessions) Update(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *memSessions) TryAdvanceTurn(_ context.Context, id int64, fromTurn int, deadline time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.TurnIndex != fromTurn {
		return false, nil
	}
	s.TurnIndex = fromTurn + 1
	d := deadline
	s.RoundDeadline = &d
	return true, nil
}

func (m *memSessions) SetNeedsReconcile(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.NeedsReconcile = true
	return nil
}

func (m *memSessions) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type seatKey struct {
	sessionID, playerID int64
}

type memSeats struct {
	mu   sync.Mutex
	rows map[seatKey]*domain.SeatAssignment
}

func newMemSeats() *memSeats {
	return &memSeats{rows: make(map[seatKey]*domain.SeatAssignment)}
}

func (m *memSeats) Create(_ context.Context, sa *domain.SeatAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := seatKey{sa.SessionID, sa.PlayerID}
	if _, ok := m.rows[k]; ok {
		return domain.ErrDuplicate
	}
	if sa.Seat != nil && m.seatTaken(sa.SessionID, sa.PlayerID, *sa.Seat) {
		return domain.ErrDuplicate
	}
	cp := *sa
	m.rows[k] = &cp
	return nil
}

// seatTaken mirrors the UNIQUE (session_id, seat) constraint of the real
// table. Caller holds m.mu.
func (m *memSeats) seatTaken(sessionID, playerID int64, seat int) bool {
	for _, sa := range m.rows {
		if sa.SessionID == sessionID && sa.PlayerID != playerID && sa.Seat != nil && *sa.Seat == seat {
			return true
		}
	}
	return false
}

func (m *memSeats) Get(_ context.Context, sessionID, playerID int64) (*domain.SeatAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sa, ok := m.rows[seatKey{sessionID, playerID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sa
	return &cp, nil
}

func (m *memSeats) ListBySession(_ context.Context, sessionID int64) ([]*domain.SeatAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.SeatAssignment
	for _, sa := range m.rows {
		if sa.SessionID == sessionID {
			cp := *sa
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (m *memSeats) CountBySession(_ context.Context, sessionID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sa := range m.rows {
		if sa.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (m *memSeats) AssignSeat(_ context.Context, sessionID, playerID int64, seat int, pickedBy *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sa, ok := m.rows[seatKey{sessionID, playerID}]
	if !ok {
		return domain.ErrNotFound
	}
	if m.seatTaken(sessionID, playerID, seat) {
		return domain.ErrDuplicate
	}
	s := seat
	sa.Seat = &s
	if pickedBy != nil {
		by := *pickedBy
		sa.LastPickedBy = &by
	}
	return nil
}

func (m *memSeats) SetPickTarget(_ context.Context, sessionID, pickerID, targetID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sa, ok := m.rows[seatKey{sessionID, pickerID}]
	if !ok {
		return domain.ErrNotFound
	}
	t := targetID
	sa.LastPickedTarget = &t
	return nil
}

func (m *memSeats) ClearSeatsExceptHost(_ context.Context, sessionID, hostID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sa := range m.rows {
		if sa.SessionID == sessionID && sa.PlayerID != hostID {
			sa.Seat = nil
		}
	}
	return nil
}

func (m *memSeats) GrantSafetyAll(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sa := range m.rows {
		if sa.SessionID == sessionID && sa.IsActive {
			sa.HasSafety = true
		}
	}
	return nil
}

func (m *memSeats) ConsumeSafety(_ context.Context, sessionID int64, playerIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range playerIDs {
		if sa, ok := m.rows[seatKey{sessionID, id}]; ok {
			sa.HasSafety = false
		}
	}
	return nil
}

func (m *memSeats) Eliminate(_ context.Context, sessionID int64, playerIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range playerIDs {
		if sa, ok := m.rows[seatKey{sessionID, id}]; ok {
			sa.IsActive = false
		}
	}
	return nil
}

func (m *memSeats) Delete(_ context.Context, sessionID, playerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := seatKey{sessionID, playerID}
	if _, ok := m.rows[k]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, k)
	return nil
}

func (m *memSeats) DeleteBySession(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, sa := range m.rows {
		if sa.SessionID == sessionID {
			delete(m.rows, k)
		}
	}
	return nil
}

type intentKey struct {
	sessionID, playerID int64
	turnIndex           int
}

type memIntents struct {
	mu   sync.Mutex
	rows map[intentKey]*domain.Intent
}

func newMemIntents() *memIntents {
	return &memIntents{rows: make(map[intentKey]*domain.Intent)}
}

func (m *memIntents) Create(_ context.Context, it *domain.Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := intentKey{it.SessionID, it.PlayerID, it.TurnIndex}
	if _, ok := m.rows[k]; ok {
		return domain.ErrDuplicate
	}
	cp := *it
	m.rows[k] = &cp
	return nil
}

func (m *memIntents) ListForTurn(_ context.Context, sessionID int64, turnIndex int) ([]*domain.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Intent
	for _, it := range m.rows {
		if it.SessionID == sessionID && it.TurnIndex == turnIndex {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memIntents) DeleteForTurn(_ context.Context, sessionID int64, turnIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, it := range m.rows {
		if it.SessionID == sessionID && it.TurnIndex == turnIndex {
			delete(m.rows, k)
		}
	}
	return nil
}

func (m *memIntents) DeleteBySession(_ context.Context, sessionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, it := range m.rows {
		if it.SessionID == sessionID {
			delete(m.rows, k)
		}
	}
	return nil
}

type memProfiles struct {
	rows map[int64]*domain.Profile
}

func newMemProfiles(profs ...*domain.Profile) *memProfiles {
	m := &memProfiles{rows: make(map[int64]*domain.Profile)}
	for _, p := range profs {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memProfiles) Get(_ context.Context, id int64) (*domain.Profile, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *memProfiles) GetMany(_ context.Context, ids []int64) (map[int64]*domain.Profile, error) {
	out := make(map[int64]*domain.Profile, len(ids))
	for _, id := range ids {
		if p, ok := m.rows[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type memWaiting struct {
	mu      sync.Mutex
	entries []*WaitingEntry
}

func newMemWaiting() *memWaiting { return &memWaiting{} }

func (m *memWaiting) Upsert(_ context.Context, playerID int64, gender domain.Gender) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.PlayerID == playerID {
			e.Gender = gender
			return nil
		}
	}
	m.entries = append(m.entries, &WaitingEntry{PlayerID: playerID, Gender: gender, CreatedAt: time.Now()})
	return nil
}

func (m *memWaiting) ListOldest(_ context.Context, limit int) ([]*WaitingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*WaitingEntry, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memWaiting) Remove(_ context.Context, playerIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[int64]bool, len(playerIDs))
	for _, id := range playerIDs {
		drop[id] = true
	}
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.PlayerID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// staleReadSessions serves one stale snapshot before delegating to the real
// store. It reproduces two closers reading the same turn index before either
// advances it, the way a second app instance would against one database.
type staleReadSessions struct {
	*memSessions
	staleMu sync.Mutex
	stale   *domain.Session
}

func (s *staleReadSessions) serveStale(sess *domain.Session) {
	s.staleMu.Lock()
	cp := *sess
	s.stale = &cp
	s.staleMu.Unlock()
}

func (s *staleReadSessions) Get(ctx context.Context, id int64) (*domain.Session, error) {
	s.staleMu.Lock()
	st := s.stale
	s.stale = nil
	s.staleMu.Unlock()
	if st != nil && st.ID == id {
		cp := *st
		return &cp, nil
	}
	return s.memSessions.Get(ctx, id)
}

// recordingSink captures published events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingSink) Publish(_ int64, event string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}
