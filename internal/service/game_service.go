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

const DefaultRoundDuration = 60 * time.Second

// GameService runs the in-session state machine: Phase 1 seating picks,
// Phase 2 rounds with timer-forced closure, Phase 3 final proposals. All
// stage writes go through game.Advance; all round/seat mutations run under
// the per-session lock.
type GameService struct {
	sessions SessionStore
	seats    SeatStore
	intents  IntentStore
	profiles ProfileDirectory

	scheduler     *TimerScheduler
	events        EventSink
	roundDuration time.Duration
	locks         *SessionLocks
	now           func() time.Time
}

// NewGameService builds the in-session engine. locks must be the registry
// shared with the SessionService so lifecycle deletes and round closes on
// one session never interleave; nil allocates a fresh one.
func NewGameService(sessions SessionStore, seats SeatStore, intents IntentStore, profiles ProfileDirectory, scheduler *TimerScheduler, events EventSink, roundDuration time.Duration, locks *SessionLocks) *GameService {
	if roundDuration <= 0 {
		roundDuration = DefaultRoundDuration
	}
	if locks == nil {
		locks = NewSessionLocks()
	}
	g := &GameService{
		sessions:      sessions,
		seats:         seats,
		intents:       intents,
		profiles:      profiles,
		scheduler:     scheduler,
		events:        events,
		roundDuration: roundDuration,
		locks:         locks,
		now:           time.Now,
	}
	if scheduler != nil {
		scheduler.Bind(func(ctx context.Context, sessionID int64) error {
			_, err := g.closeRound(ctx, sessionID, "timer")
			return err
		})
	}
	return g
}

type SeatedPlayer struct {
	PlayerID    int64         `json:"player_id"`
	Seat        int           `json:"seat"`
	DisplayName string        `json:"display_name"`
	Gender      domain.Gender `json:"gender"`
	IsActive    bool          `json:"is_active"`
}

type PoolPlayer struct {
	PlayerID    int64         `json:"player_id"`
	DisplayName string        `json:"display_name"`
	Gender      domain.Gender `json:"gender"`
}

type SeatingState struct {
	SessionID int64          `json:"session_id"`
	Stage     domain.Stage   `json:"stage"`
	Seated    []SeatedPlayer `json:"seated"`
	Pool      []PoolPlayer   `json:"pool"`
	NextSeat  int            `json:"next_seat"`
	PickerID  *int64         `json:"picker_id,omitempty"`
}

type RoundPlayer struct {
	PlayerID  int64 `json:"player_id"`
	Seat      *int  `json:"seat,omitempty"`
	HasSafety bool  `json:"has_safety"`
	Submitted bool  `json:"submitted"`
}

type RoundState struct {
	SessionID     int64         `json:"session_id"`
	Stage         domain.Stage  `json:"stage"`
	TurnIndex     int           `json:"turn_index"`
	RoundDeadline *time.Time    `json:"round_deadline,omitempty"`
	Active        []RoundPlayer `json:"active"`
}

type RoundResult struct {
	Outcome       *game.RoundOutcome `json:"outcome"`
	TurnIndex     int                `json:"turn_index"`
	RoundDeadline *time.Time         `json:"round_deadline,omitempty"`
	Stage         domain.Stage       `json:"stage"`
}

type FinalState struct {
	SessionID        int64        `json:"session_id"`
	Stage            domain.Stage `json:"stage"`
	Finalists        []int64      `json:"finalists"`
	ProposerID       *int64       `json:"proposer_id,omitempty"`
	ProposedTargetID *int64       `json:"proposed_target_id,omitempty"`
	FinalPair        []int64      `json:"final_pair,omitempty"`
}

type FinalResult struct {
	Accepted  bool         `json:"accepted"`
	Stage     domain.Stage `json:"stage"`
	FinalPair []int64      `json:"final_pair,omitempty"`
}

func (g *GameService) publish(sessionID int64, event string, payload any) {
	if g.events != nil {
		g.events.Publish(sessionID, event, payload)
	}
}

// SeatingState returns the ordered seated list, the remaining pool and who
// picks next.
func (g *GameService) SeatingState(ctx context.Context, sessionID int64) (*SeatingState, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return g.buildSeatingState(ctx, sess, seats)
}

func (g *GameService) buildSeatingState(ctx context.Context, sess *domain.Session, seats []*domain.SeatAssignment) (*SeatingState, error) {
	ids := make([]int64, 0, len(seats))
	for _, sa := range seats {
		ids = append(ids, sa.PlayerID)
	}
	profs, err := g.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	st := &SeatingState{SessionID: sess.ID, Stage: sess.Stage}
	seated := game.SeatedInOrder(seats)
	for _, sa := range seated {
		sp := SeatedPlayer{PlayerID: sa.PlayerID, Seat: *sa.Seat, IsActive: sa.IsActive}
		if p, ok := profs[sa.PlayerID]; ok {
			sp.DisplayName = p.DisplayName
			sp.Gender = p.Gender
		}
		st.Seated = append(st.Seated, sp)
	}
	for _, sa := range game.Pool(seats) {
		pp := PoolPlayer{PlayerID: sa.PlayerID}
		if p, ok := profs[sa.PlayerID]; ok {
			pp.DisplayName = p.DisplayName
			pp.Gender = p.Gender
		}
		st.Pool = append(st.Pool, pp)
	}
	st.NextSeat = len(seated) + 1
	if sess.Stage == domain.StageSeating && len(seated) > 0 {
		st.PickerID = &seated[len(seated)-1].PlayerID
	}
	return st, nil
}

// PickSeat seats the target at the next open seat. The seat write and the
// picker's provenance write are two store calls; if the second fails after
// the first succeeded the session is flagged for reconciliation instead of
// being retried blindly.
func (g *GameService) PickSeat(ctx context.Context, sessionID, pickerID, targetID int64) (*SeatingState, error) {
	unlock := g.locks.Lock(sessionID)
	defer unlock()

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(seats))
	for _, sa := range seats {
		ids = append(ids, sa.PlayerID)
	}
	profs, err := g.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	genders := make(map[int64]domain.Gender, len(profs))
	for id, p := range profs {
		genders[id] = p.Gender
	}

	plan, err := game.PlanPick(sess, seats, genders, pickerID, targetID)
	if err != nil {
		return nil, err
	}

	if err := g.seats.AssignSeat(ctx, sessionID, targetID, plan.TargetSeat, &pickerID); err != nil {
		return nil, fmt.Errorf("assign seat: %w", err)
	}
	if err := g.seats.SetPickTarget(ctx, sessionID, pickerID, targetID); err != nil {
		// the target is seated but the picker's provenance is not; flag the
		// session so a reconciliation pass can finish the transition
		logger.Error("seat pick provenance write failed",
			"session_id", sessionID, "picker_id", pickerID, "target_id", targetID, "error", err)
		if rerr := g.sessions.SetNeedsReconcile(ctx, sessionID); rerr != nil {
			logger.Error("failed to flag session for reconcile", "session_id", sessionID, "error", rerr)
		}
		return nil, fmt.Errorf("record pick provenance: %w", err)
	}

	g.publish(sessionID, "seat_picked", map[string]any{
		"picker_id": pickerID,
		"target_id": targetID,
		"seat":      plan.TargetSeat,
	})

	if plan.Complete {
		if err := g.completeSeating(ctx, sess, plan); err != nil {
			return nil, err
		}
	}

	seats, err = g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return g.buildSeatingState(ctx, sess, seats)
}

// completeSeating seats the leftover pool player, grants everyone their
// safety and opens round 0.
func (g *GameService) completeSeating(ctx context.Context, sess *domain.Session, plan *game.SeatPlan) error {
	if err := g.seats.AssignSeat(ctx, sess.ID, plan.AutoSeatPlayer, plan.AutoSeat, nil); err != nil {
		return fmt.Errorf("auto-seat last player: %w", err)
	}
	if err := g.seats.GrantSafetyAll(ctx, sess.ID); err != nil {
		return fmt.Errorf("grant safeties: %w", err)
	}

	deadline := g.now().Add(g.roundDuration)
	sess.TurnIndex = 0
	sess.RoundDeadline = &deadline
	if err := game.Advance(sess, domain.StageInGame); err != nil {
		return err
	}
	if err := g.sessions.Update(ctx, sess); err != nil {
		return fmt.Errorf("open round 0: %w", err)
	}
	if g.scheduler != nil {
		g.scheduler.Schedule(sess.ID, deadline)
	}

	g.publish(sess.ID, "seating_complete", map[string]any{
		"turn_index":     0,
		"round_deadline": deadline,
	})
	return nil
}

// RoundState returns the open round: turn index, deadline, active players
// with their safety and submission status.
func (g *GameService) RoundState(ctx context.Context, sessionID int64) (*RoundState, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	its, err := g.intents.ListForTurn(ctx, sessionID, sess.TurnIndex)
	if err != nil {
		return nil, err
	}

	submitted := make(map[int64]bool, len(its))
	for _, it := range its {
		submitted[it.PlayerID] = true
	}
	st := &RoundState{
		SessionID:     sess.ID,
		Stage:         sess.Stage,
		TurnIndex:     sess.TurnIndex,
		RoundDeadline: sess.RoundDeadline,
	}
	for _, sa := range seats {
		if !sa.IsActive {
			continue
		}
		st.Active = append(st.Active, RoundPlayer{
			PlayerID:  sa.PlayerID,
			Seat:      sa.Seat,
			HasSafety: sa.HasSafety,
			Submitted: submitted[sa.PlayerID],
		})
	}
	return st, nil
}

// SubmitIntent stores one player's action for the current round. Submission
// is add-only and safe to interleave; when the last expected intent arrives
// the round closes in the same call. The returned RoundResult is nil while
// the round stays open.
func (g *GameService) SubmitIntent(ctx context.Context, sessionID, playerID int64, action domain.IntentAction, targetID *int64) (*RoundResult, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.RequireStage(sess, domain.StageInGame); err != nil {
		return nil, err
	}
	if sess.RoundDeadline != nil && g.now().After(*sess.RoundDeadline) {
		return nil, game.ErrActionAfterExpiry
	}

	me, err := g.seats.Get(ctx, sessionID, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, game.ErrNotActive
		}
		return nil, err
	}
	if !me.IsActive {
		return nil, game.ErrNotActive
	}

	switch action {
	case domain.ActionPick:
		if targetID == nil || *targetID == playerID {
			return nil, game.ErrInvalidTarget
		}
		target, err := g.seats.Get(ctx, sessionID, *targetID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, game.ErrInvalidTarget
			}
			return nil, err
		}
		if !target.IsActive {
			return nil, game.ErrInvalidTarget
		}
	case domain.ActionSafety:
		if !me.HasSafety {
			return nil, game.ErrSafetySpent
		}
		targetID = nil
	default:
		return nil, &game.ValidationError{Code: "invalid_action", Message: "action must be pick or safety"}
	}

	it := &domain.Intent{
		SessionID: sessionID,
		PlayerID:  playerID,
		TurnIndex: sess.TurnIndex,
		Action:    action,
		TargetID:  targetID,
		CreatedAt: g.now(),
	}
	if err := g.intents.Create(ctx, it); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, game.ErrDuplicateIntent
		}
		return nil, fmt.Errorf("store intent: %w", err)
	}

	// close early once every active player has committed
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	its, err := g.intents.ListForTurn(ctx, sessionID, sess.TurnIndex)
	if err != nil {
		return nil, err
	}
	if game.AllSubmitted(sess.TurnIndex, activeOf(seats), its) {
		res, err := g.closeRound(ctx, sessionID, "manual")
		if err != nil {
			if game.IsConflict(err) {
				return nil, nil // the timer beat us to it
			}
			return nil, err
		}
		return res, nil
	}
	return nil, nil
}

// CloseRound resolves the current round. Invoked by the transport when a
// client forces closure and by the TimerScheduler at the deadline; both
// paths share the same resolution, and the turn-index guard makes exactly
// one racing attempt effective.
func (g *GameService) CloseRound(ctx context.Context, sessionID int64) (*RoundResult, error) {
	return g.closeRound(ctx, sessionID, "manual")
}

func (g *GameService) closeRound(ctx context.Context, sessionID int64, trigger string) (*RoundResult, error) {
	unlock := g.locks.Lock(sessionID)
	defer unlock()

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Stage != domain.StageInGame {
		// the session already moved on; report "already resolved"
		return nil, game.ErrRoundAlreadyClosed
	}
	turn := sess.TurnIndex

	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	its, err := g.intents.ListForTurn(ctx, sessionID, turn)
	if err != nil {
		return nil, err
	}

	outcome := game.ResolveRound(turn, activeOf(seats), its)

	// winner-takes-all guard: only the attempt that bumps the turn index
	// applies the outcome
	deadline := g.now().Add(g.roundDuration)
	won, err := g.sessions.TryAdvanceTurn(ctx, sessionID, turn, deadline)
	if err != nil {
		return nil, fmt.Errorf("advance turn: %w", err)
	}
	if !won {
		return nil, game.ErrRoundAlreadyClosed
	}
	sess.TurnIndex = turn + 1
	sess.RoundDeadline = &deadline

	if outcome.SafetyVoided {
		if err := g.applySeatWrites(ctx, sessionID, outcome.SafetyUsers, nil); err != nil {
			return nil, err
		}
	} else {
		if err := g.applySeatWrites(ctx, sessionID, outcome.SafetySaved, outcome.Eliminated); err != nil {
			return nil, err
		}
	}

	// stale intents are overwritten-or-ignored once the turn advances, so a
	// failed cleanup never blocks the round
	if err := g.intents.DeleteForTurn(ctx, sessionID, turn); err != nil {
		logger.Warn("failed to discard intents for closed round",
			"session_id", sessionID, "turn_index", turn, "error", err)
	}

	switch {
	case outcome.FinalistsReached:
		sess.RoundDeadline = nil
		if err := game.Advance(sess, domain.StageFinalChoice); err != nil {
			return nil, err
		}
		if err := g.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("enter final stage: %w", err)
		}
		if g.scheduler != nil {
			g.scheduler.Cancel(sessionID)
		}
	case len(outcome.Survivors) < 2:
		// the round wiped out the field; with fewer than two survivors no
		// final pair can ever form, so the session ends here
		sess.RoundDeadline = nil
		if err := game.Advance(sess, domain.StageEnded); err != nil {
			return nil, err
		}
		if err := g.sessions.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("end wiped-out session: %w", err)
		}
		if g.scheduler != nil {
			g.scheduler.Cancel(sessionID)
		}
		sessionsEnded.WithLabelValues("wiped_out").Inc()
		g.publish(sessionID, "game_ended", map[string]any{"survivors": outcome.Survivors})
	default:
		if g.scheduler != nil {
			g.scheduler.Schedule(sessionID, deadline)
		}
	}

	roundsClosed.WithLabelValues(trigger).Inc()
	playersEliminated.Add(float64(len(outcome.Eliminated)))

	res := &RoundResult{
		Outcome:       outcome,
		TurnIndex:     sess.TurnIndex,
		RoundDeadline: sess.RoundDeadline,
		Stage:         sess.Stage,
	}
	g.publish(sessionID, "round_closed", res)
	return res, nil
}

// applySeatWrites consumes safeties and marks eliminations for a closed
// round. A failed required write flags the session and surfaces the error:
// the turn advance already happened, so reconciliation finishes the round
// rather than a blind retry double-applying it.
func (g *GameService) applySeatWrites(ctx context.Context, sessionID int64, consume, eliminate []int64) error {
	if len(consume) > 0 {
		if err := g.seats.ConsumeSafety(ctx, sessionID, consume); err != nil {
			g.flagReconcile(ctx, sessionID, "consume safety", err)
			return fmt.Errorf("consume safety: %w", err)
		}
	}
	if len(eliminate) > 0 {
		if err := g.seats.Eliminate(ctx, sessionID, eliminate); err != nil {
			g.flagReconcile(ctx, sessionID, "eliminate players", err)
			return fmt.Errorf("eliminate players: %w", err)
		}
	}
	return nil
}

func (g *GameService) flagReconcile(ctx context.Context, sessionID int64, op string, cause error) {
	logger.Error("round close left partial state", "session_id", sessionID, "op", op, "error", cause)
	if err := g.sessions.SetNeedsReconcile(ctx, sessionID); err != nil {
		logger.Error("failed to flag session for reconcile", "session_id", sessionID, "error", err)
	}
}

// FinalState returns the Phase 3 view: the two finalists and any pending
// proposal.
func (g *GameService) FinalState(ctx context.Context, sessionID int64) (*FinalState, error) {
	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	st := &FinalState{
		SessionID:        sess.ID,
		Stage:            sess.Stage,
		ProposerID:       sess.ProposerID,
		ProposedTargetID: sess.ProposedTargetID,
	}
	for _, sa := range activeOf(seats) {
		st.Finalists = append(st.Finalists, sa.PlayerID)
	}
	if sess.FinalPairA != nil && sess.FinalPairB != nil {
		st.FinalPair = []int64{*sess.FinalPairA, *sess.FinalPairB}
	}
	return st, nil
}

// Propose records the final proposal. The first finalist to propose claims
// the proposer role; it stays pinned for the rest of the game.
func (g *GameService) Propose(ctx context.Context, sessionID, pickerID, targetID int64) (*FinalState, error) {
	unlock := g.locks.Lock(sessionID)
	defer unlock()

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := g.seats.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var finalists []int64
	for _, sa := range activeOf(seats) {
		finalists = append(finalists, sa.PlayerID)
	}

	if err := game.ValidateProposal(sess, finalists, pickerID, targetID); err != nil {
		return nil, err
	}

	sess.ProposerID = &pickerID
	sess.ProposedTargetID = &targetID
	if err := g.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("record proposal: %w", err)
	}

	g.publish(sessionID, "proposal", map[string]any{
		"proposer_id": pickerID,
		"target_id":   targetID,
	})
	return g.FinalState(ctx, sessionID)
}

// Respond resolves the final proposal. Accept records the pair; reject
// eliminates the proposer. Either way the session ends.
func (g *GameService) Respond(ctx context.Context, sessionID, respondentID int64, accept bool) (*FinalResult, error) {
	unlock := g.locks.Lock(sessionID)
	defer unlock()

	sess, err := g.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := game.ValidateResponse(sess, respondentID); err != nil {
		return nil, err
	}

	res := &FinalResult{Accepted: accept}
	if accept {
		sess.FinalPairA = sess.ProposerID
		sess.FinalPairB = sess.ProposedTargetID
		res.FinalPair = []int64{*sess.FinalPairA, *sess.FinalPairB}
	} else {
		if err := g.seats.Eliminate(ctx, sessionID, []int64{*sess.ProposerID}); err != nil {
			return nil, fmt.Errorf("eliminate rejected proposer: %w", err)
		}
	}
	if err := game.Advance(sess, domain.StageEnded); err != nil {
		return nil, err
	}
	if err := g.sessions.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	if g.scheduler != nil {
		g.scheduler.Cancel(sessionID)
	}
	res.Stage = sess.Stage

	if accept {
		sessionsEnded.WithLabelValues("matched").Inc()
	} else {
		sessionsEnded.WithLabelValues("rejected").Inc()
	}
	g.publish(sessionID, "game_ended", res)
	return res, nil
}

func activeOf(seats []*domain.SeatAssignment) []*domain.SeatAssignment {
	var active []*domain.SeatAssignment
	for _, sa := range seats {
		if sa.IsActive {
			active = append(active, sa)
		}
	}
	return active
}
