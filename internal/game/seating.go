package game

import (
	"sort"

	"entangle_backend/internal/domain"
)

// SeatPlan is the full effect of one valid seating pick: the target's seat,
// plus the forced placement of the final pool player when this pick reduces
// the pool to one.
type SeatPlan struct {
	PickerID   int64
	TargetID   int64
	TargetSeat int

	// Complete is set when this pick finishes Phase 1. AutoSeatPlayer takes
	// the last open seat as part of the same transition.
	Complete       bool
	AutoSeatPlayer int64
	AutoSeat       int
}

// SeatedInOrder returns players holding seats, ordered by seat number.
func SeatedInOrder(seats []*domain.SeatAssignment) []*domain.SeatAssignment {
	var seated []*domain.SeatAssignment
	for _, sa := range seats {
		if sa.Seated() {
			seated = append(seated, sa)
		}
	}
	sort.Slice(seated, func(i, j int) bool { return *seated[i].Seat < *seated[j].Seat })
	return seated
}

// Pool returns players who joined but hold no seat yet.
func Pool(seats []*domain.SeatAssignment) []*domain.SeatAssignment {
	var pool []*domain.SeatAssignment
	for _, sa := range seats {
		if sa.InPool() {
			pool = append(pool, sa)
		}
	}
	return pool
}

// PlanPick validates a Phase 1 seat pick and returns the resulting plan.
// The most recently seated player always picks next; the target must come
// from the pool and carry the opposite gender of the picker's seat.
func PlanPick(sess *domain.Session, seats []*domain.SeatAssignment, genders map[int64]domain.Gender, pickerID, targetID int64) (*SeatPlan, error) {
	if err := RequireStage(sess, domain.StageSeating); err != nil {
		return nil, err
	}

	seated := SeatedInOrder(seats)
	if len(seated) == 0 {
		return nil, ErrWrongStage
	}
	last := seated[len(seated)-1]
	if last.PlayerID != pickerID {
		return nil, ErrNotYourTurn
	}

	if targetID == pickerID {
		return nil, ErrSelfPick
	}
	pool := Pool(seats)
	var target *domain.SeatAssignment
	for _, sa := range pool {
		if sa.PlayerID == targetID {
			target = sa
			break
		}
	}
	if target == nil {
		return nil, ErrTargetNotInPool
	}

	if genders[targetID] != genders[last.PlayerID].Opposite() {
		return nil, ErrGenderMismatch
	}

	plan := &SeatPlan{
		PickerID:   pickerID,
		TargetID:   targetID,
		TargetSeat: len(seated) + 1,
	}

	// When only one player would remain unseated, seating is complete and
	// the leftover takes the final seat in the same transition.
	if len(pool) == 2 {
		for _, sa := range pool {
			if sa.PlayerID != targetID {
				plan.Complete = true
				plan.AutoSeatPlayer = sa.PlayerID
				plan.AutoSeat = plan.TargetSeat + 1
			}
		}
	}

	return plan, nil
}
