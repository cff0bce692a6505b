package game

import (
	"sort"

	"entangle_backend/internal/domain"
)

// RoundOutcome describes everything a closing round decided. The service
// layer applies it to the store; resolution itself touches nothing.
type RoundOutcome struct {
	TurnIndex int

	// SafetyVoided: at least one player invoked safety, so every pick this
	// round is void and nobody is eliminated.
	SafetyVoided bool
	SafetyUsers  []int64

	MutualPairs [][2]int64
	Eliminated  []int64
	// SafetySaved lists players who would have been eliminated but spent
	// their one-time safety instead.
	SafetySaved []int64
	Survivors   []int64

	// FinalistsReached: exactly two active players remain after this round.
	FinalistsReached bool
}

// ResolveRound applies the elimination rules to one round's intents.
// Players with no intent count as passing. Any safety intent voids the
// round's picks entirely; otherwise only mutual pick pairs survive unaided.
func ResolveRound(turnIndex int, active []*domain.SeatAssignment, intents []*domain.Intent) *RoundOutcome {
	out := &RoundOutcome{TurnIndex: turnIndex}

	activeSet := make(map[int64]*domain.SeatAssignment, len(active))
	for _, sa := range active {
		activeSet[sa.PlayerID] = sa
	}

	byPlayer := make(map[int64]*domain.Intent, len(intents))
	for _, it := range intents {
		if it.TurnIndex != turnIndex {
			continue // stale row from an earlier round, ignored
		}
		if _, ok := activeSet[it.PlayerID]; !ok {
			continue
		}
		byPlayer[it.PlayerID] = it
	}

	for _, sa := range active {
		if it, ok := byPlayer[sa.PlayerID]; ok && it.Action == domain.ActionSafety {
			out.SafetyUsers = append(out.SafetyUsers, sa.PlayerID)
		}
	}
	if len(out.SafetyUsers) > 0 {
		out.SafetyVoided = true
		sort.Slice(out.SafetyUsers, func(i, j int) bool { return out.SafetyUsers[i] < out.SafetyUsers[j] })
		for _, sa := range active {
			out.Survivors = append(out.Survivors, sa.PlayerID)
		}
		out.FinalistsReached = len(out.Survivors) == 2
		return out
	}

	// Mutual pairs: A picked B and B picked A in the same round.
	paired := make(map[int64]bool)
	for _, sa := range active {
		it, ok := byPlayer[sa.PlayerID]
		if !ok || it.Action != domain.ActionPick || it.TargetID == nil || paired[sa.PlayerID] {
			continue
		}
		back, ok := byPlayer[*it.TargetID]
		if !ok || back.Action != domain.ActionPick || back.TargetID == nil {
			continue
		}
		if *back.TargetID == sa.PlayerID && *it.TargetID != sa.PlayerID {
			out.MutualPairs = append(out.MutualPairs, [2]int64{sa.PlayerID, *it.TargetID})
			paired[sa.PlayerID] = true
			paired[*it.TargetID] = true
		}
	}

	for _, sa := range active {
		switch {
		case paired[sa.PlayerID]:
			out.Survivors = append(out.Survivors, sa.PlayerID)
		case sa.HasSafety:
			out.SafetySaved = append(out.SafetySaved, sa.PlayerID)
			out.Survivors = append(out.Survivors, sa.PlayerID)
		default:
			out.Eliminated = append(out.Eliminated, sa.PlayerID)
		}
	}

	if len(out.Survivors) == 2 {
		out.FinalistsReached = true
		// Two survivors are either one mutual pair or two safety survivors,
		// so the round never singles out a proposer; the first finalist to
		// propose claims the role.
	}

	return out
}

// AllSubmitted reports whether every active player has an intent for the
// given round, which lets the round close before its deadline.
func AllSubmitted(turnIndex int, active []*domain.SeatAssignment, intents []*domain.Intent) bool {
	have := make(map[int64]bool, len(intents))
	for _, it := range intents {
		if it.TurnIndex == turnIndex {
			have[it.PlayerID] = true
		}
	}
	for _, sa := range active {
		if !have[sa.PlayerID] {
			return false
		}
	}
	return len(active) > 0
}
