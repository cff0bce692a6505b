package game

import "entangle_backend/internal/domain"

// stageOrder fixes the forward-only progression of a session. A session
// never moves backward; the only other exit is deletion of the whole
// aggregate.
var stageOrder = map[domain.Stage]int{
	domain.StageWaiting:     0,
	domain.StageSeating:     1,
	domain.StageInGame:      2,
	domain.StageFinalChoice: 3,
	domain.StageEnded:       4,
}

// CanAdvance reports whether a session may move from one stage directly to
// the next. Skipping stages is not allowed, with one exception: a round that
// leaves fewer than two survivors ends the session straight from in_game.
func CanAdvance(from, to domain.Stage) bool {
	if from == domain.StageInGame && to == domain.StageEnded {
		return true
	}
	fi, ok1 := stageOrder[from]
	ti, ok2 := stageOrder[to]
	return ok1 && ok2 && ti == fi+1
}

// Advance moves the session to the given stage. Every stage write in the
// system goes through here so the progression rule lives in one place.
func Advance(s *domain.Session, to domain.Stage) error {
	if !CanAdvance(s.Stage, to) {
		return ErrWrongStage
	}
	s.Stage = to
	return nil
}

// RequireStage rejects an operation invoked outside its stage.
func RequireStage(s *domain.Session, want domain.Stage) error {
	if s.Stage != want {
		return ErrWrongStage
	}
	return nil
}
