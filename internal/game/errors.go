package game

import "errors"

// ValidationError - a caller mistake (wrong stage, wrong turn, bad target).
// Nothing was mutated; the transport maps these to 400.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validation(code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

// ConflictError - the caller lost a legitimate race (round already closed by
// the timer or another caller). The caller should re-fetch state, not retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

var (
	ErrWrongStage          = validation("wrong_stage", "operation not allowed in current stage")
	ErrNotYourTurn         = validation("not_your_turn", "only the last-seated player may pick")
	ErrTargetNotInPool     = validation("target_not_in_pool", "target is not an unseated player in this session")
	ErrSelfPick            = validation("self_pick", "cannot pick yourself")
	ErrGenderMismatch      = validation("gender_mismatch", "target gender must alternate from the last seat")
	ErrNotActive           = validation("not_active", "player is not active in this session")
	ErrInvalidTarget       = validation("invalid_target", "target must be a distinct active player")
	ErrDuplicateIntent     = validation("duplicate_intent", "intent already submitted for this round")
	ErrActionAfterExpiry   = validation("action_after_expiry", "round deadline has passed")
	ErrSafetySpent         = validation("safety_spent", "safety already used")
	ErrNotEligibleProposer = validation("not_eligible_proposer", "another player is the designated proposer")
	ErrNotFinalist         = validation("not_finalist", "proposal must involve exactly the two remaining players")
	ErrNoProposal          = validation("no_proposal", "no proposal is pending")
	ErrNotRespondent       = validation("not_respondent", "only the proposed player may respond")

	ErrRoundAlreadyClosed = &ConflictError{Message: "round already closed"}
)

// IsValidation reports whether err is a caller mistake.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a lost resolution race.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
