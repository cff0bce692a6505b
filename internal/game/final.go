package game

import "entangle_backend/internal/domain"

// ValidateProposal checks a Phase 3 proposal: the session must be in
// final_choice, picker and target must be exactly the two remaining active
// players, and a pinned proposer (from an earlier proposal) keeps the role.
func ValidateProposal(sess *domain.Session, finalists []int64, pickerID, targetID int64) error {
	if err := RequireStage(sess, domain.StageFinalChoice); err != nil {
		return err
	}
	if len(finalists) != 2 {
		return ErrNotFinalist
	}
	a, b := finalists[0], finalists[1]
	if !(pickerID == a && targetID == b) && !(pickerID == b && targetID == a) {
		return ErrNotFinalist
	}
	if sess.ProposerID != nil && *sess.ProposerID != pickerID {
		return ErrNotEligibleProposer
	}
	return nil
}

// ValidateResponse checks a Phase 3 response: a proposal must be pending and
// only the proposed player may answer it.
func ValidateResponse(sess *domain.Session, respondentID int64) error {
	if err := RequireStage(sess, domain.StageFinalChoice); err != nil {
		return err
	}
	if sess.ProposerID == nil || sess.ProposedTargetID == nil {
		return ErrNoProposal
	}
	if *sess.ProposedTargetID != respondentID {
		return ErrNotRespondent
	}
	return nil
}
