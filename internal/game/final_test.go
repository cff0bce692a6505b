package game

import (
	"testing"

	"entangle_backend/internal/domain"
)

func finalSession() *domain.Session {
	return &domain.Session{ID: 1, Stage: domain.StageFinalChoice}
}

func TestValidateProposal(t *testing.T) {
	finalists := []int64{6, 7}

	if err := ValidateProposal(finalSession(), finalists, 6, 7); err != nil {
		t.Fatalf("valid proposal rejected: %v", err)
	}
	if err := ValidateProposal(finalSession(), finalists, 7, 6); err != nil {
		t.Fatalf("either finalist may propose first: %v", err)
	}

	if err := ValidateProposal(finalSession(), finalists, 6, 8); err != ErrNotFinalist {
		t.Fatalf("outsider target: got %v; want ErrNotFinalist", err)
	}
	if err := ValidateProposal(finalSession(), finalists, 6, 6); err != ErrNotFinalist {
		t.Fatalf("self proposal: got %v; want ErrNotFinalist", err)
	}

	sess := finalSession()
	sess.Stage = domain.StageInGame
	if err := ValidateProposal(sess, finalists, 6, 7); err != ErrWrongStage {
		t.Fatalf("wrong stage: got %v; want ErrWrongStage", err)
	}

	pinned := finalSession()
	proposer := int64(7)
	pinned.ProposerID = &proposer
	if err := ValidateProposal(pinned, finalists, 6, 7); err != ErrNotEligibleProposer {
		t.Fatalf("pinned proposer: got %v; want ErrNotEligibleProposer", err)
	}
	if err := ValidateProposal(pinned, finalists, 7, 6); err != nil {
		t.Fatalf("pinned proposer may re-propose: %v", err)
	}
}

func TestValidateResponse(t *testing.T) {
	proposer, target := int64(6), int64(7)

	sess := finalSession()
	if err := ValidateResponse(sess, 7); err != ErrNoProposal {
		t.Fatalf("no proposal: got %v; want ErrNoProposal", err)
	}

	sess.ProposerID = &proposer
	sess.ProposedTargetID = &target
	if err := ValidateResponse(sess, 6); err != ErrNotRespondent {
		t.Fatalf("proposer cannot respond: got %v; want ErrNotRespondent", err)
	}
	if err := ValidateResponse(sess, 7); err != nil {
		t.Fatalf("respondent rejected: %v", err)
	}

	sess.Stage = domain.StageEnded
	if err := ValidateResponse(sess, 7); err != ErrWrongStage {
		t.Fatalf("ended session: got %v; want ErrWrongStage", err)
	}
}
