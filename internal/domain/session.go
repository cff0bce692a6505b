package domain

import "time"

// Stage - coarse session phase; only ever advances forward
type Stage string

const (
	StageWaiting     Stage = "waiting"
	StageSeating     Stage = "seating"
	StageInGame      Stage = "in_game"
	StageFinalChoice Stage = "final_choice"
	StageEnded       Stage = "ended"
)

const (
	MinGameSize = 5
	MaxGameSize = 9
)

// Session - one game room from lobby to final pair
type Session struct {
	ID               int64      `db:"id" json:"id"`
	HostID           int64      `db:"host_id" json:"host_id"`
	Stage            Stage      `db:"stage" json:"stage"`
	GameSize         int        `db:"game_size" json:"game_size"`
	MaxFemales       int        `db:"max_females" json:"max_females"`
	MaxMales         int        `db:"max_males" json:"max_males"`
	TurnIndex        int        `db:"turn_index" json:"turn_index"`
	RoundDeadline    *time.Time `db:"round_deadline" json:"round_deadline,omitempty"`
	ProposerID       *int64     `db:"proposer_id" json:"proposer_id,omitempty"`
	ProposedTargetID *int64     `db:"proposed_target_id" json:"proposed_target_id,omitempty"`
	FinalPairA       *int64     `db:"final_pair_a" json:"final_pair_a,omitempty"`
	FinalPairB       *int64     `db:"final_pair_b" json:"final_pair_b,omitempty"`
	NeedsReconcile   bool       `db:"needs_reconcile" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Quotas derives the per-gender seat quotas for a session of the given size.
// The host's gender gets the ceiling half so seats can alternate starting
// from seat 1.
func Quotas(hostGender Gender, gameSize int) (maxFemales, maxMales int) {
	ceilHalf := (gameSize + 1) / 2
	if hostGender == GenderFemale {
		return ceilHalf, gameSize - ceilHalf
	}
	return gameSize - ceilHalf, ceilHalf
}
