package domain

import "time"

// IntentAction - what a player commits to for one round
type IntentAction string

const (
	ActionPick   IntentAction = "pick"
	ActionSafety IntentAction = "safety"
)

// Intent - a player's single committed action for a round. At most one
// intent exists per (session, player, turn index); stale rows are discarded
// when the round closes.
type Intent struct {
	SessionID int64        `db:"session_id" json:"session_id"`
	PlayerID  int64        `db:"player_id" json:"player_id"`
	TurnIndex int          `db:"turn_index" json:"turn_index"`
	Action    IntentAction `db:"action" json:"action"`
	TargetID  *int64       `db:"target_id" json:"target_id,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
