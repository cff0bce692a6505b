package domain

import "time"

// SeatAssignment - one player's membership in a session. Seat is nil while
// the player is still in the unseated pool (or joined as a spectator).
type SeatAssignment struct {
	SessionID        int64     `db:"session_id" json:"session_id"`
	PlayerID         int64     `db:"player_id" json:"player_id"`
	Seat             *int      `db:"seat" json:"seat,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	HasSafety        bool      `db:"has_safety" json:"has_safety"`
	LastPickedBy     *int64    `db:"last_picked_by" json:"last_picked_by,omitempty"`
	LastPickedTarget *int64    `db:"last_picked_target" json:"last_picked_target,omitempty"`
	JoinedAt         time.Time `db:"joined_at" json:"joined_at"`
}

// Seated reports whether the player holds a numbered seat.
func (sa *SeatAssignment) Seated() bool {
	return sa.Seat != nil
}

// InPool reports whether the player is still waiting to be seated during
// the seating phase.
func (sa *SeatAssignment) InPool() bool {
	return sa.Seat == nil && sa.IsActive
}
