package domain

import (
	"errors"
	"time"
)

// Sentinel errors shared by the repositories and services.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Gender - fixed for the lifetime of a session
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Opposite returns the other gender. Seating alternates genders seat over
// seat, anchored at the host.
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// Profile - read-only player identity supplied by the directory
type Profile struct {
	ID          int64     `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Gender      Gender    `db:"gender" json:"gender"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
