package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Participant is a user's registration in one tournament.
type Participant struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	TournamentID     uuid.UUID     `json:"tournament_id" db:"tournament_id"`
	UserID           uuid.UUID     `json:"user_id" db:"user_id"`
	RegistrationTime time.Time     `json:"registration_time" db:"registration_time"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	SeedNumber       *int          `json:"seed_number,omitempty" db:"seed_number"`
	FinalPlacement   *int          `json:"final_placement,omitempty" db:"final_placement"`
	EliminatedAt     *time.Time    `json:"eliminated_at,omitempty" db:"eliminated_at"`
}

// Cleared reports whether the participant may enter the bracket.
func (p *Participant) Cleared() bool {
	return p.PaymentStatus == PaymentCompleted
}
