package models

import (
	"time"

	"github.com/google/uuid"
)

// StandingEntry is a derived leaderboard row. It is never stored.
type StandingEntry struct {
	ParticipantID  uuid.UUID `json:"participant_id"`
	UserID         uuid.UUID `json:"user_id"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	WinRate        float64   `json:"win_rate"`
	FinalPlacement *int      `json:"final_placement,omitempty"`
}

// Played is the number of contested matches the entry has finished.
func (s StandingEntry) Played() int {
	return s.Wins + s.Losses
}

// StandingsSnapshot is the archived leaderboard of a finished tournament.
type StandingsSnapshot struct {
	Tournament  Tournament      `json:"tournament"`
	Standings   []StandingEntry `json:"standings"`
	GeneratedAt time.Time       `json:"generated_at"`
}
