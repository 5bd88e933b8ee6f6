package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchDisputed   MatchStatus = "disputed"
)

// Match is one pairing slot of a bracket. A match with no players yet is a
// placeholder waiting for earlier rounds.
type Match struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	TournamentID  uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	RoundNumber   int         `json:"round_number" db:"round_number"`
	MatchNumber   int         `json:"match_number" db:"match_number"`
	Player1ID     *uuid.UUID  `json:"player1_id" db:"player1_id"`
	Player2ID     *uuid.UUID  `json:"player2_id" db:"player2_id"`
	WinnerID      *uuid.UUID  `json:"winner_id" db:"winner_id"`
	Status        MatchStatus `json:"status" db:"status"`
	ScheduledTime *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`
	StartedAt     *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) Completed() bool {
	return m.Status == MatchCompleted
}

// IsBye reports whether the match was resolved without an opponent.
func (m *Match) IsBye() bool {
	return m.Completed() && m.Player1ID != nil && m.Player2ID == nil
}

// HasPlayer reports whether id occupies either slot.
func (m *Match) HasPlayer(id uuid.UUID) bool {
	return (m.Player1ID != nil && *m.Player1ID == id) || (m.Player2ID != nil && *m.Player2ID == id)
}

// Loser returns the participant who lost a completed, contested match.
func (m *Match) Loser() *uuid.UUID {
	if !m.Completed() || m.WinnerID == nil || m.Player1ID == nil || m.Player2ID == nil {
		return nil
	}
	if *m.WinnerID == *m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}
