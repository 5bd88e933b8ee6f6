package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира, соответствующие CHECK в БД.
type TournamentStatus string

const (
	StatusDraft      TournamentStatus = "draft"
	StatusOpen       TournamentStatus = "open"
	StatusInProgress TournamentStatus = "in_progress"
	StatusCompleted  TournamentStatus = "completed"
	StatusCancelled  TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s TournamentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TournamentFormat is the bracket shape a tournament is played in.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin, FormatSwiss:
		return true
	}
	return false
}

// Elimination reports whether losing a match removes the participant.
func (f TournamentFormat) Elimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

// Tournament представляет турнир.
type Tournament struct {
	ID                      uuid.UUID        `json:"id" db:"id"`
	Title                   string           `json:"title" db:"title"`
	Description             *string          `json:"description,omitempty" db:"description"`
	Game                    *string          `json:"game,omitempty" db:"game"`
	Format                  TournamentFormat `json:"format" db:"format"`
	Status                  TournamentStatus `json:"status" db:"status"`
	MaxParticipants         *int             `json:"max_participants,omitempty" db:"max_participants"`
	CurrentParticipantCount int              `json:"current_participant_count" db:"current_participant_count"`
	CreatorID               uuid.UUID        `json:"creator_id" db:"creator_id"`
	StartDate               *time.Time       `json:"start_date,omitempty" db:"start_date"`
	CreatedAt               time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at" db:"updated_at"`
}

// HasCapacity reports whether one more participant fits.
func (t *Tournament) HasCapacity() bool {
	return t.MaxParticipants == nil || t.CurrentParticipantCount < *t.MaxParticipants
}
