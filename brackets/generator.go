package brackets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrUnsupportedFormat     = errors.New("unsupported bracket format")
)

type GenerateBracketParams struct {
	TournamentID uuid.UUID
	Participants []*models.Participant
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// BracketMatch is a generated slot before it is persisted.
type BracketMatch struct {
	Round        int
	OrderInRound int

	Participant1ID *uuid.UUID
	Participant2ID *uuid.UUID

	// IsBye marks a first-round match with no opponent; it is stored already won.
	IsBye bool
}

// IsPlaceholder reports whether both slots wait for earlier rounds.
func (bm *BracketMatch) IsPlaceholder() bool {
	return bm.Participant1ID == nil && bm.Participant2ID == nil
}

// ToMatch builds the row to insert for this slot.
func (bm *BracketMatch) ToMatch(tournamentID uuid.UUID, now time.Time) *models.Match {
	m := &models.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  bm.Round,
		MatchNumber:  bm.OrderInRound,
		Player1ID:    bm.Participant1ID,
		Player2ID:    bm.Participant2ID,
		Status:       models.MatchScheduled,
		CreatedAt:    now,
	}
	if bm.IsBye {
		completedAt := now
		m.Status = models.MatchCompleted
		m.WinnerID = bm.Participant1ID
		m.CompletedAt = &completedAt
	}
	return m
}

// NewGenerator returns the generator for format. Formats that are recognised
// but not built yet are reported as unsupported as well.
func NewGenerator(format models.TournamentFormat, shuffle Shuffler) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(shuffle), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.FormatDoubleElimination, models.FormatSwiss:
		return nil, fmt.Errorf("%w: %s is not implemented", ErrUnsupportedFormat, format)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
