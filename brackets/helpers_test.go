package brackets

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// roster builds n cleared participants registered one minute apart.
func roster(t *testing.T, n int) []*models.Participant {
	t.Helper()
	faker := gofakeit.New(uint64(n))
	tournamentID := uuid.New()
	out := make([]*models.Participant, n)
	for i := range out {
		out[i] = &models.Participant{
			ID:               uuid.MustParse(faker.UUID()),
			TournamentID:     tournamentID,
			UserID:           uuid.MustParse(faker.UUID()),
			RegistrationTime: baseTime.Add(time.Duration(i) * time.Minute),
			PaymentStatus:    models.PaymentCompleted,
		}
	}
	return out
}

// buildMatches runs a generator and converts its slots to stored matches.
func buildMatches(t *testing.T, gen BracketGenerator, participants []*models.Participant) []*models.Match {
	t.Helper()
	slots, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		TournamentID: participants[0].TournamentID,
		Participants: participants,
	})
	require.NoError(t, err)

	out := make([]*models.Match, len(slots))
	for i, bm := range slots {
		out[i] = bm.ToMatch(participants[0].TournamentID, baseTime)
	}
	return out
}

func findMatch(t *testing.T, matches []*models.Match, round, number int) *models.Match {
	t.Helper()
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	t.Fatalf("match R%dM%d not found", round, number)
	return nil
}

// declare marks player1 (or player2 when second is true) as the winner.
func declare(m *models.Match, second bool) {
	winner := m.Player1ID
	if second {
		winner = m.Player2ID
	}
	w := *winner
	ts := baseTime.Add(time.Hour)
	m.WinnerID = &w
	m.Status = models.MatchCompleted
	m.CompletedAt = &ts
}

func applyPlan(matches []*models.Match, plan ProgressionPlan) {
	byID := make(map[uuid.UUID]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for _, u := range plan.Updates {
		m := byID[u.MatchID]
		m.Player1ID = u.Player1ID
		m.Player2ID = u.Player2ID
		m.WinnerID = u.WinnerID
		m.Status = u.Status
		m.CompletedAt = u.CompletedAt
	}
}

func playRound(matches []*models.Match, round int) {
	for _, m := range matches {
		if m.RoundNumber == round && !m.Completed() {
			declare(m, false)
		}
	}
}

func ids(ps ...*models.Participant) []uuid.UUID {
	out := make([]uuid.UUID, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
