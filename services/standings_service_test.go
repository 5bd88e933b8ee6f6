package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandingsService_RequiresStartedTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	open, _ := env.openTournament(t, models.FormatRoundRobin, 3)
	_, err := env.standings.GetStandings(ctx, open.ID)
	assert.ErrorIs(t, err, ErrStandingsUnavailable)

	_, err = env.standings.GetStandings(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestStandingsService_InProgressCountsByes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, ps := env.generated(t, models.FormatSingleElimination, 3)

	env.declare(t, tr.ID, 1, 1, ps[1])

	standings, err := env.standings.GetStandings(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)

	byID := map[uuid.UUID]models.StandingEntry{}
	for _, s := range standings {
		byID[s.ParticipantID] = s
	}
	assert.Equal(t, 1, byID[ps[1].ID].Wins)
	assert.Equal(t, 1, byID[ps[0].ID].Losses)
	assert.Equal(t, 1, byID[ps[2].ID].Wins, "bye counts as a win")
	assert.Equal(t, 0.0, byID[ps[0].ID].WinRate)
}

func TestStandingsService_Snapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, ps := env.generated(t, models.FormatSingleElimination, 2)
	env.declare(t, tr.ID, 1, 1, ps[0])

	snapshot, err := env.standings.Snapshot(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, snapshot.Tournament.ID)
	assert.Equal(t, models.StatusCompleted, snapshot.Tournament.Status)
	require.Len(t, snapshot.Standings, 2)
	assert.Equal(t, ps[0].ID, snapshot.Standings[0].ParticipantID)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}
