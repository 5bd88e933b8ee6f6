//go:build integration

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/db"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newPostgresEnv starts a throwaway Postgres and returns a migrated test env on it.
func newPostgresEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("forge"),
		postgres.WithUsername("forge"),
		postgres.WithPassword("forge"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Connect(dsn, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(conn))

	deps := NewDeps(conn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	pub := &recordingPublisher{}
	deps.Events = pub
	deps.Clock = steppingClock()
	deps.Shuffler = brackets.NoShuffle
	return newTestEnvWith(deps, pub)
}

func TestPostgresSingleEliminationFlow(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()

	tr, ps := env.generated(t, models.FormatSingleElimination, 4)

	env.declare(t, tr.ID, 1, 1, ps[0])
	env.declare(t, tr.ID, 1, 2, ps[3])
	env.declare(t, tr.ID, 2, 1, ps[3])

	got, err := env.tournaments.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	standings, err := env.standings.GetStandings(ctx, tr.ID)
	require.NoError(t, err)
	placements := make([]int, 0, len(standings))
	for _, s := range standings {
		require.NotNil(t, s.FinalPlacement)
		placements = append(placements, *s.FinalPlacement)
	}
	assert.Equal(t, []int{1, 2, 3, 3}, placements)
	assert.Equal(t, ps[3].ID, standings[0].ParticipantID)
}

// Two service instances with separate lockers stand in for two processes;
// the unique slot index decides the race.
func TestPostgresConcurrentGenerationAcrossProcesses(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	tr, _ := env.openTournament(t, models.FormatSingleElimination, 8)

	other := env.deps
	other.Locker = NewTournamentLocker()
	generators := []BracketService{env.brackets, NewBracketService(other)}

	var wg sync.WaitGroup
	errs := make([]error, len(generators))
	for i, g := range generators {
		wg.Add(1)
		go func(i int, g BracketService) {
			defer wg.Done()
			_, errs[i] = g.GenerateBracket(ctx, tr.ID, "")
		}(i, g)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrAlreadyGenerated), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	count, err := env.deps.Matches.CountByTournament(ctx, env.deps.DB, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestPostgresRegistrationConflict(t *testing.T) {
	env := newPostgresEnv(t)
	ctx := context.Background()
	tr, ps := env.openTournament(t, models.FormatRoundRobin, 2)

	_, err := env.participants.Register(ctx, tr.ID, RegisterInput{UserID: ps[0].UserID})
	assert.ErrorIs(t, err, ErrRegistrationConflict)

	_, err = env.participants.Register(ctx, uuid.New(), RegisterInput{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
