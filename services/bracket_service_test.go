package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBracketService_GenerateSingleElimination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, ps := env.openTournament(t, models.FormatSingleElimination, 5)

	created, err := env.brackets.GenerateBracket(ctx, tr.ID, models.FormatSingleElimination)
	require.NoError(t, err)
	assert.Len(t, created, 6)

	view, err := env.brackets.GetBracket(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, view.Tournament.Status)
	require.Len(t, view.Rounds, 3)
	assert.Len(t, view.Rounds[0].Matches, 3)
	assert.Len(t, view.Rounds[1].Matches, 2)
	assert.Len(t, view.Rounds[2].Matches, 1)

	r1 := view.Rounds[0].Matches
	assert.Equal(t, ps[0].ID, slot(r1[0].Player1ID))
	assert.Equal(t, ps[1].ID, slot(r1[0].Player2ID))
	assert.Equal(t, ps[2].ID, slot(r1[1].Player1ID))
	assert.Equal(t, ps[3].ID, slot(r1[1].Player2ID))
	assert.True(t, r1[2].IsBye())
	assert.Equal(t, ps[4].ID, slot(r1[2].WinnerID))

	for _, m := range append(view.Rounds[1].Matches, view.Rounds[2].Matches...) {
		assert.Nil(t, m.Player1ID)
		assert.Nil(t, m.Player2ID)
		assert.Equal(t, models.MatchScheduled, m.Status)
	}

	evt, ok := env.pub.last(events.TopicBracketGenerated)
	require.True(t, ok)
	payload := evt.Payload.(events.BracketGenerated)
	assert.Equal(t, 6, payload.MatchCount)
	assert.Equal(t, 3, payload.Rounds)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.deps.Metrics.BracketsGenerated.WithLabelValues("single_elimination")))
}

func TestBracketService_GenerateTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, _ := env.generated(t, models.FormatSingleElimination, 4)

	before, err := env.matches.ListMatches(ctx, tr.ID)
	require.NoError(t, err)

	_, err = env.brackets.GenerateBracket(ctx, tr.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyGenerated)

	after, err := env.matches.ListMatches(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBracketService_GeneratePreconditions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat)
		wantErr error
		family  error
	}{
		{
			name: "unknown tournament",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				return uuid.New(), ""
			},
			wantErr: ErrTournamentNotFound,
			family:  ErrNotFound,
		},
		{
			name: "draft tournament",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				tr, err := env.tournaments.Create(ctx, CreateTournamentInput{Title: "Draft", Format: models.FormatSingleElimination, CreatorID: uuid.New()})
				require.NoError(t, err)
				return tr.ID, ""
			},
			wantErr: ErrTournamentNotOpen,
			family:  ErrPreconditionFailed,
		},
		{
			name: "format mismatch",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				tr, _ := env.openTournament(t, models.FormatSingleElimination, 4)
				return tr.ID, models.FormatRoundRobin
			},
			wantErr: ErrFormatMismatch,
			family:  ErrPreconditionFailed,
		},
		{
			name: "single cleared participant",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				tr, _ := env.openTournament(t, models.FormatSingleElimination, 1)
				_, err := env.participants.Register(ctx, tr.ID, RegisterInput{UserID: uuid.New()})
				require.NoError(t, err)
				return tr.ID, ""
			},
			wantErr: ErrNotEnoughParticipants,
			family:  ErrPreconditionFailed,
		},
		{
			name: "double elimination not built",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				tr, _ := env.openTournament(t, models.FormatDoubleElimination, 4)
				return tr.ID, ""
			},
			wantErr: ErrUnsupportedFormat,
			family:  ErrUnsupportedFormat,
		},
		{
			name: "swiss not built",
			setup: func(t *testing.T, env *testEnv) (uuid.UUID, models.TournamentFormat) {
				tr, _ := env.openTournament(t, models.FormatSwiss, 4)
				return tr.ID, models.FormatSwiss
			},
			wantErr: ErrUnsupportedFormat,
			family:  ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			id, format := tt.setup(t, env)

			_, err := env.brackets.GenerateBracket(ctx, id, format)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.family)

			count, err := env.deps.Matches.CountByTournament(ctx, nil, id)
			require.NoError(t, err)
			assert.Zero(t, count)
			_, published := env.pub.last(events.TopicBracketGenerated)
			assert.False(t, published)
		})
	}
}

type failingMatches struct {
	repositories.MatchRepository
	err error
}

func (f failingMatches) CreateBatch(context.Context, repositories.SQLExecutor, []*models.Match) error {
	return f.err
}

func TestBracketService_GenerateRollsBackOnInsertFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, _ := env.openTournament(t, models.FormatSingleElimination, 4)

	boom := errors.New("disk full")
	deps := env.deps
	deps.Matches = failingMatches{MatchRepository: env.deps.Matches, err: boom}

	_, err := NewBracketService(deps).GenerateBracket(ctx, tr.ID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, boom)

	got, err := env.tournaments.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)

	count, err := env.deps.Matches.CountByTournament(ctx, nil, tr.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBracketService_ConcurrentGenerateBuildsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, _ := env.openTournament(t, models.FormatSingleElimination, 8)

	const callers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		duplicate int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.brackets.GenerateBracket(ctx, tr.ID, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyGenerated):
				duplicate++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, duplicate)

	count, err := env.deps.Matches.CountByTournament(ctx, nil, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.Zero(t, env.deps.Locker.size())
}

func TestBracketService_RoundRobin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr, _ := env.openTournament(t, models.FormatRoundRobin, 4)

	created, err := env.brackets.GenerateBracket(ctx, tr.ID, "")
	require.NoError(t, err)
	assert.Len(t, created, 6)
	for _, m := range created {
		assert.Equal(t, 1, m.RoundNumber)
		assert.NotNil(t, m.Player1ID)
		assert.NotNil(t, m.Player2ID)
	}
}

func TestBracketService_LargeRoundRobin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const n = 80
	tr, _ := env.openTournament(t, models.FormatRoundRobin, n)

	created, err := env.brackets.GenerateBracket(ctx, tr.ID, "")
	require.NoError(t, err)
	assert.Len(t, created, n*(n-1)/2)

	count, err := env.deps.Matches.CountByTournament(ctx, nil, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, n*(n-1)/2, count)

	got, err := env.tournaments.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

// cancellingParticipants отменяет контекст сразу после чтения ростера,
// до запуска генератора.
type cancellingParticipants struct {
	repositories.ParticipantRepository
	cancel context.CancelFunc
}

func (c cancellingParticipants) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, filter *models.PaymentStatus) ([]*models.Participant, error) {
	list, err := c.ParticipantRepository.ListByTournament(ctx, exec, tournamentID, filter)
	c.cancel()
	return list, err
}

func TestBracketService_GenerateCancelled(t *testing.T) {
	tests := []struct {
		name  string
		setup func(env *testEnv, cancel context.CancelFunc) BracketService
	}{
		{
			name: "before start",
			setup: func(env *testEnv, cancel context.CancelFunc) BracketService {
				cancel()
				return env.brackets
			},
		},
		{
			name: "during generation",
			setup: func(env *testEnv, cancel context.CancelFunc) BracketService {
				deps := env.deps
				deps.Participants = cancellingParticipants{ParticipantRepository: env.deps.Participants, cancel: cancel}
				return NewBracketService(deps)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tr, _ := env.openTournament(t, models.FormatSingleElimination, 4)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			svc := tt.setup(env, cancel)

			_, err := svc.GenerateBracket(ctx, tr.ID, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.NotErrorIs(t, err, ErrStoreFailure)

			got, err := env.tournaments.Get(context.Background(), tr.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusOpen, got.Status)

			count, err := env.deps.Matches.CountByTournament(context.Background(), nil, tr.ID)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestBracketService_GetBracketUnknownTournament(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.brackets.GetBracket(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
