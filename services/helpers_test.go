package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/db/dbtest"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/utils"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type publishedEvent struct {
	Topic   string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

func (p *recordingPublisher) last(topic string) (publishedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Topic == topic {
			return p.events[i], true
		}
	}
	return publishedEvent{}, false
}

// steppingClock advances one second on every reading.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type testEnv struct {
	deps         Deps
	pub          *recordingPublisher
	tournaments  TournamentService
	participants ParticipantService
	brackets     BracketService
	matches      MatchService
	standings    StandingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	deps := NewDeps(dbtest.New(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	pub := &recordingPublisher{}
	deps.Events = pub
	deps.Metrics = NewMetrics(prometheus.NewRegistry())
	deps.Tracer = noop.NewTracerProvider().Tracer("test")
	deps.Clock = steppingClock()
	deps.Shuffler = brackets.NoShuffle

	return newTestEnvWith(deps, pub)
}

func newTestEnvWith(deps Deps, pub *recordingPublisher) *testEnv {
	return &testEnv{
		deps:         deps,
		pub:          pub,
		tournaments:  NewTournamentService(deps),
		participants: NewParticipantService(deps),
		brackets:     NewBracketService(deps),
		matches:      NewMatchService(deps),
		standings:    NewStandingsService(deps),
	}
}

// openTournament creates an open tournament with n paid participants seeded 1..n.
func (e *testEnv) openTournament(t *testing.T, format models.TournamentFormat, n int) (*models.Tournament, []*models.Participant) {
	t.Helper()
	ctx := context.Background()

	tr, err := e.tournaments.Create(ctx, CreateTournamentInput{
		Title:     "Saturday Brawl",
		Format:    format,
		CreatorID: uuid.New(),
	})
	require.NoError(t, err)
	tr, err = e.tournaments.Open(ctx, tr.ID)
	require.NoError(t, err)

	participants := make([]*models.Participant, 0, n)
	for i := 1; i <= n; i++ {
		p, err := e.participants.Register(ctx, tr.ID, RegisterInput{UserID: uuid.New(), SeedNumber: utils.Ptr(i)})
		require.NoError(t, err)
		p, err = e.participants.SetPaymentStatus(ctx, p.ID, models.PaymentCompleted)
		require.NoError(t, err)
		participants = append(participants, p)
	}
	return tr, participants
}

// generated opens a tournament with n participants and builds its bracket.
func (e *testEnv) generated(t *testing.T, format models.TournamentFormat, n int) (*models.Tournament, []*models.Participant) {
	t.Helper()
	tr, participants := e.openTournament(t, format, n)
	_, err := e.brackets.GenerateBracket(context.Background(), tr.ID, "")
	require.NoError(t, err)
	return tr, participants
}

func (e *testEnv) match(t *testing.T, tournamentID uuid.UUID, round, number int) *models.Match {
	t.Helper()
	matches, err := e.matches.ListMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	t.Fatalf("match R%dM%d not found", round, number)
	return nil
}

func (e *testEnv) declare(t *testing.T, tournamentID uuid.UUID, round, number int, winner *models.Participant) {
	t.Helper()
	m := e.match(t, tournamentID, round, number)
	_, err := e.matches.DeclareWinner(context.Background(), m.ID, winner.ID)
	require.NoError(t, err)
}

func slot(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
