package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/models"
	"golang.org/x/sync/errgroup"
)

type RoundView struct {
	Round   int             `json:"round"`
	Matches []*models.Match `json:"matches"`
}

type BracketView struct {
	Tournament   *models.Tournament    `json:"tournament"`
	Participants []*models.Participant `json:"participants"`
	Rounds       []RoundView           `json:"rounds"`
}

type BracketService interface {
	// GenerateBracket builds and stores the bracket of an open tournament and
	// moves it to in_progress. An empty format accepts the tournament's own.
	GenerateBracket(ctx context.Context, tournamentID uuid.UUID, format models.TournamentFormat) ([]*models.Match, error)
	GetBracket(ctx context.Context, tournamentID uuid.UUID) (*BracketView, error)
}

type bracketService struct {
	deps Deps
}

func NewBracketService(deps Deps) BracketService {
	return &bracketService{deps: deps}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID, format models.TournamentFormat) (created []*models.Match, err error) {
	ctx, done := s.deps.instrument(ctx, "BracketService.GenerateBracket")
	defer func() { done(err) }()

	unlock := s.deps.Locker.Lock(tournamentID)
	defer unlock()

	var tournament *models.Tournament
	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		var txErr error
		tournament, txErr = s.deps.Tournaments.GetByID(ctx, tx, tournamentID)
		if txErr != nil {
			return mapRepoErr("load tournament", txErr)
		}

		existing, txErr := s.deps.Matches.CountByTournament(ctx, tx, tournamentID)
		if txErr != nil {
			return mapRepoErr("count matches", txErr)
		}
		if existing > 0 {
			return ErrAlreadyGenerated
		}

		if tournament.Status != models.StatusOpen {
			return ErrTournamentNotOpen
		}
		if format != "" && format != tournament.Format {
			return ErrFormatMismatch
		}

		generator, txErr := brackets.NewGenerator(tournament.Format, s.deps.Shuffler)
		if txErr != nil {
			return mapRepoErr("select generator", txErr)
		}

		cleared := models.PaymentCompleted
		participants, txErr := s.deps.Participants.ListByTournament(ctx, tx, tournamentID, &cleared)
		if txErr != nil {
			return mapRepoErr("list participants", txErr)
		}
		if len(participants) < 2 {
			return ErrNotEnoughParticipants
		}

		planned, txErr := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			TournamentID: tournamentID,
			Participants: participants,
		})
		if txErr != nil {
			return mapRepoErr("generate bracket", txErr)
		}

		now := s.deps.Clock()
		created = make([]*models.Match, 0, len(planned))
		for _, bm := range planned {
			created = append(created, bm.ToMatch(tournamentID, now))
		}

		if txErr = s.deps.Matches.CreateBatch(ctx, tx, created); txErr != nil {
			return mapRepoErr("insert matches", txErr)
		}
		if txErr = s.deps.Tournaments.UpdateStatus(ctx, tx, tournamentID, models.StatusInProgress, now); txErr != nil {
			return mapRepoErr("start tournament", txErr)
		}
		return nil
	})
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "Bracket generation rejected",
			slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		return nil, err
	}

	rounds := 0
	for _, m := range created {
		rounds = max(rounds, m.RoundNumber)
	}
	s.deps.Metrics.BracketsGenerated.WithLabelValues(string(tournament.Format)).Inc()
	s.deps.Logger.InfoContext(ctx, "Bracket generated",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("format", string(tournament.Format)),
		slog.Int("matches", len(created)),
		slog.Int("rounds", rounds))

	s.deps.publish(ctx, events.TopicBracketGenerated, events.BracketGenerated{
		TournamentID: tournamentID,
		Format:       tournament.Format,
		MatchCount:   len(created),
		Rounds:       rounds,
		OccurredAt:   s.deps.Clock(),
	})
	return created, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID uuid.UUID) (view *BracketView, err error) {
	ctx, done := s.deps.instrument(ctx, "BracketService.GetBracket")
	defer func() { done(err) }()

	view = &BracketView{}
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Турнир
	g.Go(func() error {
		t, err := s.deps.Tournaments.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			return mapRepoErr("load tournament", err)
		}
		view.Tournament = t
		return nil
	})

	// 2. Участники
	g.Go(func() error {
		participants, err := s.deps.Participants.ListByTournament(gCtx, nil, tournamentID, nil)
		if err != nil {
			return mapRepoErr("list participants", err)
		}
		view.Participants = participants
		return nil
	})

	// 3. Матчи
	g.Go(func() error {
		list, err := s.deps.Matches.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return mapRepoErr("list matches", err)
		}
		matches = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Rounds = groupByRound(matches)
	return view, nil
}

// groupByRound expects matches ordered by round, then match number.
func groupByRound(matches []*models.Match) []RoundView {
	rounds := make([]RoundView, 0)
	for _, m := range matches {
		if n := len(rounds); n == 0 || rounds[n-1].Round != m.RoundNumber {
			rounds = append(rounds, RoundView{Round: m.RoundNumber})
		}
		last := &rounds[len(rounds)-1]
		last.Matches = append(last.Matches, m)
	}
	return rounds
}

// seatedParticipants keeps the participants that occupy a bracket slot.
func seatedParticipants(all []*models.Participant, matches []*models.Match) []*models.Participant {
	seated := make(map[uuid.UUID]bool)
	for _, m := range matches {
		if m.Player1ID != nil {
			seated[*m.Player1ID] = true
		}
		if m.Player2ID != nil {
			seated[*m.Player2ID] = true
		}
	}
	out := make([]*models.Participant, 0, len(seated))
	for _, p := range all {
		if seated[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
