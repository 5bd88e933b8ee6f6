package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/models"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]models.StandingEntry, error)
	Snapshot(ctx context.Context, tournamentID uuid.UUID) (*models.StandingsSnapshot, error)
}

type standingsService struct {
	deps Deps
}

func NewStandingsService(deps Deps) StandingsService {
	return &standingsService{deps: deps}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID uuid.UUID) ([]models.StandingEntry, error) {
	snapshot, err := s.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return snapshot.Standings, nil
}

func (s *standingsService) Snapshot(ctx context.Context, tournamentID uuid.UUID) (snapshot *models.StandingsSnapshot, err error) {
	ctx, done := s.deps.instrument(ctx, "StandingsService.Snapshot")
	defer func() { done(err) }()

	t, err := s.deps.Tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepoErr("load tournament", err)
	}
	if t.Status != models.StatusInProgress && t.Status != models.StatusCompleted {
		return nil, ErrStandingsUnavailable
	}

	var (
		participants []*models.Participant
		matches      []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.deps.Participants.ListByTournament(gCtx, nil, tournamentID, nil)
		if err != nil {
			return mapRepoErr("list participants", err)
		}
		participants = list
		return nil
	})
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

	return &models.StandingsSnapshot{
		Tournament:  *t,
		Standings:   brackets.DeriveStandings(t.Format, seatedParticipants(participants, matches), matches),
		GeneratedAt: s.deps.Clock(),
	}, nil
}
