package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/models"
)

// AdvanceResult describes what one progression pass changed.
type AdvanceResult struct {
	AdvancedRounds      []int      `json:"advanced_rounds"`
	ByesResolved        int        `json:"byes_resolved"`
	TournamentCompleted bool       `json:"tournament_completed"`
	ChampionID          *uuid.UUID `json:"champion_id,omitempty"`
}

type MatchService interface {
	// DeclareWinner records the result of a match and propagates winners
	// into later rounds in the same transaction.
	DeclareWinner(ctx context.Context, matchID, winnerID uuid.UUID) (*models.Match, error)
	// AdvanceTournament re-runs progression; calling it again with no new
	// results changes nothing.
	AdvanceTournament(ctx context.Context, tournamentID uuid.UUID) (*AdvanceResult, error)
	StartMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
	DisputeMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error)
}

type matchService struct {
	deps Deps
}

func NewMatchService(deps Deps) MatchService {
	return &matchService{deps: deps}
}

// lockMatch resolves the tournament of a match and locks it.
func (s *matchService) lockMatch(ctx context.Context, matchID uuid.UUID) (func(), error) {
	current, err := s.deps.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, mapRepoErr("load match", err)
	}
	return s.deps.Locker.Lock(current.TournamentID), nil
}

// loadForUpdate reloads the match inside tx and checks that its tournament is running.
func (s *matchService) loadForUpdate(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (*models.Match, *models.Tournament, error) {
	m, err := s.deps.Matches.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, nil, mapRepoErr("load match", err)
	}
	t, err := s.deps.Tournaments.GetByID(ctx, tx, m.TournamentID)
	if err != nil {
		return nil, nil, mapRepoErr("load tournament", err)
	}
	if t.Status != models.StatusInProgress {
		return nil, nil, ErrTournamentNotInProgress
	}
	return m, t, nil
}

func (s *matchService) DeclareWinner(ctx context.Context, matchID, winnerID uuid.UUID) (result *models.Match, err error) {
	ctx, done := s.deps.instrument(ctx, "MatchService.DeclareWinner")
	defer func() { done(err) }()

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		tournament *models.Tournament
		outcome    *AdvanceResult
		repeated   bool
	)
	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		m, t, txErr := s.loadForUpdate(ctx, tx, matchID)
		if txErr != nil {
			return txErr
		}
		tournament = t

		if m.Player1ID == nil || m.Player2ID == nil {
			return ErrMatchNotReady
		}
		if !m.HasPlayer(winnerID) {
			return ErrInvalidWinner
		}
		if m.Completed() {
			if m.WinnerID != nil && *m.WinnerID == winnerID {
				repeated = true
				result = m
				return nil
			}
			return ErrMatchAlreadyDecided
		}

		now := s.deps.Clock()
		m.WinnerID = &winnerID
		m.Status = models.MatchCompleted
		m.CompletedAt = &now
		if txErr = s.deps.Matches.Update(ctx, tx, m); txErr != nil {
			return mapRepoErr("record result", txErr)
		}
		result = m

		outcome, txErr = s.progress(ctx, tx, t, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if repeated {
		return result, nil
	}

	s.deps.Metrics.MatchesCompleted.Inc()
	s.deps.Logger.InfoContext(ctx, "Match result recorded",
		slog.String("tournament_id", tournament.ID.String()),
		slog.String("match_id", matchID.String()),
		slog.Int("round", result.RoundNumber),
		slog.String("winner_id", winnerID.String()))

	s.deps.publish(ctx, events.TopicMatchCompleted, events.MatchCompleted{
		TournamentID: tournament.ID,
		MatchID:      result.ID,
		Round:        result.RoundNumber,
		MatchNumber:  result.MatchNumber,
		WinnerID:     winnerID,
		OccurredAt:   *result.CompletedAt,
	})
	s.announce(ctx, tournament.ID, outcome)
	return result, nil
}

func (s *matchService) AdvanceTournament(ctx context.Context, tournamentID uuid.UUID) (result *AdvanceResult, err error) {
	ctx, done := s.deps.instrument(ctx, "MatchService.AdvanceTournament")
	defer func() { done(err) }()

	unlock := s.deps.Locker.Lock(tournamentID)
	defer unlock()

	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		t, txErr := s.deps.Tournaments.GetByID(ctx, tx, tournamentID)
		if txErr != nil {
			return mapRepoErr("load tournament", txErr)
		}
		switch t.Status {
		case models.StatusCompleted:
			result = &AdvanceResult{TournamentCompleted: true}
			return nil
		case models.StatusInProgress:
		default:
			return ErrTournamentNotInProgress
		}

		result, txErr = s.progress(ctx, tx, t, s.deps.Clock())
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, tournamentID, result)
	return result, nil
}

// progress применяет план продвижения и, если турнир окончен, проставляет
// места и переводит турнир в completed.
func (s *matchService) progress(ctx context.Context, tx *sqlx.Tx, t *models.Tournament, now time.Time) (*AdvanceResult, error) {
	matches, err := s.deps.Matches.ListByTournament(ctx, tx, t.ID)
	if err != nil {
		return nil, mapRepoErr("list matches", err)
	}

	plan := brackets.PlanProgression(t.Format, matches, now)
	result := &AdvanceResult{AdvancedRounds: plan.AdvancedRounds}

	byID := make(map[uuid.UUID]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for _, upd := range plan.Updates {
		m, ok := byID[upd.MatchID]
		if !ok {
			continue
		}
		if !m.Completed() && upd.Status == models.MatchCompleted {
			result.ByesResolved++
		}
		m.Player1ID = upd.Player1ID
		m.Player2ID = upd.Player2ID
		m.WinnerID = upd.WinnerID
		m.Status = upd.Status
		m.CompletedAt = upd.CompletedAt
		if err := s.deps.Matches.Update(ctx, tx, m); err != nil {
			return nil, mapRepoErr("apply progression", err)
		}
	}

	if !plan.TournamentComplete {
		return result, nil
	}

	if err := s.finish(ctx, tx, t, matches, now, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *matchService) finish(ctx context.Context, tx *sqlx.Tx, t *models.Tournament, matches []*models.Match, now time.Time, result *AdvanceResult) error {
	all, err := s.deps.Participants.ListByTournament(ctx, tx, t.ID, nil)
	if err != nil {
		return mapRepoErr("list participants", err)
	}

	participants := seatedParticipants(all, matches)

	// Время выбывания = время завершения проигранного матча.
	eliminated := make(map[uuid.UUID]time.Time)
	if t.Format.Elimination() {
		for _, m := range matches {
			if loser := m.Loser(); loser != nil && m.CompletedAt != nil {
				eliminated[*loser] = *m.CompletedAt
			}
		}
	}

	placements := brackets.AssignPlacements(t.Format, participants, matches)
	for _, p := range participants {
		place, ok := placements[p.ID]
		if !ok {
			continue
		}
		var eliminatedAt *time.Time
		if at, ok := eliminated[p.ID]; ok {
			eliminatedAt = &at
		}
		if err := s.deps.Participants.SetOutcome(ctx, tx, p.ID, &place, eliminatedAt); err != nil {
			return mapRepoErr("record placement", err)
		}
		if place == 1 && result.ChampionID == nil {
			id := p.ID
			result.ChampionID = &id
		}
	}

	if err := s.deps.Tournaments.UpdateStatus(ctx, tx, t.ID, models.StatusCompleted, now); err != nil {
		return mapRepoErr("complete tournament", err)
	}
	result.TournamentCompleted = true
	return nil
}

// announce публикует события продвижения после коммита.
func (s *matchService) announce(ctx context.Context, tournamentID uuid.UUID, result *AdvanceResult) {
	if result == nil {
		return
	}
	now := s.deps.Clock()
	for _, round := range result.AdvancedRounds {
		s.deps.Metrics.RoundsAdvanced.Inc()
		s.deps.publish(ctx, events.TopicRoundAdvanced, events.RoundAdvanced{
			TournamentID: tournamentID,
			Round:        round,
			OccurredAt:   now,
		})
	}
	s.deps.Metrics.MatchesCompleted.Add(float64(result.ByesResolved))

	if result.TournamentCompleted && result.ChampionID != nil {
		s.deps.Metrics.TournamentsDone.Inc()
		s.deps.Logger.InfoContext(ctx, "Tournament completed",
			slog.String("tournament_id", tournamentID.String()),
			slog.String("champion_id", result.ChampionID.String()))
		s.deps.publish(ctx, events.TopicTournamentCompleted, events.TournamentCompleted{
			TournamentID: tournamentID,
			ChampionID:   result.ChampionID,
			OccurredAt:   now,
		})
	}
}

func (s *matchService) StartMatch(ctx context.Context, matchID uuid.UUID) (result *models.Match, err error) {
	ctx, done := s.deps.instrument(ctx, "MatchService.StartMatch")
	defer func() { done(err) }()

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		m, _, txErr := s.loadForUpdate(ctx, tx, matchID)
		if txErr != nil {
			return txErr
		}
		if m.Status != models.MatchScheduled || m.Player1ID == nil || m.Player2ID == nil {
			return ErrMatchNotStartable
		}

		now := s.deps.Clock()
		m.Status = models.MatchInProgress
		m.StartedAt = &now
		if txErr = s.deps.Matches.Update(ctx, tx, m); txErr != nil {
			return mapRepoErr("start match", txErr)
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.publish(ctx, events.TopicMatchUpdated, events.MatchUpdated{
		TournamentID: result.TournamentID,
		MatchID:      result.ID,
		Status:       result.Status,
		OccurredAt:   *result.StartedAt,
	})
	return result, nil
}

// DisputeMatch reopens a decided match. It is refused once the match that
// the winner advanced into has started or finished.
func (s *matchService) DisputeMatch(ctx context.Context, matchID uuid.UUID) (result *models.Match, err error) {
	ctx, done := s.deps.instrument(ctx, "MatchService.DisputeMatch")
	defer func() { done(err) }()

	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		m, t, txErr := s.loadForUpdate(ctx, tx, matchID)
		if txErr != nil {
			return txErr
		}
		if !m.Completed() || m.IsBye() {
			return ErrDisputeNotAllowed
		}

		if t.Format.Elimination() {
			if txErr = s.releaseFedSlot(ctx, tx, m); txErr != nil {
				return txErr
			}
		}

		m.Status = models.MatchDisputed
		m.WinnerID = nil
		m.CompletedAt = nil
		if txErr = s.deps.Matches.Update(ctx, tx, m); txErr != nil {
			return mapRepoErr("dispute match", txErr)
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "Match disputed",
		slog.String("tournament_id", result.TournamentID.String()),
		slog.String("match_id", matchID.String()))
	s.deps.publish(ctx, events.TopicMatchUpdated, events.MatchUpdated{
		TournamentID: result.TournamentID,
		MatchID:      result.ID,
		Status:       result.Status,
		OccurredAt:   s.deps.Clock(),
	})
	return result, nil
}

// releaseFedSlot clears the slot that m's winner took in the next round.
func (s *matchService) releaseFedSlot(ctx context.Context, tx *sqlx.Tx, m *models.Match) error {
	matches, err := s.deps.Matches.ListByTournament(ctx, tx, m.TournamentID)
	if err != nil {
		return mapRepoErr("list matches", err)
	}

	nextNumber := (m.MatchNumber + 1) / 2
	var next *models.Match
	for _, candidate := range matches {
		if candidate.RoundNumber == m.RoundNumber+1 && candidate.MatchNumber == nextNumber {
			next = candidate
			break
		}
	}
	if next == nil {
		return nil
	}
	if next.Status != models.MatchScheduled {
		return ErrDisputeNotAllowed
	}

	if m.MatchNumber%2 == 1 {
		next.Player1ID = nil
	} else {
		next.Player2ID = nil
	}
	if err := s.deps.Matches.Update(ctx, tx, next); err != nil {
		return mapRepoErr("release next slot", err)
	}
	return nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	if _, err := s.deps.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepoErr("load tournament", err)
	}
	matches, err := s.deps.Matches.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepoErr("list matches", err)
	}
	return matches, nil
}
