package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/models"
	"github.com/sakshamaitools/clash-point-forge/repositories"
)

type CreateTournamentInput struct {
	Title           string                  `json:"title"`
	Description     *string                 `json:"description,omitempty"`
	Game            *string                 `json:"game,omitempty"`
	Format          models.TournamentFormat `json:"format"`
	MaxParticipants *int                    `json:"max_participants,omitempty"`
	StartDate       *time.Time              `json:"start_date,omitempty"`
	CreatorID       uuid.UUID               `json:"-"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	// UpdateStatus applies a manual transition. in_progress and completed
	// are reserved for the bracket engine.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) (*models.Tournament, error)
	Open(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
}

type tournamentService struct {
	deps Deps
}

func NewTournamentService(deps Deps) TournamentService {
	return &tournamentService{deps: deps}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Title = strings.TrimSpace(input.Title)
	switch {
	case input.Title == "":
		return nil, ErrTitleRequired
	case !input.Format.Valid():
		return nil, ErrInvalidFormat
	case input.MaxParticipants != nil && *input.MaxParticipants < 2:
		return nil, ErrInvalidCapacity
	case input.CreatorID == uuid.Nil:
		return nil, ErrCreatorRequired
	}

	now := s.deps.Clock()
	t := &models.Tournament{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		Game:            input.Game,
		Format:          input.Format,
		Status:          models.StatusDraft,
		MaxParticipants: input.MaxParticipants,
		CreatorID:       input.CreatorID,
		StartDate:       input.StartDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.deps.Tournaments.Create(ctx, nil, t); err != nil {
		return nil, mapRepoErr("create tournament", err)
	}

	s.deps.Logger.InfoContext(ctx, "Tournament created",
		slog.String("tournament_id", t.ID.String()),
		slog.String("format", string(t.Format)))
	return t, nil
}

func (s *tournamentService) Get(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.deps.Tournaments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoErr("load tournament", err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Format != nil && !filter.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	list, err := s.deps.Tournaments.List(ctx, filter)
	if err != nil {
		return nil, mapRepoErr("list tournaments", err)
	}
	return list, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TournamentStatus) (updated *models.Tournament, err error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == models.StatusInProgress || status == models.StatusCompleted {
		return nil, ErrManualStatusForbidden
	}

	unlock := s.deps.Locker.Lock(id)
	defer unlock()

	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		t, txErr := s.deps.Tournaments.GetByID(ctx, tx, id)
		if txErr != nil {
			return mapRepoErr("load tournament", txErr)
		}
		updated = t
		if t.Status == status {
			return nil
		}
		if !isValidStatusTransition(t.Status, status) {
			return ErrInvalidStatusTransition
		}

		now := s.deps.Clock()
		if txErr = s.deps.Tournaments.UpdateStatus(ctx, tx, id, status, now); txErr != nil {
			return mapRepoErr("update tournament status", txErr)
		}
		t.Status = status
		t.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "Tournament status updated",
		slog.String("tournament_id", id.String()),
		slog.String("status", string(updated.Status)))
	return updated, nil
}

func (s *tournamentService) Open(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return s.UpdateStatus(ctx, id, models.StatusOpen)
}

func (s *tournamentService) Cancel(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return s.UpdateStatus(ctx, id, models.StatusCancelled)
}

// isValidStatusTransition: статусы только движутся вперёд, отмена возможна
// из любого незавершённого состояния.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusDraft:      {models.StatusOpen, models.StatusCancelled},
		models.StatusOpen:       {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	}
	for _, s := range allowed[current] {
		if s == next {
			return true
		}
	}
	return false
}
