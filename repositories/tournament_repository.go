package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament id conflict")
)

type ListTournamentsFilter struct {
	CreatorID *uuid.UUID
	Status    *models.TournamentStatus
	Format    *models.TournamentFormat
	Limit     int
	Offset    int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, at time.Time) error
	AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id uuid.UUID, delta int, at time.Time) error
}

const tournamentColumns = `id, title, description, game, format, status, max_participants,
	current_participant_count, creator_id, start_date, created_at, updated_at`

type sqlTournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) TournamentRepository {
	return &sqlTournamentRepository{db: db}
}

func (r *sqlTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (` + tournamentColumns + `)
		VALUES (:id, :title, :description, :game, :format, :status, :max_participants,
			:current_participant_count, :creator_id, :start_date, :created_at, :updated_at)`

	if _, err := executor.NamedExecContext(ctx, query, t); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`)

	t := &models.Tournament{}
	if err := executor.GetContext(ctx, t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}

	if filter.CreatorID != nil {
		query += " AND creator_id = ?"
		args = append(args, *filter.CreatorID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}
	if filter.Format != nil {
		query += " AND format = ?"
		args = append(args, *filter.Format)
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	tournaments := make([]models.Tournament, 0)
	if err := r.db.SelectContext(ctx, &tournaments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *sqlTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, at time.Time) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`UPDATE tournaments SET status = ?, updated_at = ? WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query, status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id uuid.UUID, delta int, at time.Time) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`
		UPDATE tournaments
		SET current_participant_count = current_participant_count + ?, updated_at = ?
		WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query, delta, at, id)
	if err != nil {
		return fmt.Errorf("failed to adjust participant count: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
