package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchSlotConflict       = errors.New("match already exists for this tournament round and number")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
)

type MatchRepository interface {
	// CreateBatch inserts matches in chunks; pass a tx to keep the batch atomic.
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	// ListByTournament returns matches ordered by round, then match number.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error)
	// Update writes the mutable fields: players, winner, status and timestamps.
	Update(ctx context.Context, exec SQLExecutor, m *models.Match) error
}

const matchColumns = `id, tournament_id, round_number, match_number, player1_id, player2_id,
	winner_id, status, scheduled_time, started_at, completed_at, created_at`

// matchInsertChunk * 12 колонок остается ниже лимита SQLite в 32766 параметров
// и лимита Postgres в 65535.
const matchInsertChunk = 200

type sqlMatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	rows := make([]models.Match, len(matches))
	for i, m := range matches {
		rows[i] = *m
	}

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (:id, :tournament_id, :round_number, :match_number, :player1_id, :player2_id,
			:winner_id, :status, :scheduled_time, :started_at, :completed_at, :created_at)`

	for start := 0; start < len(rows); start += matchInsertChunk {
		end := min(start+matchInsertChunk, len(rows))
		if _, err := executor.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`SELECT ` + matchColumns + ` FROM matches WHERE id = ?`)

	m := &models.Match{}
	if err := executor.GetContext(ctx, m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = ?
		ORDER BY round_number ASC, match_number ASC`)

	matches := make([]*models.Match, 0)
	if err := executor.SelectContext(ctx, &matches, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *sqlMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error) {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`SELECT COUNT(*) FROM matches WHERE tournament_id = ?`)

	var count int
	if err := executor.GetContext(ctx, &count, query, tournamentID); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *sqlMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`
		UPDATE matches SET
			player1_id = ?,
			player2_id = ?,
			winner_id = ?,
			status = ?,
			scheduled_time = ?,
			started_at = ?,
			completed_at = ?
		WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query,
		m.Player1ID, m.Player2ID, m.WinnerID, m.Status,
		m.ScheduledTime, m.StartedAt, m.CompletedAt,
		m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	if constraint, ok := uniqueViolation(err); ok && matchesConstraint(constraint, "matches_tournament_round_match_key") {
		return ErrMatchSlotConflict
	}
	if _, ok := foreignKeyViolation(err); ok {
		return ErrMatchParticipantInvalid
	}
	return fmt.Errorf("match query failed: %w", err)
}
