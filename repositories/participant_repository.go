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
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantConflict          = errors.New("participant conflict: user already registered for this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	FindByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Participant, error)
	FindByUserAndTournament(ctx context.Context, exec SQLExecutor, userID, tournamentID uuid.UUID) (*models.Participant, error)
	// ListByTournament returns participants in registration order; a nil
	// filter returns every payment status.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, paymentFilter *models.PaymentStatus) ([]*models.Participant, error)
	UpdatePaymentStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PaymentStatus) error
	SetOutcome(ctx context.Context, exec SQLExecutor, id uuid.UUID, placement *int, eliminatedAt *time.Time) error
}

const participantColumns = `id, tournament_id, user_id, registration_time, payment_status,
	seed_number, final_placement, eliminated_at`

type sqlParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) ParticipantRepository {
	return &sqlParticipantRepository{db: db}
}

func (r *sqlParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (` + participantColumns + `)
		VALUES (:id, :tournament_id, :user_id, :registration_time, :payment_status,
			:seed_number, :final_placement, :eliminated_at)`

	if _, err := executor.NamedExecContext(ctx, query, p); err != nil {
		if constraint, ok := uniqueViolation(err); ok && matchesConstraint(constraint, "participants_tournament_user_key") {
			return ErrParticipantConflict
		}
		if constraint, ok := foreignKeyViolation(err); ok && matchesConstraint(constraint, "participants_tournament_id_fkey") {
			return ErrParticipantTournamentInvalid
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *sqlParticipantRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Participant, error) {
	executor := r.getExecutor(exec)
	p := &models.Participant{}
	if err := executor.GetContext(ctx, p, executor.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *sqlParticipantRepository) FindByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = ?`
	return r.findOne(ctx, exec, query, id)
}

func (r *sqlParticipantRepository) FindByUserAndTournament(ctx context.Context, exec SQLExecutor, userID, tournamentID uuid.UUID) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE user_id = ? AND tournament_id = ?`
	return r.findOne(ctx, exec, query, userID, tournamentID)
}

func (r *sqlParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, paymentFilter *models.PaymentStatus) ([]*models.Participant, error) {
	executor := r.getExecutor(exec)

	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = ?`
	args := []interface{}{tournamentID}
	if paymentFilter != nil {
		query += " AND payment_status = ?"
		args = append(args, *paymentFilter)
	}
	query += " ORDER BY registration_time, id"

	participants := make([]*models.Participant, 0)
	if err := executor.SelectContext(ctx, &participants, executor.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %s: %w", tournamentID, err)
	}
	return participants, nil
}

func (r *sqlParticipantRepository) UpdatePaymentStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PaymentStatus) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`UPDATE participants SET payment_status = ? WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update participant payment status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *sqlParticipantRepository) SetOutcome(ctx context.Context, exec SQLExecutor, id uuid.UUID, placement *int, eliminatedAt *time.Time) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`UPDATE participants SET final_placement = ?, eliminated_at = ? WHERE id = ?`)

	result, err := executor.ExecContext(ctx, query, placement, eliminatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set participant outcome: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
