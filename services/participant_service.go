package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/models"
)

type RegisterInput struct {
	UserID     uuid.UUID `json:"user_id"`
	SeedNumber *int      `json:"seed_number,omitempty"`
}

type ParticipantService interface {
	Register(ctx context.Context, tournamentID uuid.UUID, input RegisterInput) (*models.Participant, error)
	// SetPaymentStatus records the outcome reported by the payment provider.
	SetPaymentStatus(ctx context.Context, participantID uuid.UUID, status models.PaymentStatus) (*models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]*models.Participant, error)
}

type participantService struct {
	deps Deps
}

func NewParticipantService(deps Deps) ParticipantService {
	return &participantService{deps: deps}
}

func (s *participantService) Register(ctx context.Context, tournamentID uuid.UUID, input RegisterInput) (registered *models.Participant, err error) {
	if input.UserID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if input.SeedNumber != nil && *input.SeedNumber < 1 {
		return nil, ErrInvalidSeed
	}

	unlock := s.deps.Locker.Lock(tournamentID)
	defer unlock()

	err = withTx(ctx, s.deps.DB, s.deps.Logger, func(tx *sqlx.Tx) error {
		t, txErr := s.deps.Tournaments.GetByID(ctx, tx, tournamentID)
		if txErr != nil {
			return mapRepoErr("load tournament", txErr)
		}
		if t.Status != models.StatusOpen {
			return ErrRegistrationNotOpen
		}
		if !t.HasCapacity() {
			return ErrTournamentFull
		}

		now := s.deps.Clock()
		p := &models.Participant{
			ID:               uuid.New(),
			TournamentID:     tournamentID,
			UserID:           input.UserID,
			RegistrationTime: now,
			PaymentStatus:    models.PaymentPending,
			SeedNumber:       input.SeedNumber,
		}
		if txErr = s.deps.Participants.Create(ctx, tx, p); txErr != nil {
			return mapRepoErr("register participant", txErr)
		}
		if txErr = s.deps.Tournaments.AdjustParticipantCount(ctx, tx, tournamentID, 1, now); txErr != nil {
			return mapRepoErr("count participant", txErr)
		}
		registered = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.InfoContext(ctx, "Participant registered",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("participant_id", registered.ID.String()))
	return registered, nil
}

func (s *participantService) SetPaymentStatus(ctx context.Context, participantID uuid.UUID, status models.PaymentStatus) (*models.Participant, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}
	if err := s.deps.Participants.UpdatePaymentStatus(ctx, nil, participantID, status); err != nil {
		return nil, mapRepoErr("update payment status", err)
	}
	p, err := s.deps.Participants.FindByID(ctx, nil, participantID)
	if err != nil {
		return nil, mapRepoErr("load participant", err)
	}
	return p, nil
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]*models.Participant, error) {
	if _, err := s.deps.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepoErr("load tournament", err)
	}
	participants, err := s.deps.Participants.ListByTournament(ctx, nil, tournamentID, nil)
	if err != nil {
		return nil, mapRepoErr("list participants", err)
	}
	return participants, nil
}
