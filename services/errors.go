package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/repositories"
)

// Категории ошибок. Конкретные ошибки оборачивают одну из них, поэтому
// маппинг в HTTP работает через errors.Is по категории.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrAlreadyGenerated   = errors.New("bracket already generated")
	ErrUnsupportedFormat  = errors.New("unsupported tournament format")
	ErrValidationFailed   = errors.New("validation failed")
	ErrStoreFailure       = errors.New("store failure")
)

var (
	// Ресурс не найден
	ErrTournamentNotFound  = fmt.Errorf("tournament %w", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", ErrNotFound)
	ErrMatchNotFound       = fmt.Errorf("match %w", ErrNotFound)

	// Нарушены условия операции
	ErrTournamentNotOpen       = fmt.Errorf("%w: tournament is not open", ErrPreconditionFailed)
	ErrTournamentNotInProgress = fmt.Errorf("%w: tournament is not in progress", ErrPreconditionFailed)
	ErrFormatMismatch          = fmt.Errorf("%w: format does not match the tournament format", ErrPreconditionFailed)
	ErrNotEnoughParticipants   = fmt.Errorf("%w: at least 2 payment-cleared participants are required", ErrPreconditionFailed)
	ErrMatchNotReady           = fmt.Errorf("%w: match does not have both participants", ErrPreconditionFailed)
	ErrMatchAlreadyDecided     = fmt.Errorf("%w: match already has a different winner", ErrPreconditionFailed)
	ErrInvalidWinner           = fmt.Errorf("%w: winner is not a participant of the match", ErrPreconditionFailed)
	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid tournament status transition", ErrPreconditionFailed)
	ErrRegistrationNotOpen     = fmt.Errorf("%w: tournament registration is not open", ErrPreconditionFailed)
	ErrTournamentFull          = fmt.Errorf("%w: tournament registration is full", ErrPreconditionFailed)
	ErrRegistrationConflict    = fmt.Errorf("%w: user is already registered for this tournament", ErrPreconditionFailed)
	ErrStandingsUnavailable    = fmt.Errorf("%w: standings are available once the tournament has started", ErrPreconditionFailed)
	ErrMatchNotStartable       = fmt.Errorf("%w: only scheduled matches with both participants can start", ErrPreconditionFailed)
	ErrDisputeNotAllowed       = fmt.Errorf("%w: match result can no longer be disputed", ErrPreconditionFailed)

	// Ошибки валидации входных данных
	ErrTitleRequired         = fmt.Errorf("%w: title is required", ErrValidationFailed)
	ErrInvalidFormat         = fmt.Errorf("%w: unknown tournament format", ErrValidationFailed)
	ErrInvalidStatus         = fmt.Errorf("%w: unknown tournament status", ErrValidationFailed)
	ErrInvalidCapacity       = fmt.Errorf("%w: max participants must be at least 2", ErrValidationFailed)
	ErrInvalidSeed           = fmt.Errorf("%w: seed number must be positive", ErrValidationFailed)
	ErrInvalidPaymentStatus  = fmt.Errorf("%w: unknown payment status", ErrValidationFailed)
	ErrCreatorRequired       = fmt.Errorf("%w: creator id is required", ErrValidationFailed)
	ErrUserRequired          = fmt.Errorf("%w: user id is required", ErrValidationFailed)
	ErrManualStatusForbidden = fmt.Errorf("%w: in_progress and completed are set by the bracket engine", ErrValidationFailed)
)

// storeErr оборачивает ошибку хранилища, сохраняя исходную причину для errors.Is.
// Отмена и таймаут контекста возвращаются как есть: это не сбой хранилища.
func storeErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

// mapRepoErr переводит ошибки репозиториев в ошибки сервисов.
func mapRepoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrParticipantTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchSlotConflict):
		return ErrAlreadyGenerated
	case errors.Is(err, brackets.ErrNotEnoughParticipants):
		return ErrNotEnoughParticipants
	case errors.Is(err, brackets.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	default:
		return storeErr(op, err)
	}
}
