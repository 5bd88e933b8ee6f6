package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sakshamaitools/clash-point-forge/brackets"
	"github.com/sakshamaitools/clash-point-forge/events"
	"github.com/sakshamaitools/clash-point-forge/repositories"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Deps are the collaborators shared by the bracket services.
type Deps struct {
	DB           *sqlx.DB
	Tournaments  repositories.TournamentRepository
	Participants repositories.ParticipantRepository
	Matches      repositories.MatchRepository
	Locker       *TournamentLocker
	Events       events.Publisher
	Metrics      *Metrics
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Clock        func() time.Time
	Shuffler     brackets.Shuffler
}

// NewDeps wires the SQL repositories over db with no-op events, unregistered
// metrics and a no-op tracer; callers replace what they need.
func NewDeps(db *sqlx.DB, logger *slog.Logger) Deps {
	return Deps{
		DB:           db,
		Tournaments:  repositories.NewTournamentRepository(db),
		Participants: repositories.NewParticipantRepository(db),
		Matches:      repositories.NewMatchRepository(db),
		Locker:       NewTournamentLocker(),
		Events:       events.NopPublisher{},
		Metrics:      NewMetrics(nil),
		Tracer:       noop.NewTracerProvider().Tracer("forge"),
		Logger:       logger,
		Clock:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		Shuffler:     brackets.RandomShuffler(),
	}
}

// instrument opens a span for operation; the returned func ends it and
// records the outcome.
func (d Deps) instrument(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, span := d.Tracer.Start(ctx, operation)
	started := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		d.Metrics.observe(operation, time.Since(started).Seconds(), err)
	}
}

// publish отправляет событие после коммита; ошибка доставки только логируется.
func (d Deps) publish(ctx context.Context, topic string, payload interface{}) {
	if err := d.Events.Publish(ctx, topic, payload); err != nil {
		d.Logger.WarnContext(ctx, "Failed to publish event", slog.String("topic", topic), slog.Any("error", err))
	}
}
