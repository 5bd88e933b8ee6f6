// Package events carries bracket domain events between the services and
// their listeners (websocket relay, standings archive).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
)

const (
	TopicBracketGenerated    = "bracket.generated"
	TopicMatchCompleted      = "match.completed"
	TopicMatchUpdated        = "match.updated"
	TopicRoundAdvanced       = "round.advanced"
	TopicTournamentCompleted = "tournament.completed"
)

type BracketGenerated struct {
	TournamentID uuid.UUID               `json:"tournament_id"`
	Format       models.TournamentFormat `json:"format"`
	MatchCount   int                     `json:"match_count"`
	Rounds       int                     `json:"rounds"`
	OccurredAt   time.Time               `json:"occurred_at"`
}

type MatchCompleted struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	MatchID      uuid.UUID `json:"match_id"`
	Round        int       `json:"round"`
	MatchNumber  int       `json:"match_number"`
	WinnerID     uuid.UUID `json:"winner_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// MatchUpdated reports a status change other than a result: start or dispute.
type MatchUpdated struct {
	TournamentID uuid.UUID          `json:"tournament_id"`
	MatchID      uuid.UUID          `json:"match_id"`
	Status       models.MatchStatus `json:"status"`
	OccurredAt   time.Time          `json:"occurred_at"`
}

type RoundAdvanced struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Round        int       `json:"round"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type TournamentCompleted struct {
	TournamentID uuid.UUID  `json:"tournament_id"`
	ChampionID   *uuid.UUID `json:"champion_id,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// Publisher is what the services need from the bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// Bus is an in-process pub/sub over watermill's Go channel transport.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg *message.Message) (T, error) {
	var out T
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return out, fmt.Errorf("failed to decode message %s: %w", msg.UUID, err)
	}
	return out, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
