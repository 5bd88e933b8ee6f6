package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/brackets"
)

// Broadcaster delivers a message to every websocket client of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Relay forwards bus events to the websocket room of their tournament.
type Relay struct {
	bus    *Bus
	hub    Broadcaster
	logger *slog.Logger
}

func NewRelay(bus *Bus, hub Broadcaster, logger *slog.Logger) *Relay {
	return &Relay{bus: bus, hub: hub, logger: logger}
}

var relayedTopics = map[string]string{
	TopicBracketGenerated:    brackets.MessageBracketGenerated,
	TopicMatchCompleted:      brackets.MessageMatchUpdated,
	TopicMatchUpdated:        brackets.MessageMatchUpdated,
	TopicRoundAdvanced:       brackets.MessageRoundAdvanced,
	TopicTournamentCompleted: brackets.MessageTournamentCompleted,
}

// Run subscribes to every relayed topic and returns; forwarding stops when
// ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	for topic, messageType := range relayedTopics {
		ch, err := r.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("relay: subscribe %s: %w", topic, err)
		}
		go r.forward(ch, topic, messageType)
	}
	return nil
}

func (r *Relay) forward(ch <-chan *message.Message, topic, messageType string) {
	for msg := range ch {
		var envelope struct {
			TournamentID uuid.UUID `json:"tournament_id"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			r.logger.Warn("relay: undecodable event", slog.String("topic", topic), slog.Any("error", err))
			msg.Ack()
			continue
		}

		room := brackets.RoomForTournament(envelope.TournamentID)
		r.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type:    messageType,
			Payload: json.RawMessage(msg.Payload),
			RoomID:  room,
		})
		msg.Ack()
	}
}
