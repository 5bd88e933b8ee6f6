package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesOnlyRoomMembers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	roomA := RoomForTournament(uuid.New())
	roomB := RoomForTournament(uuid.New())

	inA := &Client{Hub: hub, Send: make(chan []byte, 1), Room: roomA}
	inB := &Client{Hub: hub, Send: make(chan []byte, 1), Room: roomB}
	hub.Register <- inA
	hub.Register <- inB

	require.Eventually(t, func() bool {
		return hub.ClientCount(roomA) == 1 && hub.ClientCount(roomB) == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(roomA, WebSocketMessage{Type: MessageMatchUpdated, RoomID: roomA, Payload: map[string]int{"round": 2}})

	select {
	case raw := <-inA.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageMatchUpdated, msg.Type)
		assert.Equal(t, roomA, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("room member did not receive the broadcast")
	}

	select {
	case <-inB.Send:
		t.Fatal("client of another room received the broadcast")
	default:
	}

	hub.Unregister <- inA
	require.Eventually(t, func() bool { return hub.ClientCount(roomA) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-inA.Send
	assert.False(t, open, "unregistering closes the send channel")
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "tournament_x"}
	hub.Register <- client
	cancel()
	<-done

	_, open := <-client.Send
	assert.False(t, open)
	assert.Zero(t, hub.ClientCount("tournament_x"))
}
