package sse

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestCloseClientTwiceIsSafe(t *testing.T) {
	hub := NewSSEHub(testLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, ChannelBrowse)

	// A reconnect and the unwinding stream handler both close the same
	// client; the second call must be a no-op.
	hub.CloseClient(client)
	hub.CloseClient(client)

	select {
	case <-client.done:
	default:
		t.Fatalf("done channel should be closed")
	}

	hub.mu.RLock()
	_, subscribed := hub.subscriptions[ChannelBrowse]
	hub.mu.RUnlock()
	if subscribed {
		t.Fatalf("closed client should be dropped from its channels")
	}
}

func TestBroadcastAfterCloseDropsMessage(t *testing.T) {
	hub := NewSSEHub(testLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, ChannelBrowse)
	hub.CloseClient(client)

	// The client is out of the subscription map, so nothing sends on the
	// closed Outbound channel.
	hub.Broadcast(SSEMessage{Channel: ChannelBrowse, Event: SSEEventFilterProfileChanged})
}
