package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func testClient(hub *Hub, sessionID, playerID int64) *Client {
	return &Client{SessionID: sessionID, PlayerID: playerID, hub: hub, send: make(chan []byte, 4)}
}

func TestPublishReachesOnlySessionWatchers(t *testing.T) {
	hub := NewHub()
	a := testClient(hub, 1, 10)
	b := testClient(hub, 1, 11)
	other := testClient(hub, 2, 12)
	for _, c := range []*Client{a, b, other} {
		hub.register(c)
	}

	hub.Publish(1, "round_closed", map[string]int{"turn_index": 3})

	for _, c := range []*Client{a, b} {
		select {
		case frame := <-c.send:
			var env Envelope
			if err := json.Unmarshal(frame, &env); err != nil {
				t.Fatalf("bad frame: %v", err)
			}
			if env.Type != "round_closed" || env.SessionID != 1 {
				t.Fatalf("envelope = %+v", env)
			}
		default:
			t.Fatalf("watcher %d received nothing", c.PlayerID)
		}
	}
	select {
	case <-other.send:
		t.Fatal("watcher of another session received the event")
	default:
	}
}

func TestPublishDropsFramesForSlowClient(t *testing.T) {
	hub := NewHub()
	c := &Client{SessionID: 1, PlayerID: 10, hub: hub, send: make(chan []byte)}
	hub.register(c)

	// unbuffered channel with no reader: the publish must not block
	done := make(chan struct{})
	go func() {
		hub.Publish(1, "seat_picked", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}
	// the frame was dropped, not queued
	select {
	case <-c.send:
		t.Fatal("frame unexpectedly delivered")
	default:
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := testClient(hub, 1, 10)
	hub.register(c)
	if got := hub.WatcherCount(1); got != 1 {
		t.Fatalf("watcher count = %d", got)
	}
	hub.unregister(c)
	if got := hub.WatcherCount(1); got != 0 {
		t.Fatalf("watcher count after unregister = %d", got)
	}

	hub.Publish(1, "player_joined", nil)
	select {
	case <-c.send:
		t.Fatal("unregistered client received event")
	default:
	}
}
