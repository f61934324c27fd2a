package brackets

import (
	"encoding/json"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastToRoom(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	room := RoomForTournament("7")
	inRoom := &Client{Hub: hub, Send: make(chan []byte, 1), Room: room}
	elsewhere := &Client{Hub: hub, Send: make(chan []byte, 1), Room: RoomForTournament("8")}
	hub.Register <- inRoom
	hub.Register <- elsewhere
	waitFor(t, func() bool { return hub.RoomSize(room) == 1 })

	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageScheduleUpdated, Payload: "2024-06-01", RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		if msg.Type != MessageScheduleUpdated || msg.Payload != "2024-06-01" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	default:
		t.Fatal("room member received nothing")
	}
	if len(elsewhere.Send) != 0 {
		t.Fatal("client of another room received the broadcast")
	}

	hub.Unregister <- inRoom
	waitFor(t, func() bool { return hub.RoomSize(room) == 0 })
	if _, open := <-inRoom.Send; open {
		t.Fatal("send channel should be closed after unregister")
	}
	// Broadcasting to an empty room is a no-op.
	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageGroupMatchesUpdated})
}
