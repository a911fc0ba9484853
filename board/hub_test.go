package board

import (
	"encoding/json"
	"testing"
	"time"

	"gatepass/models"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "Registrar",
	}
	hub.register <- client

	ev := Event{Action: "registered", VisitID: "v-1", Office: "Registrar"}
	data, _ := json.Marshal(ev)
	hub.broadcast <- broadcastMsg{Room: "Registrar", Data: data}

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubStopUnblocksLateClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		c := &Client{Send: make(chan []byte, 1), Room: "Registrar"}
		hub.Register(c)
		hub.Unregister(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("register/unregister blocked after hub stopped")
	}
}

func TestHubPublishReachesOfficeAndCatchAllRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	office := &Client{Send: make(chan []byte, 10), Room: "Registrar"}
	all := &Client{Send: make(chan []byte, 10), Room: "all"}
	other := &Client{Send: make(chan []byte, 10), Room: "Cashier"}
	hub.register <- office
	hub.register <- all
	hub.register <- other

	hub.Publish("time-in", &models.Visit{
		VisitID:       "v-1",
		Name:          "Juan Dela Cruz",
		ContactNumber: "09170001111",
		Office:        "Registrar",
	})

	for _, c := range []*Client{office, all} {
		select {
		case got := <-c.Send:
			var ev Event
			if err := json.Unmarshal(got, &ev); err != nil {
				t.Fatalf("bad event payload: %v", err)
			}
			if ev.Action != "time-in" || ev.VisitID != "v-1" {
				t.Errorf("event = %+v", ev)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event in room %s", c.Room)
		}
	}

	select {
	case got := <-other.Send:
		t.Fatalf("unrelated room received %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}
