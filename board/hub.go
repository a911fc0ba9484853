package board

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"gatepass/models"
)

// Event is one lifecycle change pushed to front-desk dashboards.
type Event struct {
	Action        string `json:"action"`
	VisitID       string `json:"visitid"`
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Office        string `json:"office"`
	Status        string `json:"status,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// Client is one dashboard connection, subscribed to a single office room.
// The "all" room sees every office.
type Client struct {
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans lifecycle events out to connected dashboards, one room per
// office.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Room]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// Register subscribes a client. A no-op once the hub has stopped, so late
// connections during shutdown cannot block.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

// Unregister drops a client, with the same shutdown guard.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish implements lifecycle.Publisher. Events go to the visit's office
// room and to the catch-all room.
func (h *Hub) Publish(action string, v *models.Visit) {
	ev := Event{
		Action:        action,
		VisitID:       v.VisitID,
		Name:          v.Name,
		ContactNumber: v.ContactNumber,
		Office:        v.Office,
		Timestamp:     time.Now().Unix(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("board event marshal:", err)
		return
	}
	for _, room := range []string{v.Office, "all"} {
		select {
		case h.broadcast <- broadcastMsg{Room: room, Data: data}:
		case <-h.quit:
			return
		}
	}
}
