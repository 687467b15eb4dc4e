// Package tracking is the realtime broadcast hub. Connections join rooms
// keyed by order, delivery partner or restaurant; controllers and connected
// clients fan events out to everyone in a room. Nothing here is persisted:
// a client that connects after an event was broadcast has missed it and must
// reconcile through the list endpoints.
package tracking

import (
	"encoding/json"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// Server->client event names.
const (
	EventOrderUpdate     = "order:update"
	EventOrderAssigned   = "order:assigned"
	EventOrderByCustomer = "order:updated_by_customer"
	EventTrackingUpdate  = "tracking:update"
	EventOrderLocation   = "order:location"
	EventPartnerLocation = "partner:location"
	EventMenuItemCreated = "menu:created"
	EventMenuItemUpdated = "menu:updated"
	EventMenuItemDeleted = "menu:deleted"
)

// Client->server event names.
const (
	eventJoinOrder      = "joinOrder"
	eventLeaveOrder     = "leaveOrder"
	eventJoinRoom       = "joinRoom"
	eventLeaveRoom      = "leaveRoom"
	eventLocationUpdate = "location:update"
)

func OrderRoom(orderID uint) string     { return fmt.Sprintf("order_%d", orderID) }
func PartnerRoom(partnerID uint) string { return fmt.Sprintf("partner_%d", partnerID) }
func RestaurantRoom(restID uint) string { return fmt.Sprintf("restaurant_%d", restID) }

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub multiplexes every websocket connection over named rooms. One Hub is
// constructed in main and handed to each controller that emits; there is no
// package-level instance.
type Hub struct {
	db *gorm.DB

	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(db *gorm.DB) *Hub {
	return &Hub{
		db:      db,
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		c.close()
		return
	}
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.dropFromRoom(c, room)
	}
}

// dropFromRoom requires h.mu held.
func (h *Hub) dropFromRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Join adds c to room. Joining is always explicit; the server never puts a
// connection into a room on its own.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromRoom(c, room)
}

// RoomSize reports the current number of connections in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit fans {event, data} out to every connection in room. A client whose
// send buffer is full is skipped rather than blocking the caller. The
// returned error covers encoding only; callers log it and move on.
func (h *Hub) Emit(room, event string, data interface{}) error {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
		}
	}
	return nil
}

// Shutdown disconnects every client. Queued sends are flushed by each
// client's write loop before its connection closes.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.rooms = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
