package tracking

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smarteats/backend/models"
	"github.com/smarteats/backend/utils"
)

// Client is one websocket connection. Identity comes from the connect-time
// token; a connection without a valid token stays connected but is marked
// unauthenticated and may only subscribe, never send location updates.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// rooms this client joined, guarded by hub.mu.
	rooms map[string]struct{}

	Authenticated bool
	UserID        uint
	Role          string

	closeOnce sync.Once
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// LocationEvent is the fan-out payload for tracking:update / order:location.
type LocationEvent struct {
	OrderID   uint    `json:"orderId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"`
}

// HandleConn registers conn on the hub and services it until the peer
// disconnects. It blocks, so call it from the HTTP handler goroutine.
func (h *Hub) HandleConn(conn *websocket.Conn, userID uint, role string, authenticated bool) {
	c := &Client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, 64),
		rooms:         make(map[string]struct{}),
		Authenticated: authenticated,
		UserID:        userID,
		Role:          role,
	}
	h.register(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			utils.ErrorLogger.Warnf("tracking: bad frame from client: %v", err)
			continue
		}

		switch msg.Event {
		case eventJoinOrder:
			if id, ok := parseOrderID(msg.Data); ok {
				c.hub.Join(c, OrderRoom(id))
			}
		case eventLeaveOrder:
			if id, ok := parseOrderID(msg.Data); ok {
				c.hub.Leave(c, OrderRoom(id))
			}
		case eventJoinRoom:
			if room, ok := parseRoom(msg.Data); ok {
				c.hub.Join(c, room)
			}
		case eventLeaveRoom:
			if room, ok := parseRoom(msg.Data); ok {
				c.hub.Leave(c, room)
			}
		case eventLocationUpdate:
			c.handleLocation(msg.Data)
		}
	}
}

// writePump drains queued sends to the socket. Closing c.send flushes what
// is left and then closes the connection, which is how Shutdown drains.
func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			break
		}
	}
	c.conn.Close()
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

type locationUpdate struct {
	OrderID   uint     `json:"orderId"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Timestamp int64    `json:"timestamp"`
}

// handleLocation validates, authorizes and fans out one location reading.
// The assignment check and the emit are not atomic: a reassignment racing
// this handler can let through at most one reading from the prior partner.
func (c *Client) handleLocation(raw json.RawMessage) {
	var u locationUpdate
	if err := json.Unmarshal(raw, &u); err != nil || u.Lat == nil || u.Lng == nil {
		utils.ErrorLogger.Warnf("tracking: invalid location payload: %s", string(raw))
		return
	}
	if u.OrderID == 0 {
		return
	}

	if !c.Authenticated {
		utils.ErrorLogger.Warnf("tracking: unauthenticated location update for order %d rejected", u.OrderID)
		return
	}

	var order models.Order
	if err := c.hub.db.Select("id", "assigned_to_id", "status").First(&order, u.OrderID).Error; err != nil {
		utils.ErrorLogger.Warnf("tracking: order %d not found for location update", u.OrderID)
		return
	}

	if c.Role != models.RoleAdmin && !order.IsAssignedTo(c.UserID) {
		utils.ErrorLogger.Warnf("tracking: unauthorized location update by user %d for order %d", c.UserID, u.OrderID)
		return
	}

	ts := u.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	data := LocationEvent{OrderID: u.OrderID, Lat: *u.Lat, Lng: *u.Lng, Timestamp: ts}

	room := OrderRoom(u.OrderID)
	// two event names, older frontends listen on order:location
	if err := c.hub.Emit(room, EventTrackingUpdate, data); err != nil {
		utils.ErrorLogger.Warnf("tracking: emit %s failed: %v", EventTrackingUpdate, err)
	}
	if err := c.hub.Emit(room, EventOrderLocation, data); err != nil {
		utils.ErrorLogger.Warnf("tracking: emit %s failed: %v", EventOrderLocation, err)
	}
}

// parseOrderID accepts the order id as a JSON number, a numeric string, or
// an {orderId} object, matching what the various frontends send.
func parseOrderID(raw json.RawMessage) (uint, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return uint(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, err := strconv.ParseUint(s, 10, 64); err == nil && id > 0 {
			return uint(id), true
		}
	}
	var obj struct {
		OrderID uint `json:"orderId"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.OrderID > 0 {
		return obj.OrderID, true
	}
	return 0, false
}

func parseRoom(raw json.RawMessage) (string, bool) {
	var room string
	if err := json.Unmarshal(raw, &room); err != nil || room == "" {
		return "", false
	}
	return room, true
}
