package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"baa_legal/internal/metrics"
	"baa_legal/internal/models"
)

// Frame is the wire format of the chat channel: a named event with a
// JSON payload, in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// Client is one WebSocket connection. A connection is joined to at
// most one room at a time; a second joinRoom silently reassigns it.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	UserID string
	Name   string
	Role   models.Role

	// roomID is only touched from the connection's read loop and the
	// hub's teardown path.
	roomID string
}

func NewClient(conn *websocket.Conn, userID, name string, role models.Role) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		UserID: userID,
		Name:   name,
		Role:   role,
	}
}

// enqueue queues a pre-marshaled frame for delivery. Returns false if
// the client is gone or its queue is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

// Hub tracks which connections are subscribed to which room and fans
// broadcasts out to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Join subscribes the client to a room, leaving any previous room.
func (h *Hub) Join(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.roomID = roomID
}

// Remove drops the client's room subscription. Stored chat state is
// untouched; only the connection tracking entry goes away.
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	if client.roomID == "" {
		return
	}
	if clients, ok := h.rooms[client.roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, client.roomID)
		}
	}
	client.roomID = ""
}

// InRoom reports whether the client is currently joined to the room.
func (h *Hub) InRoom(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID][client]
}

// RoomClients returns the number of connections joined to a room.
func (h *Hub) RoomClients(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast sends an event to every connection joined to the room,
// the sender included.
func (h *Hub) Broadcast(roomID, event string, payload interface{}) {
	h.broadcast(roomID, event, payload, nil)
}

// BroadcastExcept sends an event to every connection joined to the
// room except the given one.
func (h *Hub) BroadcastExcept(roomID, event string, payload interface{}, except *Client) {
	h.broadcast(roomID, event, payload, except)
}

func (h *Hub) broadcast(roomID, event string, payload interface{}, except *Client) {
	frame, err := newFrame(event, payload)
	if err != nil {
		log.Printf("broadcast encoding error: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		if client != except {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range clients {
		if client.enqueue(frame) {
			delivered++
		}
	}
	metrics.BroadcastRecipients.Observe(float64(delivered))
}

// readPump reads frames from the connection and hands them to handle
// until the peer goes away. Runs on the connection's goroutine.
func (c *Client) readPump(handle func(*Client, Frame)) {
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("frame parse error: %v", err)
			continue
		}

		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		handle(c, frame)
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
