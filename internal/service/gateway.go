package service

import (
	"context"
	"encoding/json"

	"baa_legal/internal/metrics"
	"baa_legal/internal/models"
)

// Gateway events accepted from clients.
const (
	eventJoinRoom    = "joinRoom"
	eventSendMessage = "sendMessage"
	eventMarkAsRead  = "markAsRead"
	eventGetHistory  = "getHistory"
	eventTyping      = "typing"
)

// Gateway events emitted to clients.
const (
	eventRoomJoined = "roomJoined"
	eventNewMessage = "newMessage"
	eventUserTyping = "userTyping"
)

type joinRoomRequest struct {
	ClientID string `json:"clientId"`
}

// markAsReadRequest still carries a role field on the wire, but the
// side that gets reset is pinned to the connection's own role, like
// the sender fields on sendMessage.
type markAsReadRequest struct {
	RoomID string      `json:"roomId"`
	Role   models.Role `json:"role"`
}

type getHistoryRequest struct {
	RoomID string `json:"roomId"`
	Limit  int    `json:"limit,omitempty"`
	Before string `json:"before,omitempty"`
}

type typingRequest struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
	Name     string `json:"name"`
}

type joinAck struct {
	Success bool   `json:"success"`
	RoomID  string `json:"roomId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type sendAck struct {
	Success bool            `json:"success"`
	Message *models.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type readAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type historyAck struct {
	Success  bool             `json:"success"`
	Messages []models.Message `json:"messages,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type lawyerInfo struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

type roomJoinedPayload struct {
	RoomID   string           `json:"roomId"`
	Messages []models.Message `json:"messages"`
	Lawyer   lawyerInfo       `json:"lawyer"`
}

type userTypingPayload struct {
	IsTyping bool   `json:"isTyping"`
	Name     string `json:"name"`
}

// ChatGateway routes the live chat events between connections, the
// chat service and the hub. Every handler converts errors into a
// {success:false, error} ack; nothing here ever tears a connection
// down over a logical failure.
type ChatGateway struct {
	hub      *Hub
	chat     *ChatService
	presence *PresenceService
}

func NewChatGateway(hub *Hub, chat *ChatService, presence *PresenceService) *ChatGateway {
	return &ChatGateway{
		hub:      hub,
		chat:     chat,
		presence: presence,
	}
}

// Hub exposes the connection tracker, mainly for REST handlers that
// need to broadcast into rooms.
func (g *ChatGateway) Hub() *Hub {
	return g.hub
}

// HandleClient runs the connection until the peer disconnects.
// Disconnect only removes the connection tracking entry; stored chat
// state is never touched.
func (g *ChatGateway) HandleClient(client *Client) {
	metrics.WSConnections.Inc()
	defer func() {
		metrics.WSConnections.Dec()
		g.hub.Remove(client)
		client.shutdown()
		client.conn.Close()
	}()

	go client.writePump()
	client.readPump(g.dispatch)
}

// BroadcastNewMessage fans a stored message out to every connection
// joined to its room, sender included.
func (g *ChatGateway) BroadcastNewMessage(msg *models.Message) {
	g.hub.Broadcast(msg.RoomID, eventNewMessage, msg)
}

func (g *ChatGateway) dispatch(client *Client, frame Frame) {
	var ok bool
	switch frame.Event {
	case eventJoinRoom:
		ok = g.handleJoinRoom(client, frame.Data)
	case eventSendMessage:
		ok = g.handleSendMessage(client, frame.Data)
	case eventMarkAsRead:
		ok = g.handleMarkAsRead(client, frame.Data)
	case eventGetHistory:
		ok = g.handleGetHistory(client, frame.Data)
	case eventTyping:
		ok = g.handleTyping(client, frame.Data)
	default:
		g.reply(client, frame.Event, joinAck{Success: false, Error: "unknown event"})
	}

	outcome := "failure"
	if ok {
		outcome = "success"
	}
	metrics.EventsTotal.WithLabelValues(frame.Event, outcome).Inc()

	if client.Role == models.RoleLawyer && client.roomID != "" {
		g.presence.SetLawyerOnline(g.ctx(), client.roomID)
	}
}

func (g *ChatGateway) handleJoinRoom(client *Client, data json.RawMessage) bool {
	var req joinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.reply(client, eventJoinRoom, joinAck{Success: false, Error: "malformed joinRoom payload"})
		return false
	}
	if req.ClientID == "" {
		req.ClientID = client.UserID
	}

	// A connection may only join rooms of its own identity; lawyers
	// may join any client's room.
	if client.Role != models.RoleLawyer && req.ClientID != client.UserID {
		g.reply(client, eventJoinRoom, joinAck{Success: false, Error: "not authorized for this client"})
		return false
	}

	room, err := g.chat.GetOrCreateRoom(req.ClientID)
	if err != nil {
		g.reply(client, eventJoinRoom, joinAck{Success: false, Error: err.Error()})
		return false
	}

	g.hub.Join(client, room.ID)

	if err := g.chat.MarkRead(room.ID, readerRole(client)); err != nil {
		g.reply(client, eventJoinRoom, joinAck{Success: false, Error: err.Error()})
		return false
	}

	if client.Role == models.RoleLawyer {
		g.presence.SetLawyerOnline(g.ctx(), room.ID)
	}

	g.reply(client, eventRoomJoined, roomJoinedPayload{
		RoomID:   room.ID,
		Messages: room.Messages,
		Lawyer: lawyerInfo{
			Name:   room.LawyerName,
			Avatar: room.LawyerAvatar,
			Online: g.presence.IsLawyerOnline(g.ctx(), room.ID),
		},
	})
	g.reply(client, eventJoinRoom, joinAck{Success: true, RoomID: room.ID})
	return true
}

func (g *ChatGateway) handleSendMessage(client *Client, data json.RawMessage) bool {
	var input SendMessageInput
	if err := json.Unmarshal(data, &input); err != nil {
		g.reply(client, eventSendMessage, sendAck{Success: false, Error: "malformed sendMessage payload"})
		return false
	}

	if !g.hub.InRoom(client, input.RoomID) {
		g.reply(client, eventSendMessage, sendAck{Success: false, Error: "not joined to room"})
		return false
	}

	// The sender fields come from the authenticated connection, not
	// from the payload.
	input.SenderID = client.UserID
	input.SenderRole = client.Role
	if input.SenderName == "" {
		input.SenderName = client.Name
	}

	msg, err := g.chat.SendMessage(input)
	if err != nil {
		g.reply(client, eventSendMessage, sendAck{Success: false, Error: err.Error()})
		return false
	}

	g.hub.Broadcast(msg.RoomID, eventNewMessage, msg)
	g.reply(client, eventSendMessage, sendAck{Success: true, Message: msg})
	return true
}

func (g *ChatGateway) handleMarkAsRead(client *Client, data json.RawMessage) bool {
	var req markAsReadRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.reply(client, eventMarkAsRead, readAck{Success: false, Error: "malformed markAsRead payload"})
		return false
	}

	if !g.hub.InRoom(client, req.RoomID) {
		g.reply(client, eventMarkAsRead, readAck{Success: false, Error: "not joined to room"})
		return false
	}

	if err := g.chat.MarkRead(req.RoomID, readerRole(client)); err != nil {
		g.reply(client, eventMarkAsRead, readAck{Success: false, Error: err.Error()})
		return false
	}

	g.reply(client, eventMarkAsRead, readAck{Success: true})
	return true
}

func (g *ChatGateway) handleGetHistory(client *Client, data json.RawMessage) bool {
	var req getHistoryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.reply(client, eventGetHistory, historyAck{Success: false, Error: "malformed getHistory payload"})
		return false
	}

	if !g.hub.InRoom(client, req.RoomID) {
		g.reply(client, eventGetHistory, historyAck{Success: false, Error: "not joined to room"})
		return false
	}

	messages, err := g.chat.GetMessages(req.RoomID, req.Limit, req.Before)
	if err != nil {
		g.reply(client, eventGetHistory, historyAck{Success: false, Error: err.Error()})
		return false
	}

	g.reply(client, eventGetHistory, historyAck{Success: true, Messages: messages})
	return true
}

// handleTyping is a stateless relay: everyone else in the room hears
// about it, the sender never does.
func (g *ChatGateway) handleTyping(client *Client, data json.RawMessage) bool {
	var req typingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return false
	}

	if !g.hub.InRoom(client, req.RoomID) {
		return false
	}

	if req.Name == "" {
		req.Name = client.Name
	}
	g.hub.BroadcastExcept(req.RoomID, eventUserTyping, userTypingPayload{
		IsTyping: req.IsTyping,
		Name:     req.Name,
	}, client)
	return true
}

// readerRole maps a connection to the unread counter it may reset. A
// connection can only clear its own side.
func readerRole(client *Client) models.Role {
	if client.Role == models.RoleLawyer {
		return models.RoleLawyer
	}
	return models.RoleClient
}

func (g *ChatGateway) reply(client *Client, event string, payload interface{}) {
	frame, err := newFrame(event, payload)
	if err != nil {
		return
	}
	client.enqueue(frame)
}

// ctx backs the fire-and-forget presence calls; the Redis client's
// own dial/read timeouts bound them.
func (g *ChatGateway) ctx() context.Context {
	return context.Background()
}
