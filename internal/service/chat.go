package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"baa_legal/internal/metrics"
	"baa_legal/internal/models"
	"baa_legal/internal/repository"
)

// GreetingMessage is seeded into every new room.
const GreetingMessage = "Юрист скоро присоединится к чату"

// ErrEmptyContent rejects messages without a text body.
var ErrEmptyContent = errors.New("message content is empty")

// SendMessageInput carries the fields needed to append a message.
type SendMessageInput struct {
	RoomID     string             `json:"roomId"`
	Content    string             `json:"content"`
	SenderID   string             `json:"senderId"`
	SenderName string             `json:"senderName,omitempty"`
	SenderRole models.Role        `json:"senderRole"`
	Type       models.MessageType `json:"type,omitempty"`
	FileName   string             `json:"fileName,omitempty"`
	FileSize   string             `json:"fileSize,omitempty"`
	FileURL    string             `json:"fileUrl,omitempty"`
}

// ChatService resolves rooms and mediates every message mutation.
// All mutations of one room are serialized through a keyed mutex so
// append order matches call order even over a real datastore.
type ChatService struct {
	repo  repository.ChatRepository
	locks keyedMutex
}

func NewChatService(repo repository.ChatRepository) *ChatService {
	return &ChatService{repo: repo}
}

// GetOrCreateRoom returns the client's room, creating it on first use
// with default lawyer metadata and the system greeting. Idempotent per
// client identity.
func (s *ChatService) GetOrCreateRoom(clientID string) (*models.Room, error) {
	unlock := s.locks.lock("client:" + clientID)
	defer unlock()

	room, err := s.repo.FindRoomByClient(clientID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, repository.ErrRoomNotFound) {
		return nil, err
	}

	room = models.NewRoom(clientID, "")
	seedGreeting(room)
	if err := s.repo.CreateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// CreateThread creates a new room with an explicit subject, seeded with
// the system greeting. Unlike GetOrCreateRoom it never reuses a room.
func (s *ChatService) CreateThread(clientID, subject string) (*models.Room, error) {
	room := models.NewRoom(clientID, subject)
	seedGreeting(room)
	if err := s.repo.CreateRoom(room); err != nil {
		return nil, err
	}
	return room, nil
}

// seedGreeting places the system greeting as the room's first message.
func seedGreeting(room *models.Room) {
	greeting := models.NewSystemMessage(room.ID, GreetingMessage)
	greeting.Seq = 1
	room.MessageSeq = greeting.Seq
	room.Messages = []models.Message{greeting}
}

func (s *ChatService) GetRoom(roomID string) (*models.Room, error) {
	return s.repo.GetRoom(roomID)
}

func (s *ChatService) ListRoomsForClient(clientID string) ([]models.Room, error) {
	return s.repo.ListRoomsForClient(clientID)
}

func (s *ChatService) ListRooms() ([]models.Room, error) {
	return s.repo.ListRooms()
}

// SendMessage appends a message to its room. The message id and
// timestamp are assigned here; the type defaults to TEXT.
func (s *ChatService) SendMessage(input SendMessageInput) (*models.Message, error) {
	if input.Content == "" {
		return nil, ErrEmptyContent
	}

	// Callers may only author TEXT or FILE messages; anything else,
	// including a forged SYSTEM label, falls back to TEXT.
	msgType := input.Type
	switch msgType {
	case models.TypeText, models.TypeFile:
	default:
		msgType = models.TypeText
	}

	msg := &models.Message{
		ID:         "msg-" + uuid.NewString(),
		RoomID:     input.RoomID,
		Content:    input.Content,
		SenderID:   input.SenderID,
		SenderName: input.SenderName,
		SenderRole: input.SenderRole,
		Type:       msgType,
		FileName:   input.FileName,
		FileSize:   input.FileSize,
		FileURL:    input.FileURL,
		CreatedAt:  time.Now().UTC(),
		IsRead:     false,
	}

	unlock := s.locks.lock("room:" + input.RoomID)
	defer unlock()

	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, err
	}
	metrics.MessagesTotal.WithLabelValues(string(msg.SenderRole)).Inc()
	return msg, nil
}

// MarkRead zeroes the unread counter of the given role for the room.
func (s *ChatService) MarkRead(roomID string, role models.Role) error {
	unlock := s.locks.lock("room:" + roomID)
	defer unlock()

	return s.repo.MarkRead(roomID, role)
}

// GetMessages returns room history oldest first. See
// repository.ChatRepository for the limit/before contract.
func (s *ChatService) GetMessages(roomID string, limit int, before string) ([]models.Message, error) {
	return s.repo.ListMessages(roomID, limit, before)
}

// keyedMutex serializes work per string key. Mutexes are retained for
// the process lifetime; the key space is bounded by active rooms.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
