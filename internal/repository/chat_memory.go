package repository

import (
	"sort"
	"sync"

	"baa_legal/internal/models"
)

// memoryChatRepository keeps rooms in a map keyed by room id. It backs
// development setups without PostgreSQL and the test suite.
type memoryChatRepository struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

func NewMemoryChatRepository() ChatRepository {
	return &memoryChatRepository{
		rooms: make(map[string]*models.Room),
	}
}

func (r *memoryChatRepository) CreateRoom(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *room
	stored.Messages = make([]models.Message, len(room.Messages))
	copy(stored.Messages, room.Messages)
	r.rooms[stored.ID] = &stored
	return nil
}

func (r *memoryChatRepository) FindRoomByClient(clientID string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Room
	for _, room := range r.rooms {
		if room.ClientID != clientID || !room.IsActive {
			continue
		}
		if found == nil || room.CreatedAt.Before(found.CreatedAt) {
			found = room
		}
	}
	if found == nil {
		return nil, ErrRoomNotFound
	}
	return copyRoom(found, true), nil
}

func (r *memoryChatRepository) GetRoom(roomID string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return copyRoom(room, true), nil
}

func (r *memoryChatRepository) ListRoomsForClient(clientID string) ([]models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []models.Room
	for _, room := range r.rooms {
		if room.ClientID == clientID {
			rooms = append(rooms, *copyRoom(room, false))
		}
	}
	sortByActivity(rooms)
	return rooms, nil
}

func (r *memoryChatRepository) ListRooms() ([]models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, *copyRoom(room, false))
	}
	sortByActivity(rooms)
	return rooms, nil
}

func (r *memoryChatRepository) AppendMessage(msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[msg.RoomID]
	if !ok {
		return ErrRoomNotFound
	}

	room.MessageSeq++
	msg.Seq = room.MessageSeq
	room.Messages = append(room.Messages, *msg)
	room.LastMessageAt = msg.CreatedAt
	switch msg.SenderRole {
	case models.RoleClient:
		room.UnreadByLawyer++
	case models.RoleLawyer:
		room.UnreadByClient++
	}
	return nil
}

func (r *memoryChatRepository) MarkRead(roomID string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	switch role {
	case models.RoleClient:
		room.UnreadByClient = 0
	case models.RoleLawyer:
		room.UnreadByLawyer = 0
	default:
		return ErrInvalidRole
	}
	return nil
}

func (r *memoryChatRepository) ListMessages(roomID string, limit int, before string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}

	window := room.Messages
	if before != "" {
		for i, msg := range window {
			if msg.ID == before {
				window = window[:i]
				break
			}
		}
	}
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}

	messages := make([]models.Message, len(window))
	copy(messages, window)
	return messages, nil
}

// copyRoom returns a detached copy so callers can never mutate stored
// state behind the lock.
func copyRoom(room *models.Room, withMessages bool) *models.Room {
	copied := *room
	if withMessages {
		copied.Messages = make([]models.Message, len(room.Messages))
		copy(copied.Messages, room.Messages)
	} else {
		copied.Messages = nil
	}
	return &copied
}

func sortByActivity(rooms []models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})
}
