package repository

import (
	"errors"

	"baa_legal/internal/models"
	"baa_legal/internal/storage"
)

var (
	// ErrRoomNotFound is returned when a referenced room id does not
	// exist in the store.
	ErrRoomNotFound = errors.New("room not found")
	// ErrUserNotFound is returned for lookups of unknown users.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole is returned for read receipts with a role that
	// has no unread counter.
	ErrInvalidRole = errors.New("invalid role for read receipt")
)

// ChatRepository owns all Room and Message state. It is the sole
// mutator of that state; callers never modify returned aggregates.
type ChatRepository interface {
	// CreateRoom stores a new room together with any seeded messages.
	CreateRoom(room *models.Room) error
	// FindRoomByClient returns the oldest active room of a client,
	// messages included, or ErrRoomNotFound.
	FindRoomByClient(clientID string) (*models.Room, error)
	// GetRoom returns a room with its messages, or ErrRoomNotFound.
	GetRoom(roomID string) (*models.Room, error)
	// ListRoomsForClient returns the client's rooms, most recent
	// activity first, without message bodies.
	ListRoomsForClient(clientID string) ([]models.Room, error)
	// ListRooms returns all rooms, most recent activity first. Used
	// by the lawyer-side thread list.
	ListRooms() ([]models.Room, error)
	// AppendMessage appends a message to its room, bumps the room's
	// LastMessageAt and increments the counterpart unread counter.
	// Fails with ErrRoomNotFound without side effects.
	AppendMessage(msg *models.Message) error
	// MarkRead zeroes the unread counter of the given role. Idempotent.
	MarkRead(roomID string, role models.Role) error
	// ListMessages returns messages oldest first. A non-zero limit
	// bounds the result to the most recent messages of the window;
	// a non-empty before id is an exclusive upper cursor.
	ListMessages(roomID string, limit int, before string) ([]models.Message, error)
}

type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
}

type Repositories struct {
	Chat ChatRepository
	User UserRepository
}

// NewRepositories wires the PostgreSQL-backed repositories.
func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Chat: NewGormChatRepository(db),
		User: NewGormUserRepository(db),
	}
}

// NewMemoryRepositories wires the in-memory repositories used in
// development and tests.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Chat: NewMemoryChatRepository(),
		User: NewMemoryUserRepository(),
	}
}
