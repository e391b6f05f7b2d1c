package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who is acting: a client, a lawyer, or the system itself.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleLawyer Role = "LAWYER"
	RoleSystem Role = "SYSTEM"
)

// MessageType distinguishes plain text, file attachments and system notices.
type MessageType string

const (
	TypeText   MessageType = "TEXT"
	TypeFile   MessageType = "FILE"
	TypeSystem MessageType = "SYSTEM"
)

// Message is a single chat message. Messages belong to exactly one room
// and are immutable after creation except for the IsRead flag.
type Message struct {
	ID         string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	RoomID     string      `gorm:"index:idx_messages_room_seq;not null;type:varchar(64)" json:"roomId"`
	Content    string      `gorm:"type:text" json:"content"`
	SenderID   string      `gorm:"type:varchar(64)" json:"senderId"`
	SenderName string      `gorm:"type:varchar(255)" json:"senderName,omitempty"`
	SenderRole Role        `gorm:"type:varchar(20)" json:"senderRole"`
	Type       MessageType `gorm:"type:varchar(20)" json:"type"`
	FileName   string      `gorm:"type:varchar(255)" json:"fileName,omitempty"`
	FileSize   string      `gorm:"type:varchar(50)" json:"fileSize,omitempty"`
	FileURL    string      `gorm:"type:text" json:"fileUrl,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	IsRead     bool        `json:"isRead"`

	// Seq is the room-local insertion sequence, assigned by the
	// repository on append. It orders messages and anchors history
	// cursors even when timestamps collide.
	Seq int64 `gorm:"index:idx_messages_room_seq;not null" json:"-"`
}

// NewSystemMessage creates a system notice for a room. System messages
// are born already read so they never count as unread for anyone.
func NewSystemMessage(roomID, content string) Message {
	return Message{
		ID:         "msg-" + uuid.NewString(),
		RoomID:     roomID,
		Content:    content,
		SenderID:   "system",
		SenderRole: RoleSystem,
		Type:       TypeSystem,
		CreatedAt:  time.Now().UTC(),
		IsRead:     true,
	}
}
