package models

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a conversation between one client and the assigned lawyer.
type Room struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ClientID       string    `gorm:"index;not null;type:varchar(64)" json:"clientId"`
	Subject        string    `gorm:"type:varchar(255)" json:"subject"`
	IsActive       bool      `json:"isActive"`
	LawyerName     string    `gorm:"type:varchar(255)" json:"lawyerName"`
	LawyerAvatar   string    `gorm:"type:text" json:"lawyerAvatar"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadByClient int       `json:"unreadByClient"`
	UnreadByLawyer int       `json:"unreadByLawyer"`
	CreatedAt      time.Time `json:"createdAt"`
	// MessageSeq is the sequence number of the newest message;
	// appends take MessageSeq+1.
	MessageSeq int64     `json:"-"`
	Messages   []Message `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

// Display metadata assigned to every new room until real lawyer
// assignment exists.
const (
	DefaultLawyerName   = "Анна Сергеева"
	DefaultLawyerAvatar = "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?auto=format&fit=crop&w=100&q=80"

	DefaultSubject = "Консультация юриста"
)

// NewRoom creates a room for the given client with default lawyer metadata.
func NewRoom(clientID, subject string) *Room {
	if subject == "" {
		subject = DefaultSubject
	}
	now := time.Now().UTC()
	return &Room{
		ID:            "room-" + uuid.NewString(),
		ClientID:      clientID,
		Subject:       subject,
		IsActive:      true,
		LawyerName:    DefaultLawyerName,
		LawyerAvatar:  DefaultLawyerAvatar,
		LastMessageAt: now,
		CreatedAt:     now,
	}
}
