package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a cabinet account: either a client of the firm or a
// lawyer answering chats.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Role      Role      `gorm:"not null;type:varchar(20)" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser creates a user with a generated id. The password must already
// be hashed by the caller.
func NewUser(email, hashedPassword, name string, role Role) *User {
	return &User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}
