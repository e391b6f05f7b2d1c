package service

import (
	"baa_legal/internal/repository"
	"baa_legal/internal/storage"
)

type Services struct {
	User     *UserService
	Chat     *ChatService
	Presence *PresenceService
	Gateway  *ChatGateway
}

// NewServices wires the service layer. redis may be nil; presence then
// runs in its permissive in-process mode.
func NewServices(repos *repository.Repositories, redis *storage.RedisClient) *Services {
	userService := NewUserService(repos.User)
	chatService := NewChatService(repos.Chat)
	presence := NewPresenceService(redis)
	gateway := NewChatGateway(NewHub(), chatService, presence)

	return &Services{
		User:     userService,
		Chat:     chatService,
		Presence: presence,
		Gateway:  gateway,
	}
}
