package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"baa_legal/internal/storage"
)

const presenceTTL = 60 * time.Second

// PresenceService tracks lawyer availability per room in Redis with
// TTL keys. Without a configured Redis it degrades to the permissive
// behavior of the original cabinet: lawyers always read as online.
type PresenceService struct {
	redis *storage.RedisClient
}

func NewPresenceService(redis *storage.RedisClient) *PresenceService {
	return &PresenceService{redis: redis}
}

func lawyerPresenceKey(roomID string) string {
	return fmt.Sprintf("presence:room:%s:lawyer", roomID)
}

// SetLawyerOnline refreshes the room's lawyer-online key. Called when
// a lawyer connection joins a room and on its subsequent activity.
func (p *PresenceService) SetLawyerOnline(ctx context.Context, roomID string) {
	if p.redis == nil {
		return
	}
	if err := p.redis.Set(ctx, lawyerPresenceKey(roomID), "1", presenceTTL).Err(); err != nil {
		log.Printf("presence update error: %v", err)
	}
}

// IsLawyerOnline reports whether a lawyer was recently active in the
// room.
func (p *PresenceService) IsLawyerOnline(ctx context.Context, roomID string) bool {
	if p.redis == nil {
		return true
	}
	n, err := p.redis.Exists(ctx, lawyerPresenceKey(roomID)).Result()
	if err != nil {
		log.Printf("presence lookup error: %v", err)
		return false
	}
	return n > 0
}
