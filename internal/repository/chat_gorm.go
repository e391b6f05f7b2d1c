package repository

import (
	"errors"

	"gorm.io/gorm"

	"baa_legal/internal/models"
	"baa_legal/internal/storage"
)

type gormChatRepository struct {
	db *storage.PostgresDB
}

func NewGormChatRepository(db *storage.PostgresDB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) CreateRoom(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *gormChatRepository) FindRoomByClient(clientID string) (*models.Room, error) {
	var room models.Room
	err := r.db.
		Preload("Messages", messagesAscending).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("created_at asc").
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormChatRepository) GetRoom(roomID string) (*models.Room, error) {
	var room models.Room
	err := r.db.
		Preload("Messages", messagesAscending).
		First(&room, "id = ?", roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormChatRepository) ListRoomsForClient(clientID string) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.
		Where("client_id = ?", clientID).
		Order("last_message_at desc").
		Find(&rooms).Error
	return rooms, err
}

func (r *gormChatRepository) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Order("last_message_at desc").Find(&rooms).Error
	return rooms, err
}

func (r *gormChatRepository) AppendMessage(msg *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", msg.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		msg.Seq = room.MessageSeq + 1
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_message_at": msg.CreatedAt,
			"message_seq":     msg.Seq,
		}
		switch msg.SenderRole {
		case models.RoleClient:
			updates["unread_by_lawyer"] = gorm.Expr("unread_by_lawyer + 1")
		case models.RoleLawyer:
			updates["unread_by_client"] = gorm.Expr("unread_by_client + 1")
		}
		return tx.Model(&models.Room{}).Where("id = ?", room.ID).Updates(updates).Error
	})
}

func (r *gormChatRepository) MarkRead(roomID string, role models.Role) error {
	var column string
	switch role {
	case models.RoleClient:
		column = "unread_by_client"
	case models.RoleLawyer:
		column = "unread_by_lawyer"
	default:
		return ErrInvalidRole
	}

	res := r.db.Model(&models.Room{}).Where("id = ?", roomID).Update(column, 0)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *gormChatRepository) ListMessages(roomID string, limit int, before string) ([]models.Message, error) {
	if err := r.db.First(&models.Room{}, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	q := r.db.Where("room_id = ?", roomID)
	if before != "" {
		// Exclusive cursor: everything strictly older than the
		// referenced message. A cursor that matches nothing drops the
		// bound, same as the in-memory backend.
		var cursor models.Message
		err := r.db.Select("seq").
			Where("room_id = ? AND id = ?", roomID, before).
			First(&cursor).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return nil, err
		default:
			q = q.Where("seq < ?", cursor.Seq)
		}
	}
	q = q.Order("seq desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []models.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	// The query walks newest-first so LIMIT keeps the most recent
	// window; callers always get oldest-first.
	reverse(messages)
	return messages, nil
}

func messagesAscending(db *gorm.DB) *gorm.DB {
	return db.Order("messages.seq asc")
}

func reverse(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
