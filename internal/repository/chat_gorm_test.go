package repository_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"baa_legal/internal/models"
	"baa_legal/internal/repository"
	"baa_legal/internal/storage"
)

// newGormRepo backs the repository with an in-memory SQLite database,
// so the SQL paths (cursor subquery, counter updates, ordering) run
// against a real dialect.
func newGormRepo(t *testing.T) repository.ChatRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	store := &storage.PostgresDB{DB: db}
	require.NoError(t, store.AutoMigrate(&models.Room{}, &models.Message{}))
	t.Cleanup(func() { store.Close() })

	return repository.NewGormChatRepository(store)
}

func appendText(t *testing.T, repo repository.ChatRepository, roomID, content string, at time.Time) *models.Message {
	t.Helper()
	msg := &models.Message{
		ID:         "msg-" + uuid.NewString(),
		RoomID:     roomID,
		Content:    content,
		SenderID:   "c-1",
		SenderRole: models.RoleClient,
		Type:       models.TypeText,
		CreatedAt:  at,
	}
	require.NoError(t, repo.AppendMessage(msg))
	return msg
}

func TestGormRepoUnknownCursorReturnsAll(t *testing.T) {
	repo := newGormRepo(t)
	room := seedRoom(t, repo, "c-1")

	now := time.Now().UTC()
	for i, content := range []string{"m1", "m2", "m3"} {
		appendText(t, repo, room.ID, content, now.Add(time.Duration(i)*time.Second))
	}

	messages, err := repo.ListMessages(room.ID, 0, "msg-does-not-exist")
	require.NoError(t, err)
	require.Len(t, messages, 3, "unknown cursor falls back to the full sequence")
}

func TestGormRepoCursorPagination(t *testing.T) {
	repo := newGormRepo(t)
	room := seedRoom(t, repo, "c-1")

	now := time.Now().UTC()
	var ids []string
	for i := 0; i < 4; i++ {
		msg := appendText(t, repo, room.ID, fmt.Sprintf("m%d", i), now.Add(time.Duration(i)*time.Second))
		ids = append(ids, msg.ID)
	}

	// Everything strictly before the third message, oldest first.
	messages, err := repo.ListMessages(room.ID, 0, ids[2])
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, ids[0], messages[0].ID)
	require.Equal(t, ids[1], messages[1].ID)

	// Limit keeps the most recent window of the bounded range.
	messages, err = repo.ListMessages(room.ID, 1, ids[2])
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, ids[1], messages[0].ID)

	_, err = repo.ListMessages("room-missing", 0, "")
	require.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestGormRepoEqualTimestampsKeepInsertionOrder(t *testing.T) {
	repo := newGormRepo(t)
	room := seedRoom(t, repo, "c-1")

	// All three share one timestamp; the insertion sequence decides.
	at := time.Now().UTC().Truncate(time.Second)
	var ids []string
	for i := 0; i < 3; i++ {
		msg := appendText(t, repo, room.ID, fmt.Sprintf("m%d", i), at)
		ids = append(ids, msg.ID)
	}

	messages, err := repo.ListMessages(room.ID, 0, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, id := range ids {
		require.Equal(t, id, messages[i].ID)
	}

	// The cursor honors the same order.
	messages, err = repo.ListMessages(room.ID, 0, ids[1])
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, ids[0], messages[0].ID)
}

func TestGormRepoAppendUpdatesRoom(t *testing.T) {
	repo := newGormRepo(t)
	room := seedRoom(t, repo, "c-1")

	at := time.Now().UTC().Add(time.Minute)
	appendText(t, repo, room.ID, "вопрос", at)

	got, err := repo.GetRoom(room.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.UnreadByLawyer)
	require.Equal(t, 0, got.UnreadByClient)
	require.Len(t, got.Messages, 1)

	msg := models.NewSystemMessage("room-missing", "ghost")
	require.ErrorIs(t, repo.AppendMessage(&msg), repository.ErrRoomNotFound)
}
