package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"baa_legal/internal/models"
	"baa_legal/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"email":    "ivanov@example.com",
		"password": "secret123",
		"name":     "Иван Иванов",
	})
	requireStatus(t, w, http.StatusCreated)

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ivanov@example.com",
		"password": "secret123",
	})
	requireStatus(t, w, http.StatusOK)

	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeJSON(t, w, &login)
	require.NotEmpty(t, login.Token)
	require.Equal(t, models.RoleClient, login.User.Role)

	w = env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ivanov@example.com",
		"password": "wrong",
	})
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"email":    "x@example.com",
		"password": "secret123",
		"name":     "X",
		"role":     "ADMIN",
	})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestThreadsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/api/cabinet/threads", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestThreadLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, clientToken := env.newUser(t, "client@example.com", "Пётр Смирнов", models.RoleClient)

	// Create a thread.
	w := env.doJSON(t, http.MethodPost, "/api/cabinet/threads", clientToken, map[string]string{
		"subject": "Проверка договора аренды",
	})
	requireStatus(t, w, http.StatusCreated)

	var room models.Room
	decodeJSON(t, w, &room)
	require.NotEmpty(t, room.ID)
	require.Equal(t, "Проверка договора аренды", room.Subject)

	// It shows up in the client's list.
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads", clientToken, nil)
	requireStatus(t, w, http.StatusOK)

	var list struct {
		Results []models.Room `json:"results"`
	}
	decodeJSON(t, w, &list)
	require.Len(t, list.Results, 1)
	require.Equal(t, room.ID, list.Results[0].ID)

	// Post a message.
	w = env.doJSON(t, http.MethodPost, "/api/cabinet/threads/"+room.ID+"/add_message", clientToken, map[string]string{
		"text": "Здравствуйте, нужна консультация",
	})
	requireStatus(t, w, http.StatusCreated)

	var msg models.Message
	decodeJSON(t, w, &msg)
	require.Equal(t, models.RoleClient, msg.SenderRole)
	require.Equal(t, models.TypeText, msg.Type)
	require.Equal(t, "Пётр Смирнов", msg.SenderName)

	// History is oldest first: the system greeting, then our message.
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads/"+room.ID+"/messages", clientToken, nil)
	requireStatus(t, w, http.StatusOK)

	var history struct {
		Results []models.Message `json:"results"`
	}
	decodeJSON(t, w, &history)
	require.Len(t, history.Results, 2)
	require.Equal(t, service.GreetingMessage, history.Results[0].Content)
	require.Equal(t, msg.ID, history.Results[1].ID)

	// Limit keeps the most recent window.
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads/"+room.ID+"/messages?limit=1", clientToken, nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &history)
	require.Len(t, history.Results, 1)
	require.Equal(t, msg.ID, history.Results[0].ID)
}

func TestThreadAccessControl(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.newUser(t, "owner@example.com", "Owner", models.RoleClient)
	_, strangerToken := env.newUser(t, "stranger@example.com", "Stranger", models.RoleClient)
	_, lawyerToken := env.newUser(t, "lawyer@example.com", "Анна Сергеева", models.RoleLawyer)

	w := env.doJSON(t, http.MethodPost, "/api/cabinet/threads", ownerToken, map[string]string{
		"subject": "Вопрос по налогам",
	})
	requireStatus(t, w, http.StatusCreated)
	var room models.Room
	decodeJSON(t, w, &room)

	// Another client cannot see or write into the thread.
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads/"+room.ID, strangerToken, nil)
	requireStatus(t, w, http.StatusForbidden)
	w = env.doJSON(t, http.MethodPost, "/api/cabinet/threads/"+room.ID+"/add_message", strangerToken, map[string]string{"text": "hi"})
	requireStatus(t, w, http.StatusForbidden)

	// Lawyers can.
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads/"+room.ID, lawyerToken, nil)
	requireStatus(t, w, http.StatusOK)
	w = env.doJSON(t, http.MethodGet, "/api/cabinet/threads", lawyerToken, nil)
	requireStatus(t, w, http.StatusOK)

	var list struct {
		Results []models.Room `json:"results"`
	}
	decodeJSON(t, w, &list)
	require.Len(t, list.Results, 1, "lawyer list covers every client's threads")
}

func TestThreadNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.newUser(t, "client@example.com", "Client", models.RoleClient)

	w := env.doJSON(t, http.MethodGet, "/api/cabinet/threads/room-missing", token, nil)
	requireStatus(t, w, http.StatusNotFound)

	w = env.doJSON(t, http.MethodPost, "/api/cabinet/threads/room-missing/add_message", token, map[string]string{"text": "hi"})
	requireStatus(t, w, http.StatusNotFound)
}
