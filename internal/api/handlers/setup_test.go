package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"baa_legal/internal/api"
	"baa_legal/internal/models"
	"baa_legal/internal/repository"
	"baa_legal/internal/service"
	"baa_legal/internal/utils"
)

type testEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
	tokens *utils.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := repository.NewMemoryRepositories()
	services := service.NewServices(repos, nil)
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	router := gin.New()
	api.SetupRoutes(router, services, tokens, nil)

	return &testEnv{router: router, repos: repos, tokens: tokens}
}

// newUser stores a user directly and returns it with a valid token.
// The password hash is irrelevant for token-authenticated tests.
func (e *testEnv) newUser(t *testing.T, email, name string, role models.Role) (*models.User, string) {
	t.Helper()
	user := models.NewUser(email, "x", name, role)
	require.NoError(t, e.repos.User.Create(user))

	token, err := e.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
