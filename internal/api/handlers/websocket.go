package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"baa_legal/internal/service"
	"baa_legal/internal/utils"
)

// WebSocketHandler upgrades authenticated connections and hands them
// to the chat gateway.
type WebSocketHandler struct {
	gateway     *service.ChatGateway
	userService *service.UserService
	tokens      *utils.TokenManager
	upgrader    websocket.Upgrader
}

func NewWebSocketHandler(gateway *service.ChatGateway, userService *service.UserService, tokens *utils.TokenManager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		gateway:     gateway,
		userService: userService,
		tokens:      tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// originChecker admits requests without an Origin header (non-browser
// clients) and browser requests from the configured origins. An empty
// list admits everything, for local development and tests.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, candidate := range allowed {
			if strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	}
}

// Handle authenticates the request, upgrades it and runs the gateway
// loop until the peer disconnects. Browser WebSocket clients cannot
// set headers, so the token is also accepted as ?token=.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	claims, err := h.tokens.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	name := ""
	if user, err := h.userService.GetUserByID(claims.UserID); err == nil {
		name = user.Name
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	client := service.NewClient(conn, claims.UserID, name, claims.Role)
	h.gateway.HandleClient(client)
}
