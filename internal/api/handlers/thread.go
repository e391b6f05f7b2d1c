package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"baa_legal/internal/models"
	"baa_legal/internal/repository"
	"baa_legal/internal/service"
)

// ThreadHandler serves the cabinet thread (chat room) REST surface.
type ThreadHandler struct {
	chatService *service.ChatService
	userService *service.UserService
	gateway     *service.ChatGateway
}

func NewThreadHandler(chatService *service.ChatService, userService *service.UserService, gateway *service.ChatGateway) *ThreadHandler {
	return &ThreadHandler{
		chatService: chatService,
		userService: userService,
		gateway:     gateway,
	}
}

func callerIdentity(c *gin.Context) (string, models.Role) {
	userID := c.GetString("userID")
	role, _ := c.MustGet("userRole").(models.Role)
	return userID, role
}

// ListThreads returns the caller's rooms; lawyers see every room.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	userID, role := callerIdentity(c)

	var (
		rooms []models.Room
		err   error
	)
	if role == models.RoleLawyer {
		rooms, err = h.chatService.ListRooms()
	} else {
		rooms, err = h.chatService.ListRoomsForClient(userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list threads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": rooms})
}

// GetThread returns a single room with its messages.
func (h *ThreadHandler) GetThread(c *gin.Context) {
	userID, role := callerIdentity(c)

	room, err := h.chatService.GetRoom(c.Param("id"))
	if err != nil {
		h.roomError(c, err)
		return
	}
	if role != models.RoleLawyer && room.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "thread belongs to another client"})
		return
	}

	c.JSON(http.StatusOK, room)
}

type CreateThreadInput struct {
	Subject string `json:"subject" binding:"required"`
}

// CreateThread opens a new thread for the authenticated client.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	userID, _ := callerIdentity(c)

	var input CreateThreadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chatService.CreateThread(userID, input.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create thread"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetThreadMessages returns a room's history, oldest first. Supports
// ?limit= and ?before= (exclusive message-id cursor).
func (h *ThreadHandler) GetThreadMessages(c *gin.Context) {
	userID, role := callerIdentity(c)
	roomID := c.Param("id")

	room, err := h.chatService.GetRoom(roomID)
	if err != nil {
		h.roomError(c, err)
		return
	}
	if role != models.RoleLawyer && room.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "thread belongs to another client"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
	}

	messages, err := h.chatService.GetMessages(roomID, limit, c.Query("before"))
	if err != nil {
		h.roomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": messages})
}

type AddMessageInput struct {
	Text string `json:"text" binding:"required"`
}

// AddMessage appends a message through the REST surface and fans it
// out to live gateway subscribers of the room.
func (h *ThreadHandler) AddMessage(c *gin.Context) {
	userID, role := callerIdentity(c)
	roomID := c.Param("id")

	var input AddMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.chatService.GetRoom(roomID)
	if err != nil {
		h.roomError(c, err)
		return
	}
	if role != models.RoleLawyer && room.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "thread belongs to another client"})
		return
	}

	senderName := ""
	if user, err := h.userService.GetUserByID(userID); err == nil {
		senderName = user.Name
	}

	msg, err := h.chatService.SendMessage(service.SendMessageInput{
		RoomID:     roomID,
		Content:    input.Text,
		SenderID:   userID,
		SenderName: senderName,
		SenderRole: role,
	})
	if err != nil {
		h.roomError(c, err)
		return
	}

	h.gateway.BroadcastNewMessage(msg)
	c.JSON(http.StatusCreated, msg)
}

func (h *ThreadHandler) roomError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
		return
	}
	if errors.Is(err, service.ErrEmptyContent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
