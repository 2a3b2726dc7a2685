package handlers

import (
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/message"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageHandler handles HTTP requests for conversations and messages
type MessageHandler struct {
	service message.Service
}

func NewMessageHandler(service message.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendMessage godoc
// @Summary Send a message to another user
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body dto.SendMessageRequest true "Message"
// @Success 201 {object} message.Message
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.SendMessage(c.Request.Context(), message.SendMessageInput{
		SenderID:    userID,
		RecipientID: req.RecipientID,
		ListingID:   req.ListingID,
		Body:        req.Body,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err {
		case message.ErrInvalidInput, message.ErrSelfMessage:
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": m})
}

// Conversations godoc
// @Summary Get the user's conversations ordered by latest activity
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of conversations"
// @Success 200 {array} message.Conversation
// @Failure 401 {object} map[string]string
// @Router /api/messages/conversations [get]
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	conversations, err := h.service.Conversations(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

// ConversationMessages godoc
// @Summary Get messages inside a conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID" format(uuid)
// @Param limit query int false "Maximum number of messages"
// @Success 200 {array} message.Message
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/messages/conversations/{id} [get]
func (h *MessageHandler) ConversationMessages(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	messages, err := h.service.ConversationMessages(c.Request.Context(), id, userID, limit)
	if err != nil {
		c.JSON(messageErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// MarkConversationRead godoc
// @Summary Mark every message in a conversation as read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/messages/conversations/{id}/read [post]
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	if err := h.service.MarkConversationRead(c.Request.Context(), id, userID); err != nil {
		c.JSON(messageErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation marked read"})
}

// UnreadCount godoc
// @Summary Count unread messages across all conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string
// @Router /api/messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unread_count": count}})
}

func messageErrorStatus(err error) int {
	switch err {
	case message.ErrConversationNotFound:
		return http.StatusNotFound
	case message.ErrNotParticipant:
		return http.StatusForbidden
	case message.ErrInvalidInput, message.ErrSelfMessage:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
