package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// MessageRoutes handles the setup of messaging routes
type MessageRoutes struct {
	handler   *handlers.MessageHandler
	jwtSecret string
}

func NewMessageRoutes(handler *handlers.MessageHandler, jwtSecret string) *MessageRoutes {
	return &MessageRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all messaging routes
func (r *MessageRoutes) RegisterRoutes(router *gin.Engine) {
	messages := router.Group("/api/messages")
	messages.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	messages.POST("", r.handler.SendMessage)
	messages.GET("/conversations", r.handler.Conversations)
	messages.GET("/conversations/:id", r.handler.ConversationMessages)
	messages.POST("/conversations/:id/read", r.handler.MarkConversationRead)
	messages.GET("/unread-count", r.handler.UnreadCount)
}
