package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// NotificationRoutes handles the setup of notification routes
type NotificationRoutes struct {
	handler   *handlers.NotificationHandler
	jwtSecret string
}

func NewNotificationRoutes(handler *handlers.NotificationHandler, jwtSecret string) *NotificationRoutes {
	return &NotificationRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all notification routes
func (r *NotificationRoutes) RegisterRoutes(router *gin.Engine) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	notifications.GET("", r.handler.ListNotifications)
	notifications.GET("/unread-count", r.handler.UnreadCount)
	notifications.POST("/:id/read", r.handler.MarkRead)
	notifications.POST("/read-all", r.handler.MarkAllRead)
	notifications.DELETE("/:id", r.handler.DeleteNotification)
}
