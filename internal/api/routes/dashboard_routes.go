package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// DashboardRoutes handles the setup of dashboard routes
type DashboardRoutes struct {
	handler   *handlers.DashboardHandler
	jwtSecret string
}

func NewDashboardRoutes(handler *handlers.DashboardHandler, jwtSecret string) *DashboardRoutes {
	return &DashboardRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all dashboard routes. The snapshot endpoints
// are never response-cached here; the preloader owns its own caching.
func (r *DashboardRoutes) RegisterRoutes(router *gin.Engine) {
	dashboard := router.Group("/api/dashboard")
	dashboard.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	dashboard.GET("", r.handler.GetDashboard)
	dashboard.GET("/loading", r.handler.GetLoadingState)
	dashboard.GET("/ws", r.handler.Stream)
	dashboard.POST("/refresh/:section", r.handler.RefreshSection)
	dashboard.DELETE("/cache", r.handler.ClearCache)
	dashboard.DELETE("/session", r.handler.Dispose)
}
