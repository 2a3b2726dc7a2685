package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/security/auth"
	"github.com/gin-gonic/gin"
)

// UserRoutes handles the setup of account and authentication routes
type UserRoutes struct {
	handler   *handlers.UserHandler
	jwtSecret string
	limiter   auth.RateLimiter
}

func NewUserRoutes(handler *handlers.UserHandler, jwtSecret string, limiter auth.RateLimiter) *UserRoutes {
	return &UserRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
		limiter:   limiter,
	}
}

// RegisterRoutes registers all account routes. Register and login sit
// behind the rate limiter instead of auth.
func (r *UserRoutes) RegisterRoutes(router *gin.Engine) {
	public := router.Group("/api/users")
	public.Use(middleware.RateLimitMiddleware(r.limiter))
	public.POST("/register", r.handler.Register)
	public.POST("/login", r.handler.Login)
	public.GET("/:username", r.handler.GetProfile)

	private := router.Group("/api/users")
	private.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	private.POST("/logout", r.handler.Logout)
	private.GET("/me", r.handler.Me)
	private.PATCH("/me", r.handler.UpdateProfile)
	private.DELETE("/me", r.handler.DeleteAccount)
	private.POST("/me/premium", r.handler.UpgradeToPremium)
}
