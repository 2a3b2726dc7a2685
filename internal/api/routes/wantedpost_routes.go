package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// WantedPostRoutes handles the setup of wanted post routes
type WantedPostRoutes struct {
	handler   *handlers.WantedPostHandler
	jwtSecret string
}

func NewWantedPostRoutes(handler *handlers.WantedPostHandler, jwtSecret string) *WantedPostRoutes {
	return &WantedPostRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all wanted post routes. Browsing is public and
// response-cached.
func (r *WantedPostRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	public := router.Group("/api/wanted-posts")
	public.GET("", cache.CacheResponse(), r.handler.BrowsePosts)

	private := router.Group("/api/wanted-posts")
	private.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	private.GET("/mine", r.handler.MyPosts)
	private.POST("", cache.CacheInvalidate("wanted-posts:*"), r.handler.CreatePost)
	private.PATCH("/:id", cache.CacheInvalidate("wanted-posts:*"), r.handler.UpdatePost)
	private.POST("/:id/deactivate", cache.CacheInvalidate("wanted-posts:*"), r.handler.DeactivatePost)
	private.DELETE("/:id", cache.CacheInvalidate("wanted-posts:*"), r.handler.DeletePost)
}
