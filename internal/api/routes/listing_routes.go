package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ListingRoutes handles the setup of listing routes
type ListingRoutes struct {
	handler   *handlers.ListingHandler
	jwtSecret string
}

func NewListingRoutes(handler *handlers.ListingHandler, jwtSecret string) *ListingRoutes {
	return &ListingRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all listing routes. Browse and detail pages are
// public and response-cached; everything else requires auth.
func (r *ListingRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	public := router.Group("/api/listings")
	public.GET("", cache.CacheResponse(), r.handler.BrowseListings)
	public.GET("/:id", r.handler.GetListing)

	private := router.Group("/api/listings")
	private.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	private.GET("/mine", r.handler.MyListings)
	private.POST("", cache.CacheInvalidate("listings:*"), r.handler.CreateListing)
	private.PATCH("/:id", cache.CacheInvalidate("listings:*"), r.handler.UpdateListing)
	private.POST("/:id/archive", cache.CacheInvalidate("listings:*"), r.handler.ArchiveListing)
	private.POST("/:id/restore", cache.CacheInvalidate("listings:*"), r.handler.RestoreListing)
	private.DELETE("/:id", cache.CacheInvalidate("listings:*"), r.handler.DeleteListing)
}
