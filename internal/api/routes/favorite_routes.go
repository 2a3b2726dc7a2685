package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// FavoriteRoutes handles the setup of favorite routes
type FavoriteRoutes struct {
	handler   *handlers.FavoriteHandler
	jwtSecret string
}

func NewFavoriteRoutes(handler *handlers.FavoriteHandler, jwtSecret string) *FavoriteRoutes {
	return &FavoriteRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all favorite routes
func (r *FavoriteRoutes) RegisterRoutes(router *gin.Engine) {
	favorites := router.Group("/api/favorites")
	favorites.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	favorites.GET("", r.handler.MyFavorites)
	favorites.POST("", r.handler.AddFavorite)
	favorites.GET("/:id", r.handler.IsFavorite)
	favorites.DELETE("/:id", r.handler.RemoveFavorite)
}
