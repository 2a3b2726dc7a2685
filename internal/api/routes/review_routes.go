package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// ReviewRoutes handles the setup of review routes
type ReviewRoutes struct {
	handler   *handlers.ReviewHandler
	jwtSecret string
}

func NewReviewRoutes(handler *handlers.ReviewHandler, jwtSecret string) *ReviewRoutes {
	return &ReviewRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all review routes. Seller review pages are
// public.
func (r *ReviewRoutes) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/reviews/seller/:id", r.handler.SellerReviews)

	reviews := router.Group("/api/reviews")
	reviews.Use(middleware.NewAuthMiddleware(r.jwtSecret))
	reviews.POST("", r.handler.CreateReview)
	reviews.GET("/mine", r.handler.MyReviews)
	reviews.PATCH("/:id", r.handler.UpdateReview)
	reviews.DELETE("/:id", r.handler.DeleteReview)
}
