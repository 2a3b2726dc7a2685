package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// OfferRoutes handles the setup of offer routes
type OfferRoutes struct {
	handler   *handlers.OfferHandler
	jwtSecret string
}

func NewOfferRoutes(handler *handlers.OfferHandler, jwtSecret string) *OfferRoutes {
	return &OfferRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all offer routes
func (r *OfferRoutes) RegisterRoutes(router *gin.Engine) {
	offers := router.Group("/api/offers")
	offers.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	offers.POST("", r.handler.MakeOffer)
	offers.GET("/received", r.handler.ReceivedOffers)
	offers.GET("/sent", r.handler.SentOffers)
	offers.POST("/:id/accept", r.handler.AcceptOffer)
	offers.POST("/:id/decline", r.handler.DeclineOffer)
	offers.POST("/:id/counter", r.handler.CounterOffer)
	offers.DELETE("/:id", r.handler.ClearOffer)
}
