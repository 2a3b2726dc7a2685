package routes

import (
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/handlers"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// OrderRoutes handles the setup of order routes
type OrderRoutes struct {
	handler   *handlers.OrderHandler
	jwtSecret string
}

func NewOrderRoutes(handler *handlers.OrderHandler, jwtSecret string) *OrderRoutes {
	return &OrderRoutes{
		handler:   handler,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes registers all order routes. The payment webhook stays
// outside the auth group since the provider posts without a user token.
func (r *OrderRoutes) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/orders/payment-webhook", r.handler.PaymentWebhook)

	orders := router.Group("/api/orders")
	orders.Use(middleware.NewAuthMiddleware(r.jwtSecret))

	orders.POST("", r.handler.BuyNow)
	orders.GET("/purchases", r.handler.Purchases)
	orders.GET("/sales", r.handler.Sales)
	orders.GET("/:id", r.handler.GetOrder)
	orders.POST("/:id/payment-session", r.handler.AttachPaymentSession)
	orders.POST("/:id/ship", r.handler.Ship)
	orders.POST("/:id/complete", r.handler.Complete)
	orders.POST("/:id/cancel", r.handler.Cancel)
	orders.POST("/:id/refund", r.handler.Refund)
}
