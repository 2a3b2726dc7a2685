package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	service order.Service
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// BuyNow godoc
// @Summary Buy a listing at its asking price
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body dto.BuyNowRequest true "Purchase request"
// @Success 201 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/orders [post]
func (h *OrderHandler) BuyNow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.BuyNow(c.Request.Context(), order.BuyNowInput{
		ListingID:       req.ListingID,
		BuyerID:         userID,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": o})
}

// GetOrder godoc
// @Summary Get an order by ID
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} order.Order
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	o, err := h.service.GetOrder(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// Purchases godoc
// @Summary Get orders where the user is the buyer
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of orders"
// @Success 200 {array} order.Order
// @Failure 401 {object} map[string]string
// @Router /api/orders/purchases [get]
func (h *OrderHandler) Purchases(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.service.Purchases(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// Sales godoc
// @Summary Get orders where the user is the seller
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of orders"
// @Success 200 {array} order.Order
// @Failure 401 {object} map[string]string
// @Router /api/orders/sales [get]
func (h *OrderHandler) Sales(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	orders, err := h.service.Sales(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// AttachPaymentSession godoc
// @Summary Attach a checkout session to a pending order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Param session body dto.AttachPaymentSessionRequest true "Checkout session"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id}/payment-session [post]
func (h *OrderHandler) AttachPaymentSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req dto.AttachPaymentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.AttachPaymentSession(c.Request.Context(), id, req.SessionID); err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment session attached"})
}

// PaymentWebhook godoc
// @Summary Payment provider callback for completed checkouts
// @Description Marks the order paid and the listing sold. Not behind user auth; the route is protected by the webhook verification middleware.
// @Tags orders
// @Accept json
// @Produce json
// @Param event body dto.PaymentWebhookRequest true "Checkout completion"
// @Success 200 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/payment-webhook [post]
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	var req dto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.MarkPaid(c.Request.Context(), req.SessionID, req.IntentID)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// Ship godoc
// @Summary Mark an order shipped with tracking details
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Param shipment body dto.ShipOrderRequest true "Shipment details"
// @Success 200 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req dto.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.Ship(c.Request.Context(), id, userID, req.Carrier, req.TrackingNumber)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// Complete godoc
// @Summary Confirm delivery and complete the order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

// Cancel godoc
// @Summary Cancel an order before it ships
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *OrderHandler) transition(c *gin.Context, op func(ctx context.Context, id, userID uuid.UUID) (*order.Order, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	o, err := op(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// Refund godoc
// @Summary Refund a paid order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID" format(uuid)
// @Param refund body dto.RefundOrderRequest true "Refund amount"
// @Success 200 {object} order.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req dto.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.Refund(c.Request.Context(), id, userID, req.Amount)
	if err != nil {
		c.JSON(orderErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

func orderErrorStatus(err error) int {
	switch err {
	case order.ErrOrderNotFound, listing.ErrListingNotFound:
		return http.StatusNotFound
	case order.ErrNotParticipant:
		return http.StatusForbidden
	case order.ErrInvalidInput, order.ErrInvalidTransition, listing.ErrNotActive:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
