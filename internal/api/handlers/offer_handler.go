package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OfferHandler handles HTTP requests for offers
type OfferHandler struct {
	service offer.Service
}

func NewOfferHandler(service offer.Service) *OfferHandler {
	return &OfferHandler{service: service}
}

// MakeOffer godoc
// @Summary Make an offer on a listing
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param offer body dto.MakeOfferRequest true "Offer request"
// @Success 201 {object} offer.Offer
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/offers [post]
func (h *OfferHandler) MakeOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.MakeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.MakeOffer(c.Request.Context(), offer.MakeOfferInput{
		ListingID: req.ListingID,
		BuyerID:   userID,
		Amount:    req.Amount,
	})
	if err != nil {
		c.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": o})
}

// ReceivedOffers godoc
// @Summary Get offers received on the user's listings
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of offers"
// @Success 200 {array} offer.Offer
// @Failure 401 {object} map[string]string
// @Router /api/offers/received [get]
func (h *OfferHandler) ReceivedOffers(c *gin.Context) {
	h.list(c, h.service.Received)
}

// SentOffers godoc
// @Summary Get offers the user has made
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of offers"
// @Success 200 {array} offer.Offer
// @Failure 401 {object} map[string]string
// @Router /api/offers/sent [get]
func (h *OfferHandler) SentOffers(c *gin.Context) {
	h.list(c, h.service.Sent)
}

func (h *OfferHandler) list(c *gin.Context, op func(ctx context.Context, userID uuid.UUID, limit int) ([]offer.Offer, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	offers, err := op(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offers})
}

// AcceptOffer godoc
// @Summary Accept an offer
// @Description The seller accepts a pending offer, or the buyer accepts a counter offer. Acceptance creates an order.
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID" format(uuid)
// @Success 200 {object} offer.Offer
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/offers/{id}/accept [post]
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	h.resolve(c, h.service.AcceptOffer)
}

// DeclineOffer godoc
// @Summary Decline an offer
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID" format(uuid)
// @Success 200 {object} offer.Offer
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/offers/{id}/decline [post]
func (h *OfferHandler) DeclineOffer(c *gin.Context) {
	h.resolve(c, h.service.DeclineOffer)
}

func (h *OfferHandler) resolve(c *gin.Context, op func(ctx context.Context, id, userID uuid.UUID) (*offer.Offer, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
		return
	}

	o, err := op(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// CounterOffer godoc
// @Summary Counter a pending offer with a different amount
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID" format(uuid)
// @Param counter body dto.CounterOfferRequest true "Counter amount"
// @Success 200 {object} offer.Offer
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/offers/{id}/counter [post]
func (h *OfferHandler) CounterOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
		return
	}

	var req dto.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.service.CounterOffer(c.Request.Context(), id, userID, req.Amount)
	if err != nil {
		c.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": o})
}

// ClearOffer godoc
// @Summary Hide a resolved offer from the dashboard
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID" format(uuid)
// @Success 204 "Offer cleared"
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/offers/{id} [delete]
func (h *OfferHandler) ClearOffer(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
		return
	}

	if err := h.service.ClearOffer(c.Request.Context(), id, userID); err != nil {
		c.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func offerErrorStatus(err error) int {
	switch err {
	case offer.ErrOfferNotFound, listing.ErrListingNotFound:
		return http.StatusNotFound
	case offer.ErrNotParticipant:
		return http.StatusForbidden
	case offer.ErrInvalidInput, offer.ErrOwnListing, offer.ErrAlreadyResolved, listing.ErrNotActive:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
