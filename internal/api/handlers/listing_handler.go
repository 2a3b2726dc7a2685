package handlers

import (
	"context"
	"net/http"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingHandler handles HTTP requests for card listings
type ListingHandler struct {
	service listing.Service
}

func NewListingHandler(service listing.Service) *ListingHandler {
	return &ListingHandler{service: service}
}

// CreateListing godoc
// @Summary Create a new listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param listing body dto.CreateListingRequest true "Listing creation request"
// @Success 201 {object} listing.Listing
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	condition := listing.Condition(req.Condition)
	if !condition.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition value"})
		return
	}

	created, err := h.service.CreateListing(c.Request.Context(), listing.CreateListingInput{
		SellerID:     userID,
		Title:        req.Title,
		Description:  req.Description,
		Game:         req.Game,
		CardName:     req.CardName,
		SetName:      req.SetName,
		Condition:    condition,
		IsGraded:     req.IsGraded,
		GradeLevel:   req.GradeLevel,
		GradeCompany: req.GradeCompany,
		Price:        req.Price,
		Quantity:     req.Quantity,
		ImageURLs:    req.ImageURLs,
		City:         req.City,
		State:        req.State,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err {
		case listing.ErrInvalidInput:
			statusCode = http.StatusBadRequest
		case listing.ErrListingLimitReached:
			statusCode = http.StatusForbidden
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// GetListing godoc
// @Summary Get a listing by ID
// @Description Retrieves the listing and counts the view.
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID" format(uuid)
// @Success 200 {object} listing.Listing
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	l, err := h.service.ViewListing(c.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == listing.ErrListingNotFound {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": l})
}

// BrowseListings godoc
// @Summary Browse active listings
// @Tags listings
// @Produce json
// @Param game query string false "Filter by game"
// @Param card_name query string false "Filter by card name"
// @Param condition query string false "Filter by condition"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param state query string false "Filter by state"
// @Param search query string false "Full text search"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {array} listing.Listing
// @Failure 400 {object} map[string]string
// @Router /api/listings [get]
func (h *ListingHandler) BrowseListings(c *gin.Context) {
	var req dto.BrowseListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := listing.BrowseFilter{
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Game != "" {
		filter.Game = &req.Game
	}
	if req.CardName != "" {
		filter.CardName = &req.CardName
	}
	if req.Condition != "" {
		condition := listing.Condition(req.Condition)
		if !condition.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition value"})
			return
		}
		filter.Condition = &condition
	}
	if req.State != "" {
		filter.State = &req.State
	}
	if req.Search != "" {
		filter.Search = &req.Search
	}

	listings, total, err := h.service.Browse(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings, "total_count": total})
}

// MyListings godoc
// @Summary Get the authenticated seller's active and archived listings
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/listings/mine [get]
func (h *ListingHandler) MyListings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	active, err := h.service.SellerActive(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	archived, err := h.service.SellerArchived(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"active": active, "archived": archived}})
}

// UpdateListing godoc
// @Summary Update a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Param listing body dto.UpdateListingRequest true "Listing update"
// @Success 200 {object} listing.Listing
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/listings/{id} [patch]
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := listing.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		CardName:    req.CardName,
		SetName:     req.SetName,
		Price:       req.Price,
		Quantity:    req.Quantity,
		City:        req.City,
		State:       req.State,
	}
	if req.Condition != nil {
		condition := listing.Condition(*req.Condition)
		if !condition.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition value"})
			return
		}
		input.Condition = &condition
	}

	updated, err := h.service.UpdateListing(c.Request.Context(), id, userID, input)
	if err != nil {
		c.JSON(listingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// ArchiveListing godoc
// @Summary Archive a listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Success 200 {object} listing.Listing
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/listings/{id}/archive [post]
func (h *ListingHandler) ArchiveListing(c *gin.Context) {
	h.lifecycle(c, h.service.ArchiveListing)
}

// RestoreListing godoc
// @Summary Restore an archived listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Success 200 {object} listing.Listing
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/listings/{id}/restore [post]
func (h *ListingHandler) RestoreListing(c *gin.Context) {
	h.lifecycle(c, h.service.RestoreListing)
}

func (h *ListingHandler) lifecycle(c *gin.Context, op func(ctx context.Context, id, sellerID uuid.UUID) (*listing.Listing, error)) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	l, err := op(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(listingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": l})
}

// DeleteListing godoc
// @Summary Delete a listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Success 204 "Listing deleted"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/listings/{id} [delete]
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), id, userID); err != nil {
		c.JSON(listingErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func listingErrorStatus(err error) int {
	switch err {
	case listing.ErrListingNotFound:
		return http.StatusNotFound
	case listing.ErrNotOwner:
		return http.StatusForbidden
	case listing.ErrInvalidInput, listing.ErrNotActive:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
