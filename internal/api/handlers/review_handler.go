package handlers

import (
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/review"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReviewHandler handles HTTP requests for seller reviews
type ReviewHandler struct {
	service review.Service
}

func NewReviewHandler(service review.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// CreateReview godoc
// @Summary Review a completed order
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review body dto.CreateReviewRequest true "Review"
// @Success 201 {object} review.Review
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.CreateReview(c.Request.Context(), review.CreateReviewInput{
		OrderID:    req.OrderID,
		ReviewerID: userID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		c.JSON(reviewErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": r})
}

// SellerReviews godoc
// @Summary Get reviews received by a seller
// @Tags reviews
// @Produce json
// @Param id path string true "Seller ID" format(uuid)
// @Param limit query int false "Maximum number of reviews"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/reviews/seller/{id} [get]
func (h *ReviewHandler) SellerReviews(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seller ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reviews, err := h.service.SellerReviews(c.Request.Context(), sellerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.service.SellerSummary(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reviews": reviews, "summary": summary}})
}

// MyReviews godoc
// @Summary Get reviews written by the authenticated user
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of reviews"
// @Success 200 {array} review.Review
// @Failure 401 {object} map[string]string
// @Router /api/reviews/mine [get]
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reviews, err := h.service.WrittenReviews(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reviews})
}

// UpdateReview godoc
// @Summary Update a review's rating or comment
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID" format(uuid)
// @Param review body dto.UpdateReviewRequest true "Review update"
// @Success 200 {object} review.Review
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.UpdateReview(c.Request.Context(), id, userID, req.Rating, req.Comment)
	if err != nil {
		c.JSON(reviewErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": r})
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID" format(uuid)
// @Success 204 "Review deleted"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review ID"})
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), id, userID); err != nil {
		c.JSON(reviewErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func reviewErrorStatus(err error) int {
	switch err {
	case review.ErrReviewNotFound, order.ErrOrderNotFound:
		return http.StatusNotFound
	case review.ErrNotBuyer:
		return http.StatusForbidden
	case review.ErrInvalidRating, review.ErrOrderNotComplete, review.ErrAlreadyReviewed:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
