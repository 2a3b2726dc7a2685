package handlers

import (
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/favorite"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FavoriteHandler handles HTTP requests for saved listings
type FavoriteHandler struct {
	service favorite.Service
}

func NewFavoriteHandler(service favorite.Service) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// AddFavorite godoc
// @Summary Save a listing to favorites
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param favorite body dto.AddFavoriteRequest true "Listing to save"
// @Success 201 {object} favorite.Favorite
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/favorites [post]
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.service.AddFavorite(c.Request.Context(), userID, req.ListingID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err {
		case listing.ErrListingNotFound:
			statusCode = http.StatusNotFound
		case favorite.ErrAlreadyFavorited:
			statusCode = http.StatusConflict
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": f})
}

// RemoveFavorite godoc
// @Summary Remove a listing from favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Success 204 "Favorite removed"
// @Failure 404 {object} map[string]string
// @Router /api/favorites/{id} [delete]
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), userID, listingID); err != nil {
		statusCode := http.StatusInternalServerError
		if err == favorite.ErrFavoriteNotFound {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// MyFavorites godoc
// @Summary Get the user's saved listings
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of favorites"
// @Success 200 {array} favorite.SavedListing
// @Failure 401 {object} map[string]string
// @Router /api/favorites [get]
func (h *FavoriteHandler) MyFavorites(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	favorites, err := h.service.UserFavorites(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": favorites})
}

// IsFavorite godoc
// @Summary Check whether a listing is saved
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID" format(uuid)
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Router /api/favorites/{id} [get]
func (h *FavoriteHandler) IsFavorite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing ID"})
		return
	}

	saved, err := h.service.IsFavorite(c.Request.Context(), userID, listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"favorited": saved}})
}
