package handlers

import (
	"net/http"
	"strconv"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WantedPostHandler handles HTTP requests for wanted posts
type WantedPostHandler struct {
	service wantedpost.Service
}

func NewWantedPostHandler(service wantedpost.Service) *WantedPostHandler {
	return &WantedPostHandler{service: service}
}

// CreatePost godoc
// @Summary Create a wanted post
// @Tags wanted-posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body dto.CreateWantedPostRequest true "Wanted post"
// @Success 201 {object} wantedpost.WantedPost
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/wanted-posts [post]
func (h *WantedPostHandler) CreatePost(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateWantedPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.CreatePost(c.Request.Context(), wantedpost.CreatePostInput{
		UserID:       userID,
		Game:         req.Game,
		CardName:     req.CardName,
		SetName:      req.SetName,
		Description:  req.Description,
		MinCondition: req.MinCondition,
		MaxPrice:     req.MaxPrice,
		City:         req.City,
		State:        req.State,
	})
	if err != nil {
		c.JSON(wantedPostErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": p})
}

// BrowsePosts godoc
// @Summary Browse active wanted posts
// @Tags wanted-posts
// @Produce json
// @Param game query string false "Filter by game"
// @Param card_name query string false "Filter by card name"
// @Param state query string false "Filter by state"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {array} wantedpost.WantedPost
// @Router /api/wanted-posts [get]
func (h *WantedPostHandler) BrowsePosts(c *gin.Context) {
	var req dto.BrowseWantedPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := wantedpost.BrowseFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Game != "" {
		filter.Game = &req.Game
	}
	if req.CardName != "" {
		filter.CardName = &req.CardName
	}
	if req.State != "" {
		filter.State = &req.State
	}

	posts, total, err := h.service.Browse(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts, "total_count": total})
}

// MyPosts godoc
// @Summary Get the authenticated user's wanted posts
// @Tags wanted-posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of posts"
// @Success 200 {array} wantedpost.WantedPost
// @Failure 401 {object} map[string]string
// @Router /api/wanted-posts/mine [get]
func (h *WantedPostHandler) MyPosts(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	posts, err := h.service.UserPosts(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

// UpdatePost godoc
// @Summary Update a wanted post
// @Tags wanted-posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wanted post ID" format(uuid)
// @Param post body dto.UpdateWantedPostRequest true "Wanted post update"
// @Success 200 {object} wantedpost.WantedPost
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/wanted-posts/{id} [patch]
func (h *WantedPostHandler) UpdatePost(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wanted post ID"})
		return
	}

	var req dto.UpdateWantedPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.UpdatePost(c.Request.Context(), id, userID, wantedpost.UpdatePostInput{
		CardName:     req.CardName,
		SetName:      req.SetName,
		Description:  req.Description,
		MinCondition: req.MinCondition,
		MaxPrice:     req.MaxPrice,
		City:         req.City,
		State:        req.State,
	})
	if err != nil {
		c.JSON(wantedPostErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

// DeactivatePost godoc
// @Summary Deactivate a wanted post without deleting it
// @Tags wanted-posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wanted post ID" format(uuid)
// @Success 200 {object} wantedpost.WantedPost
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/wanted-posts/{id}/deactivate [post]
func (h *WantedPostHandler) DeactivatePost(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wanted post ID"})
		return
	}

	p, err := h.service.DeactivatePost(c.Request.Context(), id, userID)
	if err != nil {
		c.JSON(wantedPostErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

// DeletePost godoc
// @Summary Delete a wanted post
// @Tags wanted-posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wanted post ID" format(uuid)
// @Success 204 "Wanted post deleted"
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/wanted-posts/{id} [delete]
func (h *WantedPostHandler) DeletePost(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wanted post ID"})
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), id, userID); err != nil {
		c.JSON(wantedPostErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func wantedPostErrorStatus(err error) int {
	switch err {
	case wantedpost.ErrWantedPostNotFound:
		return http.StatusNotFound
	case wantedpost.ErrNotOwner:
		return http.StatusForbidden
	case wantedpost.ErrInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
