package handlers

import (
	"net/http"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/user"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/config"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for accounts and authentication
type UserHandler struct {
	service user.Service
	cfg     *config.Config
	logger  *zap.Logger
}

func NewUserHandler(service user.Service, cfg *config.Config, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, cfg: cfg, logger: logger}
}

// Register godoc
// @Summary Register a new account
// @Tags users
// @Accept json
// @Produce json
// @Param account body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.Register(c.Request.Context(), user.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Location:    req.Location,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err {
		case user.ErrInvalidInput:
			statusCode = http.StatusBadRequest
		case user.ErrEmailTaken, user.ErrUsernameTaken:
			statusCode = http.StatusConflict
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	token, err := h.issueSession(c, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": dto.TokenResponse{Token: token, User: *UserToResponse(u)}})
}

// Login godoc
// @Summary Authenticate and create a session
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.issueSession(c, u)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.TokenResponse{Token: token, User: *UserToResponse(u)}})
}

func (h *UserHandler) issueSession(c *gin.Context, u *user.User) (string, error) {
	token, err := auth.GenerateToken(
		u.ID,
		u.Username,
		u.Email,
		string(u.Tier),
		h.cfg.Auth.JWTSecret,
		h.cfg.Auth.JWTIssuer,
		h.cfg.Auth.JWTExpiryHours,
	)
	if err != nil {
		return "", err
	}

	auth.GetSessionStore().CreateSession(
		u.ID,
		c.Request.UserAgent(),
		c.ClientIP(),
		token,
		time.Duration(h.cfg.Auth.JWTExpiryHours)*time.Hour,
	)
	return token, nil
}

// Logout godoc
// @Summary Invalidate the current session and token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	token, exists := c.Get("token")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token found"})
		return
	}

	claims, err := auth.ValidateToken(token.(string), h.cfg.Auth.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	auth.GetSessionStore().InvalidateSession(token.(string))
	auth.GetTokenBlacklist().AddToBlacklist(token.(string), claims.ExpiresAt.Time)

	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} map[string]string
// @Router /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == user.ErrUserNotFound {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

// GetProfile godoc
// @Summary Get a public profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} map[string]string
// @Router /api/users/{username} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}

	u, err := h.service.GetByUsername(c.Request.Context(), username)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == user.ErrUserNotFound {
			statusCode = http.StatusNotFound
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": PublicUserToResponse(u)})
}

// UpdateProfile godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body dto.UpdateProfileRequest true "Profile update"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, user.UpdateProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err == user.ErrInvalidInput {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

// UpgradeToPremium godoc
// @Summary Upgrade the account to the premium tier
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param upgrade body dto.UpgradePremiumRequest true "Premium expiry"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/me/premium [post]
func (h *UserHandler) UpgradeToPremium(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpgradePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.ExpiresAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiry must be in the future"})
		return
	}

	u, err := h.service.UpgradeToPremium(c.Request.Context(), userID, req.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": UserToResponse(u)})
}

// DeleteAccount godoc
// @Summary Soft delete the authenticated account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 204 "Account deleted"
// @Failure 401 {object} map[string]string
// @Router /api/users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
