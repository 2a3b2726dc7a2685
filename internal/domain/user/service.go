package user

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/cache"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/security/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const premiumCacheTTL = 10 * time.Minute

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error)
	UpgradeToPremium(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*User, error)
	IsPremium(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	RecordReview(ctx context.Context, sellerID uuid.UUID, rating int) error
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Location    string `json:"location"`
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Location    *string `json:"location,omitempty"`
}

type service struct {
	repo   Repository
	redis  *cache.RedisClient
	bus    *events.Bus
	logger *zap.Logger
}

func NewService(repo Repository, redis *cache.RedisClient, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, redis: redis, bus: bus, logger: logger}
}

func premiumCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user_premium_%s", id)
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if input.Username == "" || input.Email == "" || len(input.Password) < 8 {
		return nil, ErrInvalidInput
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	}
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		DisplayName:  input.DisplayName,
		Location:     input.Location,
		Tier:         TierFree,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", u.ID.String()),
		zap.String("username", u.Username))

	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		u.DisplayName = *input.DisplayName
	}
	if input.AvatarURL != nil {
		u.AvatarURL = *input.AvatarURL
	}
	if input.Bio != nil {
		u.Bio = *input.Bio
	}
	if input.Location != nil {
		u.Location = *input.Location
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) UpgradeToPremium(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Tier = TierPremium
	u.PremiumExpiresAt = &expiresAt

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if err := s.redis.Delete(ctx, premiumCacheKey(id)); err != nil {
		s.logger.Warn("Failed to invalidate premium status cache", zap.Error(err))
	}

	s.logger.Info("Account upgraded to premium",
		zap.String("user_id", id.String()),
		zap.Time("expires_at", expiresAt))

	return u, nil
}

// IsPremium resolves the account tier with a short-lived cache in front of
// the database so hot paths like listing limits stay cheap.
func (s *service) IsPremium(ctx context.Context, id uuid.UUID) (bool, error) {
	key := premiumCacheKey(id)
	if cached, err := s.redis.Get(ctx, key); err == nil {
		s.redis.TrackCacheEvent(true, "premium_status")
		return cached == "true", nil
	}
	s.redis.TrackCacheEvent(false, "premium_status")

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	premium := u.IsPremium()
	if err := s.redis.Set(ctx, key, strconv.FormatBool(premium), premiumCacheTTL); err != nil {
		s.logger.Warn("Failed to cache premium status", zap.Error(err))
	}

	return premium, nil
}

// DeleteAccount soft-deletes the account, invalidates sessions and drops
// every dashboard cache entry the user owned.
func (s *service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	invalidated := auth.GetSessionStore().InvalidateUserSessions(id)

	if err := s.redis.Delete(ctx, premiumCacheKey(id)); err != nil {
		s.logger.Warn("Failed to drop premium status cache", zap.Error(err))
	}
	if err := s.redis.ClearDashboard(ctx, id); err != nil {
		s.logger.Warn("Failed to drop dashboard cache", zap.Error(err))
	}

	s.logger.Info("Account deleted",
		zap.String("user_id", id.String()),
		zap.Int("sessions_invalidated", invalidated))

	return nil
}

// RecordReview folds a new rating into the seller's running average.
func (s *service) RecordReview(ctx context.Context, sellerID uuid.UUID, rating int) error {
	u, err := s.repo.FindByID(ctx, sellerID)
	if err != nil {
		return err
	}

	total := u.RatingAverage*float64(u.RatingCount) + float64(rating)
	u.RatingCount++
	u.RatingAverage = total / float64(u.RatingCount)

	return s.repo.Update(ctx, u)
}
