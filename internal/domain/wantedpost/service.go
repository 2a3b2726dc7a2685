package wantedpost

import (
	"context"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreatePost(ctx context.Context, input CreatePostInput) (*WantedPost, error)
	GetPost(ctx context.Context, id uuid.UUID) (*WantedPost, error)
	UserPosts(ctx context.Context, userID uuid.UUID, limit int) ([]WantedPost, error)
	Browse(ctx context.Context, filter BrowseFilter) ([]WantedPost, int64, error)
	UpdatePost(ctx context.Context, id, userID uuid.UUID, input UpdatePostInput) (*WantedPost, error)
	DeactivatePost(ctx context.Context, id, userID uuid.UUID) (*WantedPost, error)
	DeletePost(ctx context.Context, id, userID uuid.UUID) error
}

type CreatePostInput struct {
	UserID       uuid.UUID `json:"user_id"`
	Game         string    `json:"game"`
	CardName     string    `json:"card_name"`
	SetName      string    `json:"set_name"`
	Description  string    `json:"description"`
	MinCondition string    `json:"min_condition"`
	MaxPrice     float64   `json:"max_price"`
	City         string    `json:"city"`
	State        string    `json:"state"`
}

type UpdatePostInput struct {
	CardName     *string  `json:"card_name,omitempty"`
	SetName      *string  `json:"set_name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	MinCondition *string  `json:"min_condition,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
}

type service struct {
	repo   Repository
	bus    *events.Bus
	logger *zap.Logger
}

func NewService(repo Repository, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, bus: bus, logger: logger}
}

func (s *service) publishChange(id, userID uuid.UUID, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventWantedPostChanged,
		Section:   events.SectionWantedPosts,
		UserIDs:   []uuid.UUID{userID},
		EntityID:  id,
		Details:   map[string]interface{}{"action": action},
	})
}

func (s *service) CreatePost(ctx context.Context, input CreatePostInput) (*WantedPost, error) {
	w := &WantedPost{
		ID:           uuid.New(),
		UserID:       input.UserID,
		Game:         input.Game,
		CardName:     input.CardName,
		SetName:      input.SetName,
		Description:  input.Description,
		MinCondition: input.MinCondition,
		MaxPrice:     input.MaxPrice,
		City:         input.City,
		State:        input.State,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.publishChange(w.ID, w.UserID, "wanted_post_created")
	return w, nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*WantedPost, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UserPosts(ctx context.Context, userID uuid.UUID, limit int) ([]WantedPost, error) {
	return s.repo.FindByUser(ctx, userID, limit)
}

func (s *service) Browse(ctx context.Context, filter BrowseFilter) ([]WantedPost, int64, error) {
	return s.repo.Browse(ctx, filter)
}

func (s *service) owned(ctx context.Context, id, userID uuid.UUID) (*WantedPost, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrNotOwner
	}
	return w, nil
}

func (s *service) UpdatePost(ctx context.Context, id, userID uuid.UUID, input UpdatePostInput) (*WantedPost, error) {
	w, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.CardName != nil {
		w.CardName = *input.CardName
	}
	if input.SetName != nil {
		w.SetName = *input.SetName
	}
	if input.Description != nil {
		w.Description = *input.Description
	}
	if input.MinCondition != nil {
		w.MinCondition = *input.MinCondition
	}
	if input.MaxPrice != nil {
		w.MaxPrice = *input.MaxPrice
	}
	if input.City != nil {
		w.City = *input.City
	}
	if input.State != nil {
		w.State = *input.State
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	s.publishChange(w.ID, w.UserID, "wanted_post_updated")
	return w, nil
}

func (s *service) DeactivatePost(ctx context.Context, id, userID uuid.UUID) (*WantedPost, error) {
	w, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	w.IsActive = false
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	s.publishChange(w.ID, w.UserID, "wanted_post_deactivated")
	return w, nil
}

func (s *service) DeletePost(ctx context.Context, id, userID uuid.UUID) error {
	w, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishChange(w.ID, w.UserID, "wanted_post_deleted")
	return nil
}
