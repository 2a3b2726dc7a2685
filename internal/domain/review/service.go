package review

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatingRecorder folds accepted reviews into the seller's profile rating.
// Satisfied by the user service.
type RatingRecorder interface {
	RecordReview(ctx context.Context, sellerID uuid.UUID, rating int) error
}

type Service interface {
	CreateReview(ctx context.Context, input CreateReviewInput) (*Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (*Review, error)
	SellerReviews(ctx context.Context, sellerID uuid.UUID, limit int) ([]Review, error)
	WrittenReviews(ctx context.Context, reviewerID uuid.UUID, limit int) ([]Review, error)
	SellerSummary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error)
	UpdateReview(ctx context.Context, id, reviewerID uuid.UUID, rating int, comment string) (*Review, error)
	DeleteReview(ctx context.Context, id, reviewerID uuid.UUID) error
}

type CreateReviewInput struct {
	OrderID    uuid.UUID `json:"order_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

type service struct {
	repo    Repository
	orders  order.Repository
	ratings RatingRecorder
	bus     *events.Bus
	logger  *zap.Logger
}

func NewService(repo Repository, orders order.Repository, ratings RatingRecorder, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, orders: orders, ratings: ratings, bus: bus, logger: logger}
}

func (s *service) publishChange(rv *Review, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventReviewCreated,
		Section:   events.SectionReviews,
		UserIDs:   []uuid.UUID{rv.ReviewerID, rv.SellerID},
		EntityID:  rv.ID,
		Details: map[string]interface{}{
			"action":    action,
			"seller_id": rv.SellerID.String(),
			"rating":    rv.Rating,
		},
	})
}

// CreateReview lets the buyer of a completed order rate its seller, once.
func (s *service) CreateReview(ctx context.Context, input CreateReviewInput) (*Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != input.ReviewerID {
		return nil, ErrNotBuyer
	}
	if o.Status != order.StatusCompleted {
		return nil, ErrOrderNotComplete
	}

	if _, err := s.repo.FindByOrder(ctx, input.OrderID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, ErrReviewNotFound) {
		return nil, err
	}

	rv := &Review{
		ID:         uuid.New(),
		OrderID:    input.OrderID,
		ReviewerID: input.ReviewerID,
		SellerID:   o.SellerID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.ratings.RecordReview(ctx, rv.SellerID, rv.Rating); err != nil {
		s.logger.Warn("Failed to update seller rating",
			zap.String("seller_id", rv.SellerID.String()),
			zap.Error(err))
	}

	s.publishChange(rv, "review_created")
	return rv, nil
}

func (s *service) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) SellerReviews(ctx context.Context, sellerID uuid.UUID, limit int) ([]Review, error) {
	return s.repo.FindBySeller(ctx, sellerID, limit)
}

func (s *service) WrittenReviews(ctx context.Context, reviewerID uuid.UUID, limit int) ([]Review, error) {
	return s.repo.FindByReviewer(ctx, reviewerID, limit)
}

func (s *service) SellerSummary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error) {
	return s.repo.Summary(ctx, sellerID)
}

func (s *service) UpdateReview(ctx context.Context, id, reviewerID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.ReviewerID != reviewerID {
		return nil, ErrReviewNotFound
	}

	rv.Rating = rating
	rv.Comment = comment
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}

	s.publishChange(rv, "review_updated")
	return rv, nil
}

func (s *service) DeleteReview(ctx context.Context, id, reviewerID uuid.UUID) error {
	rv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rv.ReviewerID != reviewerID {
		return ErrReviewNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishChange(rv, "review_deleted")
	return nil
}
