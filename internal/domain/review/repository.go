package review

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Review, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Review, error)
	FindByReviewer(ctx context.Context, reviewerID uuid.UUID, limit int) ([]Review, error)
	Summary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var rv Review
	result := r.db.WithContext(ctx).First(&rv, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, result.Error
	}
	return &rv, nil
}

func (r *reviewRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*Review, error) {
	var rv Review
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rv)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, result.Error
	}
	return &rv, nil
}

func (r *reviewRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Review, error) {
	var reviews []Review
	result := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}
	return reviews, nil
}

func (r *reviewRepository) FindByReviewer(ctx context.Context, reviewerID uuid.UUID, limit int) ([]Review, error) {
	var reviews []Review
	result := r.db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews)
	if result.Error != nil {
		return nil, result.Error
	}
	return reviews, nil
}

func (r *reviewRepository) Summary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error) {
	summary := &SellerSummary{SellerID: sellerID}

	row := r.db.WithContext(ctx).Model(&Review{}).
		Select("COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS average_rating").
		Where("seller_id = ?", sellerID).
		Row()

	if err := row.Scan(&summary.ReviewCount, &summary.AverageRating); err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *Review) error {
	result := r.db.WithContext(ctx).Save(rv)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
