package offer

import (
	"context"
	"errors"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound = errors.New("offer not found")
)

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	FindReceived(ctx context.Context, sellerID uuid.UUID, limit int) ([]Offer, error)
	FindSent(ctx context.Context, buyerID uuid.UUID, limit int) ([]Offer, error)
	FindPendingForListing(ctx context.Context, listingID uuid.UUID) ([]Offer, error)
	Update(ctx context.Context, o *Offer) error
	FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Offer, error)
}

type offerRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, o *Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *offerRepository) FindByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	var o Offer
	result := r.db.WithContext(ctx).First(&o, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, result.Error
	}
	return &o, nil
}

func (r *offerRepository) FindReceived(ctx context.Context, sellerID uuid.UUID, limit int) ([]Offer, error) {
	var offers []Offer
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND cleared = false", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&offers)
	if result.Error != nil {
		return nil, result.Error
	}
	return offers, nil
}

func (r *offerRepository) FindSent(ctx context.Context, buyerID uuid.UUID, limit int) ([]Offer, error) {
	var offers []Offer
	result := r.db.WithContext(ctx).
		Where("buyer_id = ? AND cleared = false", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&offers)
	if result.Error != nil {
		return nil, result.Error
	}
	return offers, nil
}

func (r *offerRepository) FindPendingForListing(ctx context.Context, listingID uuid.UUID) ([]Offer, error) {
	var offers []Offer
	result := r.db.WithContext(ctx).
		Where("listing_id = ? AND status IN ?", listingID, []Status{StatusPending, StatusCountered}).
		Order("created_at DESC").
		Find(&offers)
	if result.Error != nil {
		return nil, result.Error
	}
	return offers, nil
}

func (r *offerRepository) Update(ctx context.Context, o *Offer) error {
	result := r.db.WithContext(ctx).Save(o)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (r *offerRepository) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Offer, error) {
	var offers []Offer
	result := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]Status{StatusPending, StatusCountered}, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&offers)
	if result.Error != nil {
		return nil, result.Error
	}
	return offers, nil
}
