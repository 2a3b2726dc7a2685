package listing

import (
	"context"
	"errors"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindActiveBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error)
	FindArchivedBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error)
	Browse(ctx context.Context, filter BrowseFilter) ([]Listing, int64, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Listing, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type listingRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	result := r.db.WithContext(ctx).First(&l, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, result.Error
	}
	return &l, nil
}

func (r *listingRepository) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	var listings []Listing
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND status = ?", sellerID, StatusActive).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings)
	if result.Error != nil {
		return nil, result.Error
	}
	return listings, nil
}

func (r *listingRepository) FindArchivedBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	var listings []Listing
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND status = ?", sellerID, StatusArchived).
		Order("created_at DESC").
		Limit(limit).
		Find(&listings)
	if result.Error != nil {
		return nil, result.Error
	}
	return listings, nil
}

func (r *listingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error) {
	if len(ids) == 0 {
		return []Listing{}, nil
	}
	var listings []Listing
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&listings)
	if result.Error != nil {
		return nil, result.Error
	}
	return listings, nil
}

func (r *listingRepository) Browse(ctx context.Context, filter BrowseFilter) ([]Listing, int64, error) {
	var listings []Listing
	var total int64

	query := r.db.WithContext(ctx).Where("status = ?", StatusActive)

	if filter.Game != nil {
		query = query.Where("game = ?", *filter.Game)
	}
	if filter.CardName != nil {
		query = query.Where("card_name ILIKE ?", "%"+*filter.CardName+"%")
	}
	if filter.Condition != nil {
		query = query.Where("condition = ?", *filter.Condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Search != nil {
		like := "%" + *filter.Search + "%"
		query = query.Where("title ILIKE ? OR card_name ILIKE ? OR description ILIKE ?", like, like, like)
	}

	if err := query.Model(&Listing{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 50
	}
	query = query.Order("created_at DESC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize)

	if err := query.Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepository) Update(ctx context.Context, l *Listing) error {
	result := r.db.WithContext(ctx).Save(l)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Listing{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Listing{}).
		Where("seller_id = ? AND status = ?", sellerID, StatusActive).
		Count(&count).Error
	return count, err
}

func (r *listingRepository) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Listing, error) {
	var listings []Listing
	result := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", StatusActive, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&listings)
	if result.Error != nil {
		return nil, result.Error
	}
	return listings, nil
}

func (r *listingRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
