package favorite

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
)

type Repository interface {
	Add(ctx context.Context, f *Favorite) error
	Remove(ctx context.Context, userID, listingID uuid.UUID) error
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Favorite, error)
	Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	CountForListing(ctx context.Context, listingID uuid.UUID) (int64, error)
}

type favoriteRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, f *Favorite) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

func (r *favoriteRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Favorite, error) {
	var favorites []Favorite
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&favorites)
	if result.Error != nil {
		return nil, result.Error
	}
	return favorites, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *favoriteRepository) CountForListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error
	return count, err
}
