package wantedpost

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrWantedPostNotFound = errors.New("wanted post not found")
)

type Repository interface {
	Create(ctx context.Context, w *WantedPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*WantedPost, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]WantedPost, error)
	Browse(ctx context.Context, filter BrowseFilter) ([]WantedPost, int64, error)
	Update(ctx context.Context, w *WantedPost) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type wantedPostRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &wantedPostRepository{db: db}
}

func (r *wantedPostRepository) Create(ctx context.Context, w *WantedPost) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *wantedPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*WantedPost, error) {
	var w WantedPost
	result := r.db.WithContext(ctx).First(&w, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWantedPostNotFound
		}
		return nil, result.Error
	}
	return &w, nil
}

func (r *wantedPostRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]WantedPost, error) {
	var posts []WantedPost
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}

func (r *wantedPostRepository) Browse(ctx context.Context, filter BrowseFilter) ([]WantedPost, int64, error) {
	var posts []WantedPost
	var total int64

	query := r.db.WithContext(ctx).Where("is_active = true")

	if filter.Game != nil {
		query = query.Where("game = ?", *filter.Game)
	}
	if filter.CardName != nil {
		query = query.Where("card_name ILIKE ?", "%"+*filter.CardName+"%")
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}

	if err := query.Model(&WantedPost{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize == 0 {
		filter.PageSize = 50
	}
	query = query.Order("created_at DESC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize)

	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *wantedPostRepository) Update(ctx context.Context, w *WantedPost) error {
	result := r.db.WithContext(ctx).Save(w)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWantedPostNotFound
	}
	return nil
}

func (r *wantedPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&WantedPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWantedPostNotFound
	}
	return nil
}
