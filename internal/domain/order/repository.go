package order

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByPaymentSession(ctx context.Context, sessionID string) (*Order, error)
	FindPurchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]Order, error)
	FindSales(ctx context.Context, sellerID uuid.UUID, limit int) ([]Order, error)
	Update(ctx context.Context, o *Order) error
}

type orderRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	result := r.db.WithContext(ctx).First(&o, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &o, nil
}

func (r *orderRepository) FindByPaymentSession(ctx context.Context, sessionID string) (*Order, error) {
	var o Order
	result := r.db.WithContext(ctx).Where("payment_session_id = ?", sessionID).First(&o)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}
	return &o, nil
}

func (r *orderRepository) FindPurchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]Order, error) {
	var orders []Order
	result := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}
	return orders, nil
}

func (r *orderRepository) FindSales(ctx context.Context, sellerID uuid.UUID, limit int) ([]Order, error) {
	var orders []Order
	result := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}
	return orders, nil
}

func (r *orderRepository) Update(ctx context.Context, o *Order) error {
	result := r.db.WithContext(ctx).Save(o)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
