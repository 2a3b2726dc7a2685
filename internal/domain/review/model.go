package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review represents buyer feedback left on a completed order
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	ReviewerID uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	SellerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"seller_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

var (
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrNotBuyer         = errors.New("only the buyer can review an order")
	ErrOrderNotComplete = errors.New("order is not completed")
	ErrAlreadyReviewed  = errors.New("order already reviewed")
)

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	return r.Validate()
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// SellerSummary aggregates a seller's review standing
type SellerSummary struct {
	SellerID      uuid.UUID `json:"seller_id"`
	ReviewCount   int64     `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
}
