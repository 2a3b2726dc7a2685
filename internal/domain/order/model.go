package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status represents the fulfillment state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Order represents a completed or in-flight purchase
type Order struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ListingID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"listing_id"`
	OfferID          *uuid.UUID     `gorm:"type:uuid;index" json:"offer_id,omitempty"`
	BuyerID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	Amount           float64        `gorm:"not null" json:"amount"`
	Status           Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentSessionID string         `gorm:"size:255;index" json:"payment_session_id,omitempty"`
	PaymentIntentID  string         `gorm:"size:255" json:"payment_intent_id,omitempty"`
	RefundAmount     float64        `json:"refund_amount,omitempty"`
	TrackingNumber   string         `gorm:"size:100" json:"tracking_number,omitempty"`
	TrackingCarrier  string         `gorm:"size:50" json:"tracking_carrier,omitempty"`
	ShippingAddress  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"shipping_address"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	ShippedAt        *time.Time     `json:"shipped_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

var (
	ErrInvalidInput      = errors.New("invalid order input")
	ErrNotParticipant    = errors.New("order does not involve user")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	return o.Validate()
}

func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) Validate() error {
	if o.Amount <= 0 {
		return ErrInvalidInput
	}
	if !o.Status.IsValid() {
		return ErrInvalidInput
	}
	if o.BuyerID == uuid.Nil || o.SellerID == uuid.Nil || o.ListingID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// canTransition enumerates the legal status moves.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid:
		return to == StatusShipped || to == StatusRefunded || to == StatusCancelled
	case StatusShipped:
		return to == StatusCompleted || to == StatusRefunded
	}
	return false
}
