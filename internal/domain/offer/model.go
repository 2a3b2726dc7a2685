package offer

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the negotiation state of an offer
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
	StatusCountered Status = "countered"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusExpired, StatusCountered:
		return true
	}
	return false
}

// Terminal reports whether the offer can no longer change state.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// Offer represents a price negotiation on a listing
type Offer struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ListingID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"listing_id"`
	BuyerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"seller_id"`
	Amount        float64    `gorm:"not null" json:"amount"`
	CounterAmount *float64   `json:"counter_amount,omitempty"`
	Status        Status     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Cleared       bool       `gorm:"not null;default:false;index" json:"cleared"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

var (
	ErrInvalidInput    = errors.New("invalid offer input")
	ErrOwnListing      = errors.New("cannot make an offer on your own listing")
	ErrNotParticipant  = errors.New("offer does not involve user")
	ErrAlreadyResolved = errors.New("offer already resolved")
)

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
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

func (o *Offer) BeforeUpdate(tx *gorm.DB) error {
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Offer) Validate() error {
	if o.Amount <= 0 {
		return ErrInvalidInput
	}
	if !o.Status.IsValid() {
		return ErrInvalidInput
	}
	if o.BuyerID == uuid.Nil || o.SellerID == uuid.Nil || o.ListingID == uuid.Nil {
		return ErrInvalidInput
	}
	if o.BuyerID == o.SellerID {
		return ErrOwnListing
	}
	return nil
}

// FinalAmount returns the price the offer settles at: the counter amount
// when one was made, the original amount otherwise.
func (o *Offer) FinalAmount() float64 {
	if o.CounterAmount != nil {
		return *o.CounterAmount
	}
	return o.Amount
}
