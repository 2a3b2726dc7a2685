package wantedpost

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WantedPost represents a card a user is looking to buy
type WantedPost struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Game         string    `gorm:"size:50;not null;index" json:"game"`
	CardName     string    `gorm:"size:255;not null;index" json:"card_name"`
	SetName      string    `gorm:"size:255" json:"set_name"`
	Description  string    `gorm:"type:text" json:"description"`
	MinCondition string    `gorm:"size:20" json:"min_condition"`
	MaxPrice     float64   `json:"max_price"`
	City         string    `gorm:"size:100" json:"city"`
	State        string    `gorm:"size:50" json:"state"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (WantedPost) TableName() string {
	return "wanted_posts"
}

var (
	ErrInvalidInput = errors.New("invalid wanted post input")
	ErrNotOwner     = errors.New("wanted post does not belong to user")
)

func (w *WantedPost) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.CreatedAt = time.Now()
	w.UpdatedAt = time.Now()
	return w.Validate()
}

func (w *WantedPost) BeforeUpdate(tx *gorm.DB) error {
	w.UpdatedAt = time.Now()
	return nil
}

func (w *WantedPost) Validate() error {
	if w.Game == "" || w.CardName == "" {
		return ErrInvalidInput
	}
	if w.UserID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// BrowseFilter narrows public wanted post searches
type BrowseFilter struct {
	Game     *string
	CardName *string
	State    *string
	Page     int
	PageSize int
}
