package favorite

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite represents a listing a user has saved
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_listing" json:"user_id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_listing" json:"listing_id"`
	CreatedAt time.Time `gorm:"not null;default:current_timestamp;index" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

var (
	ErrAlreadyFavorited = errors.New("listing already favorited")
	ErrInvalidInput     = errors.New("invalid favorite input")
)

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	if f.UserID == uuid.Nil || f.ListingID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}
