package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountTier represents the subscription level of an account
type AccountTier string

const (
	TierFree    AccountTier = "free"
	TierPremium AccountTier = "premium"
)

func (t AccountTier) IsValid() bool {
	switch t {
	case TierFree, TierPremium:
		return true
	}
	return false
}

// User represents a marketplace account
type User struct {
	ID               uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username         string      `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email            string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash     string      `gorm:"size:255;not null" json:"-"`
	DisplayName      string      `gorm:"size:100" json:"display_name"`
	AvatarURL        string      `gorm:"size:512" json:"avatar_url"`
	Bio              string      `gorm:"type:text" json:"bio"`
	Location         string      `gorm:"size:100" json:"location"`
	Tier             AccountTier `gorm:"type:varchar(20);not null;default:'free'" json:"tier"`
	PremiumExpiresAt *time.Time  `json:"premium_expires_at,omitempty"`
	RatingAverage    float64     `gorm:"default:0" json:"rating_average"`
	RatingCount      int         `gorm:"default:0" json:"rating_count"`
	IsDeleted        bool        `gorm:"not null;default:false;index" json:"-"`
	CreatedAt        time.Time   `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Common errors
var (
	ErrInvalidInput       = errors.New("invalid user input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// BeforeCreate assigns an ID and timestamps before insert
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Tier == "" {
		u.Tier = TierFree
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// Validate checks required account fields
func (u *User) Validate() error {
	if u.Username == "" || u.Email == "" || u.PasswordHash == "" {
		return ErrInvalidInput
	}
	if !u.Tier.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// IsPremium reports whether the account currently has an active premium
// subscription. An expired premium tier counts as free.
func (u *User) IsPremium() bool {
	if u.Tier != TierPremium {
		return false
	}
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
