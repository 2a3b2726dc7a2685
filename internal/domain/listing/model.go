package listing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status represents the lifecycle state of a listing
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusSold     Status = "sold"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusSold:
		return true
	}
	return false
}

// Condition represents the physical grade of a card
type Condition string

const (
	ConditionMint       Condition = "mint"
	ConditionNearMint   Condition = "near_mint"
	ConditionExcellent  Condition = "excellent"
	ConditionGood       Condition = "good"
	ConditionLightPlay  Condition = "light_play"
	ConditionHeavyPlay  Condition = "heavy_play"
	ConditionDamaged    Condition = "damaged"
	ConditionUngraded   Condition = "ungraded"
)

func (c Condition) IsValid() bool {
	switch c {
	case ConditionMint, ConditionNearMint, ConditionExcellent, ConditionGood,
		ConditionLightPlay, ConditionHeavyPlay, ConditionDamaged, ConditionUngraded:
		return true
	}
	return false
}

// Listing represents a card posted for sale
type Listing struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	SellerID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Game        string         `gorm:"size:50;not null;index" json:"game"`
	CardName    string         `gorm:"size:255;index" json:"card_name"`
	SetName     string         `gorm:"size:255" json:"set_name"`
	Condition   Condition      `gorm:"type:varchar(20);not null;default:'ungraded'" json:"condition"`
	IsGraded    bool           `gorm:"not null;default:false" json:"is_graded"`
	GradeLevel  float64        `json:"grade_level,omitempty"`
	GradeCompany string        `gorm:"size:50" json:"grade_company,omitempty"`
	Price       float64        `gorm:"not null" json:"price"`
	Quantity    int            `gorm:"not null;default:1" json:"quantity"`
	ImageURLs   datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"image_urls"`
	City        string         `gorm:"size:100" json:"city"`
	State       string         `gorm:"size:50" json:"state"`
	Status      Status         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ViewCount   int            `gorm:"not null;default:0" json:"view_count"`
	ExpiresAt   *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	ArchivedAt  *time.Time     `json:"archived_at,omitempty"`
	SoldAt      *time.Time     `json:"sold_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:current_timestamp;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

var (
	ErrInvalidInput        = errors.New("invalid listing input")
	ErrNotOwner            = errors.New("listing does not belong to user")
	ErrNotActive           = errors.New("listing is not active")
	ErrListingLimitReached = errors.New("active listing limit reached for free tier")
)

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.Condition == "" {
		l.Condition = ConditionUngraded
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = time.Now()
	return l.Validate()
}

func (l *Listing) BeforeUpdate(tx *gorm.DB) error {
	l.UpdatedAt = time.Now()
	return nil
}

// Validate checks required listing fields
func (l *Listing) Validate() error {
	if l.Title == "" || l.Game == "" {
		return ErrInvalidInput
	}
	if l.Price < 0 || l.Quantity < 1 {
		return ErrInvalidInput
	}
	if !l.Status.IsValid() || !l.Condition.IsValid() {
		return ErrInvalidInput
	}
	if l.SellerID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// IsExpired reports whether the listing has passed its expiry time.
func (l *Listing) IsExpired() bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(time.Now())
}

// BrowseFilter narrows public listing searches
type BrowseFilter struct {
	Game      *string
	CardName  *string
	Condition *Condition
	MinPrice  *float64
	MaxPrice  *float64
	State     *string
	Search    *string
	Page      int
	PageSize  int
}
