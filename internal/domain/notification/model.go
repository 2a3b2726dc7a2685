package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Type categorizes marketplace notifications
type Type string

const (
	TypeOfferReceived  Type = "offer_received"
	TypeOfferUpdated   Type = "offer_updated"
	TypeOrderUpdate    Type = "order_update"
	TypeMessage        Type = "message"
	TypeReviewReceived Type = "review_received"
	TypeListingExpired Type = "listing_expired"
	TypeSystem         Type = "system"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeOfferReceived, TypeOfferUpdated, TypeOrderUpdate, TypeMessage,
		TypeReviewReceived, TypeListingExpired, TypeSystem:
		return true
	}
	return false
}

// Status tracks whether a notification has been seen
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Notification represents a single in-app notification
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      Type           `gorm:"type:varchar(30);not null;index" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	EntityID  *uuid.UUID     `gorm:"type:uuid" json:"entity_id,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	Status    Status         `gorm:"type:varchar(10);not null;default:'unread';index" json:"status"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:current_timestamp;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = StatusUnread
	}
	n.CreatedAt = time.Now()
	return nil
}

// ErrNotFoundType is returned when a notification cannot be located
type ErrNotFoundType struct {
	Message string
}

func (e *ErrNotFoundType) Error() string {
	return e.Message
}
