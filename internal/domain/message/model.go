package message

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation represents a message thread between two users, optionally
// anchored to a listing.
type Conversation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	InitiatorID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"initiator_id"`
	RecipientID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ListingID          *uuid.UUID `gorm:"type:uuid;index" json:"listing_id,omitempty"`
	LastMessagePreview string     `gorm:"size:255" json:"last_message_preview"`
	LastMessageAt      time.Time  `gorm:"not null;index" json:"last_message_at"`
	CreatedAt          time.Time  `gorm:"not null;default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null;default:current_timestamp;autoUpdateTime" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message represents a single message inside a conversation
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:current_timestamp;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

var (
	ErrInvalidInput   = errors.New("invalid message input")
	ErrNotParticipant = errors.New("conversation does not involve user")
	ErrSelfMessage    = errors.New("cannot message yourself")
)

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	if m.Body == "" {
		return ErrInvalidInput
	}
	return nil
}

// Involves reports whether the user participates in the conversation.
func (c *Conversation) Involves(userID uuid.UUID) bool {
	return c.InitiatorID == userID || c.RecipientID == userID
}

// OtherParticipant returns the counterpart of the given user.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.InitiatorID == userID {
		return c.RecipientID
	}
	return c.InitiatorID
}
