package message

import (
	"context"
	"errors"
	"sort"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type Repository interface {
	CreateConversation(ctx context.Context, c *Conversation) error
	FindConversationByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	FindConversationBetween(ctx context.Context, a, b uuid.UUID, listingID *uuid.UUID) (*Conversation, error)
	FindConversationsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Conversation, error)
	UpdateConversation(ctx context.Context, c *Conversation) error
	CreateMessage(ctx context.Context, m *Message) error
	FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type messageRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *messageRepository) FindConversationByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var c Conversation
	result := r.db.WithContext(ctx).First(&c, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, result.Error
	}
	return &c, nil
}

func (r *messageRepository) FindConversationBetween(ctx context.Context, a, b uuid.UUID, listingID *uuid.UUID) (*Conversation, error) {
	query := r.db.WithContext(ctx).
		Where("(initiator_id = ? AND recipient_id = ?) OR (initiator_id = ? AND recipient_id = ?)", a, b, b, a)
	if listingID != nil {
		query = query.Where("listing_id = ?", *listingID)
	}

	var c Conversation
	result := query.First(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, result.Error
	}
	return &c, nil
}

// FindConversationsForUser runs one indexed query per participant role and
// merges the results, newest activity first.
func (r *messageRepository) FindConversationsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Conversation, error) {
	var initiated, received []Conversation

	if err := r.db.WithContext(ctx).
		Where("initiator_id = ?", userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&initiated).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&received).Error; err != nil {
		return nil, err
	}

	merged := append(initiated, received...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].LastMessageAt.After(merged[j].LastMessageAt)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (r *messageRepository) UpdateConversation(ctx context.Context, c *Conversation) error {
	result := r.db.WithContext(ctx).Save(c)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *messageRepository) CreateMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepository) FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	var messages []Message
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", gorm.Expr("current_timestamp"))
	return result.RowsAffected, result.Error
}

func (r *messageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
