package message

import (
	"context"
	"errors"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const previewLength = 120

type Service interface {
	SendMessage(ctx context.Context, input SendMessageInput) (*Message, error)
	Conversations(ctx context.Context, userID uuid.UUID, limit int) ([]Conversation, error)
	ConversationMessages(ctx context.Context, conversationID, userID uuid.UUID, limit int) ([]Message, error)
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type SendMessageInput struct {
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	ListingID   *uuid.UUID `json:"listing_id,omitempty"`
	Body        string     `json:"body"`
}

type service struct {
	repo   Repository
	bus    *events.Bus
	logger *zap.Logger
}

func NewService(repo Repository, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, bus: bus, logger: logger}
}

// SendMessage appends to the existing conversation between the two users,
// creating one when none exists yet.
func (s *service) SendMessage(ctx context.Context, input SendMessageInput) (*Message, error) {
	if input.Body == "" {
		return nil, ErrInvalidInput
	}
	if input.SenderID == input.RecipientID {
		return nil, ErrSelfMessage
	}

	conv, err := s.repo.FindConversationBetween(ctx, input.SenderID, input.RecipientID, input.ListingID)
	if err != nil {
		if !errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		conv = &Conversation{
			ID:          uuid.New(),
			InitiatorID: input.SenderID,
			RecipientID: input.RecipientID,
			ListingID:   input.ListingID,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return nil, err
		}
	}

	m := &Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       input.SenderID,
		RecipientID:    input.RecipientID,
		Body:           input.Body,
	}

	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	preview := input.Body
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	conv.LastMessagePreview = preview
	conv.LastMessageAt = time.Now()
	if err := s.repo.UpdateConversation(ctx, conv); err != nil {
		s.logger.Warn("Failed to update conversation preview",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err))
	}

	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventMessageReceived,
		Section:   events.SectionMessages,
		UserIDs:   []uuid.UUID{input.SenderID, input.RecipientID},
		EntityID:  m.ID,
		Details: map[string]interface{}{
			"conversation_id": conv.ID.String(),
			"sender_id":       input.SenderID.String(),
		},
	})

	return m, nil
}

func (s *service) Conversations(ctx context.Context, userID uuid.UUID, limit int) ([]Conversation, error) {
	return s.repo.FindConversationsForUser(ctx, userID, limit)
}

func (s *service) ConversationMessages(ctx context.Context, conversationID, userID uuid.UUID, limit int) ([]Message, error) {
	conv, err := s.repo.FindConversationByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(userID) {
		return nil, ErrNotParticipant
	}
	return s.repo.FindMessages(ctx, conversationID, limit)
}

func (s *service) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	conv, err := s.repo.FindConversationByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.Involves(userID) {
		return ErrNotParticipant
	}

	updated, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	if updated > 0 {
		s.bus.Publish(events.DashboardEvent{
			EventType: events.EventMessageReceived,
			Section:   events.SectionMessages,
			UserIDs:   []uuid.UUID{userID},
			EntityID:  conversationID,
			Details:   map[string]interface{}{"action": "conversation_read"},
		})
	}

	return nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
