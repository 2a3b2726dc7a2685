package message

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMessageRepo struct {
	conversations map[uuid.UUID]*Conversation
	messages      []*Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{conversations: make(map[uuid.UUID]*Conversation)}
}

func (r *fakeMessageRepo) CreateConversation(ctx context.Context, c *Conversation) error {
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	cp := *c
	r.conversations[c.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) FindConversationByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeMessageRepo) FindConversationBetween(ctx context.Context, a, b uuid.UUID, listingID *uuid.UUID) (*Conversation, error) {
	for _, c := range r.conversations {
		pair := (c.InitiatorID == a && c.RecipientID == b) || (c.InitiatorID == b && c.RecipientID == a)
		if !pair {
			continue
		}
		if listingID != nil && (c.ListingID == nil || *c.ListingID != *listingID) {
			continue
		}
		cp := *c
		return &cp, nil
	}
	return nil, ErrConversationNotFound
}

func (r *fakeMessageRepo) FindConversationsForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Conversation, error) {
	var out []Conversation
	for _, c := range r.conversations {
		if c.Involves(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateConversation(ctx context.Context, c *Conversation) error {
	if _, ok := r.conversations[c.ID]; !ok {
		return ErrConversationNotFound
	}
	cp := *c
	r.conversations[c.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) CreateMessage(ctx context.Context, m *Message) error {
	cp := *m
	cp.CreatedAt = time.Now()
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	var out []Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	now := time.Now()
	var updated int64
	for _, m := range r.messages {
		if m.ConversationID == conversationID && m.RecipientID == readerID && m.ReadAt == nil {
			m.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.RecipientID == userID && m.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func newMessageService(repo Repository) Service {
	return NewService(repo, events.NewBus(), zap.NewNop())
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	alex := uuid.New()
	sam := uuid.New()

	t.Run("creates a conversation on first contact and reuses it after", func(t *testing.T) {
		repo := newFakeMessageRepo()
		svc := newMessageService(repo)

		first, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: "Is this still available?"})
		require.NoError(t, err)
		assert.Len(t, repo.conversations, 1)

		reply, err := svc.SendMessage(ctx, SendMessageInput{SenderID: sam, RecipientID: alex, Body: "It is"})
		require.NoError(t, err)
		assert.Len(t, repo.conversations, 1)
		assert.Equal(t, first.ConversationID, reply.ConversationID)
	})

	t.Run("listing-anchored threads stay separate", func(t *testing.T) {
		repo := newFakeMessageRepo()
		svc := newMessageService(repo)

		listingID := uuid.New()
		_, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: "general chat"})
		require.NoError(t, err)
		_, err = svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, ListingID: &listingID, Body: "about the Charizard"})
		require.NoError(t, err)

		assert.Len(t, repo.conversations, 2)
	})

	t.Run("updates the conversation preview, truncated", func(t *testing.T) {
		repo := newFakeMessageRepo()
		svc := newMessageService(repo)

		long := strings.Repeat("x", 300)
		m, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: long})
		require.NoError(t, err)

		conv := repo.conversations[m.ConversationID]
		assert.Len(t, conv.LastMessagePreview, previewLength)
	})

	t.Run("rejects empty bodies and self messages", func(t *testing.T) {
		repo := newFakeMessageRepo()
		svc := newMessageService(repo)

		_, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: ""})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: alex, Body: "hi"})
		assert.ErrorIs(t, err, ErrSelfMessage)
	})
}

func TestConversationMessagesAuthorization(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	svc := newMessageService(repo)
	alex := uuid.New()
	sam := uuid.New()

	m, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: "hello"})
	require.NoError(t, err)

	msgs, err := svc.ConversationMessages(ctx, m.ConversationID, sam, 100)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = svc.ConversationMessages(ctx, m.ConversationID, uuid.New(), 100)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.ConversationMessages(ctx, uuid.New(), alex, 100)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMarkConversationRead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	svc := newMessageService(repo)
	alex := uuid.New()
	sam := uuid.New()

	m, err := svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: "one"})
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, SendMessageInput{SenderID: alex, RecipientID: sam, Body: "two"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, sam)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkConversationRead(ctx, m.ConversationID, sam))

	count, err = svc.UnreadCount(ctx, sam)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// The sender's own messages were never unread for them.
	count, err = svc.UnreadCount(ctx, alex)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = svc.MarkConversationRead(ctx, m.ConversationID, uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestConversationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMessageRepo()
	svc := newMessageService(repo)
	alex := uuid.New()

	older := &Conversation{ID: uuid.New(), InitiatorID: alex, RecipientID: uuid.New(), LastMessageAt: time.Now().Add(-time.Hour)}
	newer := &Conversation{ID: uuid.New(), InitiatorID: uuid.New(), RecipientID: alex, LastMessageAt: time.Now()}
	require.NoError(t, repo.CreateConversation(ctx, older))
	require.NoError(t, repo.CreateConversation(ctx, newer))

	convs, err := svc.Conversations(ctx, alex, 10)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, newer.ID, convs[0].ID)
	assert.Equal(t, older.ID, convs[1].ID)
}
