package notification

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/broker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *Notification) error {
	cp := *n
	cp.CreatedAt = time.Now()
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, &ErrNotFoundType{Message: "notification not found"}
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) GetUnreadByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var out []*Notification
	for _, n := range r.notifications {
		if n.UserID == userID && n.Status == StatusUnread {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.Status == StatusUnread {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	n, ok := r.notifications[id]
	if !ok {
		return &ErrNotFoundType{Message: "notification not found"}
	}
	now := time.Now()
	n.Status = StatusRead
	n.ReadAt = &now
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var updated int64
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && n.Status == StatusUnread {
			n.Status = StatusRead
			n.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.notifications[id]; !ok {
		return &ErrNotFoundType{Message: "notification not found"}
	}
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var deleted int64
	for id, n := range r.notifications {
		if n.UserID == userID && n.CreatedAt.Before(cutoff) {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

type notificationFixture struct {
	repo    *fakeNotificationRepo
	signals SignalRepository
	broker  *broker.MessageBroker
	bus     *events.Bus
	svc     Service
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	repo := newFakeNotificationRepo()
	signals := NewSignalRepository(8)
	mb := broker.NewMessageBroker(8)
	bus := events.NewBus()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &notificationFixture{
		repo:    repo,
		signals: signals,
		broker:  mb,
		bus:     bus,
		svc:     NewService(repo, signals, mb, bus, log),
	}
}

func TestCreateNotification(t *testing.T) {
	ctx := context.Background()
	f := newNotificationFixture(t)
	userID := uuid.New()

	received := make(chan events.DashboardEvent, 4)
	cancel := f.bus.Subscribe(userID, func(ev events.DashboardEvent) {
		received <- ev
	})
	defer cancel()

	n, err := f.svc.Create(ctx, CreateInput{
		UserID: userID,
		Type:   TypeOfferReceived,
		Title:  "You received a new offer",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUnread, n.Status)

	count, err := f.svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	select {
	case ev := <-received:
		assert.Equal(t, events.SectionNotifications, ev.Section)
		assert.Equal(t, events.EventNotificationCreated, ev.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification event")
	}

	t.Run("invalid type", func(t *testing.T) {
		_, err := f.svc.Create(ctx, CreateInput{UserID: userID, Type: Type("bogus")})
		assert.Error(t, err)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	f := newNotificationFixture(t)
	userID := uuid.New()

	n, err := f.svc.Create(ctx, CreateInput{
		UserID: userID,
		Type:   TypeMessage,
		Title:  "You have a new message",
	})
	require.NoError(t, err)

	t.Run("foreign user", func(t *testing.T) {
		err := f.svc.MarkRead(ctx, n.ID, uuid.New())
		var notFound *ErrNotFoundType
		assert.ErrorAs(t, err, &notFound)
	})

	require.NoError(t, f.svc.MarkRead(ctx, n.ID, userID))

	count, err := f.svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	f := newNotificationFixture(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, CreateInput{
			UserID: userID,
			Type:   TypeOrderUpdate,
			Title:  "Order update",
		})
		require.NoError(t, err)
	}

	updated, err := f.svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = f.svc.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, updated, "a second pass finds nothing unread")
}

func TestHandleEventCreatesNotificationRows(t *testing.T) {
	ctx := context.Background()
	f := newNotificationFixture(t)
	sellerID := uuid.New()
	buyerID := uuid.New()

	f.svc.HandleEvent(events.DashboardEvent{
		EventType: events.EventOfferChanged,
		Section:   events.SectionOffers,
		UserIDs:   []uuid.UUID{sellerID, buyerID},
		EntityID:  uuid.New(),
		Details: map[string]interface{}{
			"action":    "offer_created",
			"seller_id": sellerID.String(),
			"buyer_id":  buyerID.String(),
		},
	})

	rows, err := f.svc.List(ctx, sellerID, 50, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TypeOfferReceived, rows[0].Type)

	buyerRows, err := f.svc.List(ctx, buyerID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, buyerRows, "a new offer notifies the seller only")
}

func TestHandleEventMessageNotifiesRecipientOnly(t *testing.T) {
	ctx := context.Background()
	f := newNotificationFixture(t)
	senderID := uuid.New()
	recipientID := uuid.New()

	f.svc.HandleEvent(events.DashboardEvent{
		EventType: events.EventMessageReceived,
		Section:   events.SectionMessages,
		UserIDs:   []uuid.UUID{senderID, recipientID},
		EntityID:  uuid.New(),
		Details: map[string]interface{}{
			"sender_id": senderID.String(),
		},
	})

	rows, err := f.svc.List(ctx, recipientID, 50, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TypeMessage, rows[0].Type)

	senderRows, err := f.svc.List(ctx, senderID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, senderRows)

	// Read receipts carry an action and never create rows.
	f.svc.HandleEvent(events.DashboardEvent{
		EventType: events.EventMessageReceived,
		Section:   events.SectionMessages,
		UserIDs:   []uuid.UUID{senderID, recipientID},
		Details: map[string]interface{}{
			"action":    "messages_read",
			"sender_id": senderID.String(),
		},
	})

	rows, err = f.svc.List(ctx, recipientID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDeliveryWorkerSignalsSubscribers(t *testing.T) {
	f := newNotificationFixture(t)
	userID := uuid.New()

	ctx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- StartDeliveryWorker(ctx, f.broker, f.signals, logrus.New())
	}()

	ch, cancel, err := f.svc.Subscribe(userID)
	require.NoError(t, err)
	defer cancel()

	// The worker's broker subscription must be live before publishing.
	time.Sleep(50 * time.Millisecond)

	created, err := f.svc.Create(context.Background(), CreateInput{
		UserID: userID,
		Type:   TypeReviewReceived,
		Title:  "You received a new review",
	})
	require.NoError(t, err)

	select {
	case n := <-ch:
		assert.Equal(t, created.ID, n.ID)
		assert.Equal(t, TypeReviewReceived, n.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered notification")
	}

	cancelWorker()
	select {
	case err := <-workerDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
