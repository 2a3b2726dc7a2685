package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/broker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// DeliveryTopic is the broker topic notification delivery workers consume.
const DeliveryTopic = "notifications.deliver"

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	Unread(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CleanupOld(ctx context.Context, userID uuid.UUID, days int) (int64, error)
	HandleEvent(ev events.DashboardEvent)
	Subscribe(userID uuid.UUID) (<-chan *Notification, func(), error)
}

type CreateInput struct {
	UserID   uuid.UUID      `json:"user_id"`
	Type     Type           `json:"type"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	EntityID *uuid.UUID     `json:"entity_id,omitempty"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

type service struct {
	repo    Repository
	signals SignalRepository
	broker  *broker.MessageBroker
	bus     *events.Bus
	logger  *logrus.Logger
}

func NewService(repo Repository, signals SignalRepository, mb *broker.MessageBroker, bus *events.Bus, logger *logrus.Logger) Service {
	return &service{repo: repo, signals: signals, broker: mb, bus: bus, logger: logger}
}

func userTopic(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Notification, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid notification type: %s", input.Type)
	}

	n := &Notification{
		ID:       uuid.New(),
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Body:     input.Body,
		EntityID: input.EntityID,
		Metadata: input.Metadata,
		Status:   StatusUnread,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	// Hand off to the delivery worker; live subscribers get it from there.
	payload, err := json.Marshal(n)
	if err == nil {
		if err := s.broker.Publish(ctx, broker.Message{Topic: DeliveryTopic, Payload: payload}); err != nil {
			s.logger.WithError(err).Warn("Failed to enqueue notification for delivery")
		}
	}

	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventNotificationCreated,
		Section:   events.SectionNotifications,
		UserIDs:   []uuid.UUID{n.UserID},
		EntityID:  n.ID,
	})

	return n, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *service) Unread(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.GetUnreadByUserID(ctx, userID, limit, offset)
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return &ErrNotFoundType{Message: "notification not found"}
	}

	if err := s.repo.MarkRead(ctx, id); err != nil {
		return err
	}

	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventNotificationCreated,
		Section:   events.SectionNotifications,
		UserIDs:   []uuid.UUID{userID},
		EntityID:  id,
		Details:   map[string]interface{}{"action": "notification_read"},
	})
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.bus.Publish(events.DashboardEvent{
			EventType: events.EventNotificationCreated,
			Section:   events.SectionNotifications,
			UserIDs:   []uuid.UUID{userID},
			Details:   map[string]interface{}{"action": "notifications_read_all"},
		})
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return &ErrNotFoundType{Message: "notification not found"}
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CleanupOld(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, userID, days)
}

func (s *service) Subscribe(userID uuid.UUID) (<-chan *Notification, func(), error) {
	return s.signals.Subscribe(userTopic(userID))
}

func parseUUID(details map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := details[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// HandleEvent translates domain events into stored notifications. Wired as
// a bus forwarder during startup.
func (s *service) HandleEvent(ev events.DashboardEvent) {
	action, _ := ev.Details["action"].(string)

	var (
		recipient uuid.UUID
		ok        bool
		nType     Type
		title     string
	)

	switch ev.EventType {
	case events.EventOfferChanged:
		switch action {
		case "offer_created":
			recipient, ok = parseUUID(ev.Details, "seller_id")
			nType, title = TypeOfferReceived, "You received a new offer"
		case "offer_accepted":
			recipient, ok = parseUUID(ev.Details, "buyer_id")
			nType, title = TypeOfferUpdated, "Your offer was accepted"
		case "offer_declined":
			recipient, ok = parseUUID(ev.Details, "buyer_id")
			nType, title = TypeOfferUpdated, "Your offer was declined"
		case "offer_countered":
			recipient, ok = parseUUID(ev.Details, "buyer_id")
			nType, title = TypeOfferUpdated, "The seller countered your offer"
		case "offer_expired":
			recipient, ok = parseUUID(ev.Details, "buyer_id")
			nType, title = TypeOfferUpdated, "Your offer expired"
		}
	case events.EventOrderChanged:
		switch action {
		case "order_created", "order_created_from_offer", "order_paid":
			recipient, ok = parseUUID(ev.Details, "seller_id")
			nType, title = TypeOrderUpdate, "Order update: "+action
		case "order_shipped", "order_cancelled", "order_refunded":
			recipient, ok = parseUUID(ev.Details, "buyer_id")
			nType, title = TypeOrderUpdate, "Order update: "+action
		case "order_completed":
			recipient, ok = parseUUID(ev.Details, "seller_id")
			nType, title = TypeOrderUpdate, "Order completed"
		}
	case events.EventMessageReceived:
		if action != "" {
			return // read receipts do not notify
		}
		sender, senderOK := parseUUID(ev.Details, "sender_id")
		if !senderOK {
			return
		}
		for _, id := range ev.UserIDs {
			if id != sender {
				recipient, ok = id, true
				break
			}
		}
		nType, title = TypeMessage, "You have a new message"
	case events.EventReviewCreated:
		recipient, ok = parseUUID(ev.Details, "seller_id")
		nType, title = TypeReviewReceived, "You received a new review"
	case events.EventListingChanged:
		if action != "listing_expired" || len(ev.UserIDs) == 0 {
			return
		}
		recipient, ok = ev.UserIDs[0], true
		nType, title = TypeListingExpired, "One of your listings expired"
	default:
		return
	}

	if !ok || recipient == uuid.Nil {
		return
	}

	entityID := ev.EntityID
	if _, err := s.Create(context.Background(), CreateInput{
		UserID:   recipient,
		Type:     nType,
		Title:    title,
		EntityID: &entityID,
	}); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": ev.EventType,
			"action":     action,
		}).Error("Failed to create notification from event")
	}
}

// StartDeliveryWorker consumes queued notifications from the broker and fans
// them out to live per-user signal subscribers. Blocks until ctx is done.
func StartDeliveryWorker(ctx context.Context, mb *broker.MessageBroker, signals SignalRepository, logger *logrus.Logger) error {
	ch, cancel, err := mb.Subscribe(DeliveryTopic)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}
			var n Notification
			if err := json.Unmarshal(msg.Payload, &n); err != nil {
				logger.WithError(err).Warn("Dropping malformed notification payload")
				continue
			}
			if err := signals.Publish(userTopic(n.UserID), &n); err != nil {
				logger.WithError(err).Warn("Failed to signal notification")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
