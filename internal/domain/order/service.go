package order

import (
	"context"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service interface {
	BuyNow(ctx context.Context, input BuyNowInput) (*Order, error)
	CreateFromOffer(ctx context.Context, o *offer.Offer) error
	GetOrder(ctx context.Context, id, userID uuid.UUID) (*Order, error)
	Purchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]Order, error)
	Sales(ctx context.Context, sellerID uuid.UUID, limit int) ([]Order, error)
	AttachPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error
	MarkPaid(ctx context.Context, sessionID, intentID string) (*Order, error)
	Ship(ctx context.Context, id, sellerID uuid.UUID, carrier, trackingNumber string) (*Order, error)
	Complete(ctx context.Context, id, buyerID uuid.UUID) (*Order, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*Order, error)
	Refund(ctx context.Context, id, sellerID uuid.UUID, amount float64) (*Order, error)
}

type BuyNowInput struct {
	ListingID       uuid.UUID      `json:"listing_id"`
	BuyerID         uuid.UUID      `json:"buyer_id"`
	ShippingAddress datatypes.JSON `json:"shipping_address"`
}

type service struct {
	repo     Repository
	listings listing.Service
	bus      *events.Bus
	logger   *zap.Logger
}

func NewService(repo Repository, listings listing.Service, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, listings: listings, bus: bus, logger: logger}
}

func (s *service) publishChange(o *Order, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventOrderChanged,
		Section:   events.SectionOrders,
		UserIDs:   []uuid.UUID{o.BuyerID, o.SellerID},
		EntityID:  o.ID,
		Details: map[string]interface{}{
			"action":    action,
			"status":    string(o.Status),
			"buyer_id":  o.BuyerID.String(),
			"seller_id": o.SellerID.String(),
		},
	})
}

// BuyNow creates a pending order at the listing's asking price.
func (s *service) BuyNow(ctx context.Context, input BuyNowInput) (*Order, error) {
	l, err := s.listings.GetListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if l.Status != listing.StatusActive {
		return nil, listing.ErrNotActive
	}
	if l.SellerID == input.BuyerID {
		return nil, ErrInvalidInput
	}

	o := &Order{
		ID:              uuid.New(),
		ListingID:       l.ID,
		BuyerID:         input.BuyerID,
		SellerID:        l.SellerID,
		Amount:          l.Price,
		Status:          StatusPending,
		ShippingAddress: input.ShippingAddress,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "order_created")
	return o, nil
}

// CreateFromOffer records an order for an accepted offer at its final
// negotiated amount.
func (s *service) CreateFromOffer(ctx context.Context, accepted *offer.Offer) error {
	offerID := accepted.ID
	o := &Order{
		ID:        uuid.New(),
		ListingID: accepted.ListingID,
		OfferID:   &offerID,
		BuyerID:   accepted.BuyerID,
		SellerID:  accepted.SellerID,
		Amount:    accepted.FinalAmount(),
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return err
	}

	s.publishChange(o, "order_created_from_offer")
	return nil
}

func (s *service) GetOrder(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return nil, ErrNotParticipant
	}
	return o, nil
}

func (s *service) Purchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]Order, error) {
	return s.repo.FindPurchases(ctx, buyerID, limit)
}

func (s *service) Sales(ctx context.Context, sellerID uuid.UUID, limit int) ([]Order, error) {
	return s.repo.FindSales(ctx, sellerID, limit)
}

func (s *service) AttachPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	o.PaymentSessionID = sessionID
	return s.repo.Update(ctx, o)
}

// MarkPaid is driven by the payment provider webhook once a checkout
// session settles. It also marks the underlying listing sold.
func (s *service) MarkPaid(ctx context.Context, sessionID, intentID string) (*Order, error) {
	o, err := s.repo.FindByPaymentSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canTransition(o.Status, StatusPaid) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	o.Status = StatusPaid
	o.PaymentIntentID = intentID
	o.PaidAt = &now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err := s.listings.MarkSold(ctx, o.ListingID); err != nil {
		s.logger.Error("Failed to mark listing sold",
			zap.String("listing_id", o.ListingID.String()),
			zap.Error(err))
	}

	s.publishChange(o, "order_paid")
	return o, nil
}

func (s *service) Ship(ctx context.Context, id, sellerID uuid.UUID, carrier, trackingNumber string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, ErrNotParticipant
	}
	if !canTransition(o.Status, StatusShipped) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	o.Status = StatusShipped
	o.TrackingCarrier = carrier
	o.TrackingNumber = trackingNumber
	o.ShippedAt = &now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "order_shipped")
	return o, nil
}

func (s *service) Complete(ctx context.Context, id, buyerID uuid.UUID) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, ErrNotParticipant
	}
	if !canTransition(o.Status, StatusCompleted) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	o.Status = StatusCompleted
	o.CompletedAt = &now

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "order_completed")
	return o, nil
}

func (s *service) Cancel(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return nil, ErrNotParticipant
	}
	if !canTransition(o.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	o.Status = StatusCancelled
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "order_cancelled")
	return o, nil
}

func (s *service) Refund(ctx context.Context, id, sellerID uuid.UUID, amount float64) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, ErrNotParticipant
	}
	if !canTransition(o.Status, StatusRefunded) {
		return nil, ErrInvalidTransition
	}
	if amount <= 0 || amount > o.Amount {
		return nil, ErrInvalidInput
	}

	o.Status = StatusRefunded
	o.RefundAmount = amount

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "order_refunded")
	return o, nil
}
