package offer

import (
	"context"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const offerLifetime = 7 * 24 * time.Hour

// OrderCreator turns an accepted offer into an order. Implemented by the
// order service; kept as an interface here to break the package cycle.
type OrderCreator interface {
	CreateFromOffer(ctx context.Context, o *Offer) error
}

type Service interface {
	MakeOffer(ctx context.Context, input MakeOfferInput) (*Offer, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error)
	Received(ctx context.Context, sellerID uuid.UUID, limit int) ([]Offer, error)
	Sent(ctx context.Context, buyerID uuid.UUID, limit int) ([]Offer, error)
	AcceptOffer(ctx context.Context, id, userID uuid.UUID) (*Offer, error)
	DeclineOffer(ctx context.Context, id, sellerID uuid.UUID) (*Offer, error)
	CounterOffer(ctx context.Context, id, sellerID uuid.UUID, amount float64) (*Offer, error)
	ClearOffer(ctx context.Context, id, userID uuid.UUID) error
	ExpireOffers(ctx context.Context, batchSize int) (int, error)
}

type MakeOfferInput struct {
	ListingID uuid.UUID `json:"listing_id"`
	BuyerID   uuid.UUID `json:"buyer_id"`
	Amount    float64   `json:"amount"`
}

type service struct {
	repo     Repository
	listings listing.Repository
	orders   OrderCreator
	bus      *events.Bus
	logger   *zap.Logger
}

func NewService(repo Repository, listings listing.Repository, bus *events.Bus, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{service{repo: repo, listings: listings, bus: bus, logger: logger}}
}

// ServiceImpl exposes SetOrderCreator for late binding during wiring, since
// the order service itself depends on offers.
type ServiceImpl struct {
	service
}

func (s *ServiceImpl) SetOrderCreator(oc OrderCreator) {
	s.orders = oc
}

func (s *service) publishChange(o *Offer, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventOfferChanged,
		Section:   events.SectionOffers,
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

func (s *service) MakeOffer(ctx context.Context, input MakeOfferInput) (*Offer, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidInput
	}

	l, err := s.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if l.Status != listing.StatusActive {
		return nil, listing.ErrNotActive
	}
	if l.SellerID == input.BuyerID {
		return nil, ErrOwnListing
	}

	expiresAt := time.Now().Add(offerLifetime)
	o := &Offer{
		ID:        uuid.New(),
		ListingID: input.ListingID,
		BuyerID:   input.BuyerID,
		SellerID:  l.SellerID,
		Amount:    input.Amount,
		Status:    StatusPending,
		ExpiresAt: &expiresAt,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "offer_created")
	return o, nil
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*Offer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Received(ctx context.Context, sellerID uuid.UUID, limit int) ([]Offer, error) {
	return s.repo.FindReceived(ctx, sellerID, limit)
}

func (s *service) Sent(ctx context.Context, buyerID uuid.UUID, limit int) ([]Offer, error) {
	return s.repo.FindSent(ctx, buyerID, limit)
}

// AcceptOffer resolves an offer in favor of the current price. The seller
// accepts a pending offer; the buyer accepts a countered one.
func (s *service) AcceptOffer(ctx context.Context, id, userID uuid.UUID) (*Offer, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, ErrAlreadyResolved
	}

	switch o.Status {
	case StatusPending:
		if o.SellerID != userID {
			return nil, ErrNotParticipant
		}
	case StatusCountered:
		if o.BuyerID != userID {
			return nil, ErrNotParticipant
		}
	default:
		return nil, ErrAlreadyResolved
	}

	o.Status = StatusAccepted
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if s.orders != nil {
		if err := s.orders.CreateFromOffer(ctx, o); err != nil {
			s.logger.Error("Failed to create order from accepted offer",
				zap.String("offer_id", o.ID.String()),
				zap.Error(err))
		}
	}

	s.publishChange(o, "offer_accepted")
	return o, nil
}

func (s *service) DeclineOffer(ctx context.Context, id, sellerID uuid.UUID) (*Offer, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID && o.BuyerID != sellerID {
		return nil, ErrNotParticipant
	}
	if o.Status.Terminal() {
		return nil, ErrAlreadyResolved
	}

	o.Status = StatusDeclined
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "offer_declined")
	return o, nil
}

func (s *service) CounterOffer(ctx context.Context, id, sellerID uuid.UUID, amount float64) (*Offer, error) {
	if amount <= 0 {
		return nil, ErrInvalidInput
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.SellerID != sellerID {
		return nil, ErrNotParticipant
	}
	if o.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	o.Status = StatusCountered
	o.CounterAmount = &amount
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publishChange(o, "offer_countered")
	return o, nil
}

// ClearOffer hides a resolved offer from the user's dashboard.
func (s *service) ClearOffer(ctx context.Context, id, userID uuid.UUID) error {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if o.SellerID != userID && o.BuyerID != userID {
		return ErrNotParticipant
	}
	if !o.Status.Terminal() {
		return ErrInvalidInput
	}

	o.Cleared = true
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}

	s.publishChange(o, "offer_cleared")
	return nil
}

// ExpireOffers marks pending and countered offers past their expiry. Called
// periodically by the scheduler.
func (s *service) ExpireOffers(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	expired, err := s.repo.FindExpired(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range expired {
		o := &expired[i]
		o.Status = StatusExpired

		if err := s.repo.Update(ctx, o); err != nil {
			s.logger.Error("Failed to expire offer",
				zap.String("offer_id", o.ID.String()),
				zap.Error(err))
			continue
		}

		count++
		s.publishChange(o, "offer_expired")
	}

	return count, nil
}
