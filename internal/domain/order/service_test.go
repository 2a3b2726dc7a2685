package order

import (
	"context"
	"testing"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderRepo struct {
	orders map[uuid.UUID]*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByPaymentSession(ctx context.Context, sessionID string) (*Order, error) {
	for _, o := range r.orders {
		if o.PaymentSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *fakeOrderRepo) FindPurchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindSales(ctx context.Context, sellerID uuid.UUID, limit int) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if o.SellerID == sellerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

// fakeListingService overrides only the methods the order flow touches.
type fakeListingService struct {
	listing.Service
	listings map[uuid.UUID]*listing.Listing
	sold     []uuid.UUID
}

func newFakeListingService() *fakeListingService {
	return &fakeListingService{listings: make(map[uuid.UUID]*listing.Listing)}
}

func (f *fakeListingService) GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, listing.ErrListingNotFound
	}
	return l, nil
}

func (f *fakeListingService) MarkSold(ctx context.Context, id uuid.UUID) error {
	f.sold = append(f.sold, id)
	return nil
}

type orderFixture struct {
	svc       Service
	repo      *fakeOrderRepo
	listings  *fakeListingService
	sellerID  uuid.UUID
	buyerID   uuid.UUID
	listingID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		repo:      newFakeOrderRepo(),
		listings:  newFakeListingService(),
		sellerID:  uuid.New(),
		buyerID:   uuid.New(),
		listingID: uuid.New(),
	}
	f.listings.listings[f.listingID] = &listing.Listing{
		ID:       f.listingID,
		SellerID: f.sellerID,
		Status:   listing.StatusActive,
		Price:    120,
	}
	f.svc = NewService(f.repo, f.listings, events.NewBus(), zap.NewNop())
	return f
}

func (f *orderFixture) buyNow(t *testing.T) *Order {
	t.Helper()
	o, err := f.svc.BuyNow(context.Background(), BuyNowInput{
		ListingID: f.listingID,
		BuyerID:   f.buyerID,
	})
	require.NoError(t, err)
	return o
}

func (f *orderFixture) paidOrder(t *testing.T) *Order {
	t.Helper()
	ctx := context.Background()
	o := f.buyNow(t)
	require.NoError(t, f.svc.AttachPaymentSession(ctx, o.ID, "sess_1"))
	paid, err := f.svc.MarkPaid(ctx, "sess_1", "pi_1")
	require.NoError(t, err)
	return paid
}

func TestBuyNow(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	o := f.buyNow(t)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 120.0, o.Amount)
	assert.Equal(t, f.sellerID, o.SellerID)

	t.Run("seller cannot buy their own listing", func(t *testing.T) {
		_, err := f.svc.BuyNow(ctx, BuyNowInput{ListingID: f.listingID, BuyerID: f.sellerID})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("inactive listings cannot be bought", func(t *testing.T) {
		f.listings.listings[f.listingID].Status = listing.StatusSold
		_, err := f.svc.BuyNow(ctx, BuyNowInput{ListingID: f.listingID, BuyerID: f.buyerID})
		assert.ErrorIs(t, err, listing.ErrNotActive)
	})
}

func TestCreateFromOffer(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	counter := 95.0
	accepted := &offer.Offer{
		ID:            uuid.New(),
		ListingID:     f.listingID,
		BuyerID:       f.buyerID,
		SellerID:      f.sellerID,
		Amount:        80,
		CounterAmount: &counter,
		Status:        offer.StatusAccepted,
	}
	require.NoError(t, f.svc.CreateFromOffer(ctx, accepted))

	purchases, err := f.svc.Purchases(ctx, f.buyerID, 50)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, 95.0, purchases[0].Amount)
	require.NotNil(t, purchases[0].OfferID)
	assert.Equal(t, accepted.ID, *purchases[0].OfferID)
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	o := f.buyNow(t)
	require.NoError(t, f.svc.AttachPaymentSession(ctx, o.ID, "sess_1"))

	paid, err := f.svc.MarkPaid(ctx, "sess_1", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.Equal(t, "pi_1", paid.PaymentIntentID)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, []uuid.UUID{f.listingID}, f.listings.sold)

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.MarkPaid(ctx, "sess_missing", "pi_2")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("webhook replay is rejected", func(t *testing.T) {
		_, err := f.svc.MarkPaid(ctx, "sess_1", "pi_1")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("paid orders ship then complete", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		shipped, err := f.svc.Ship(ctx, o.ID, f.sellerID, "USPS", "9400something")
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, shipped.Status)
		assert.NotNil(t, shipped.ShippedAt)

		completed, err := f.svc.Complete(ctx, o.ID, f.buyerID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, completed.Status)
	})

	t.Run("pending orders cannot ship", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.buyNow(t)

		_, err := f.svc.Ship(ctx, o.ID, f.sellerID, "USPS", "9400something")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("only the seller ships", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Ship(ctx, o.ID, f.buyerID, "USPS", "9400something")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("only the buyer completes", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Ship(ctx, o.ID, f.sellerID, "USPS", "9400something")
		require.NoError(t, err)

		_, err = f.svc.Complete(ctx, o.ID, f.sellerID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("completed orders are terminal", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Ship(ctx, o.ID, f.sellerID, "USPS", "9400something")
		require.NoError(t, err)
		_, err = f.svc.Complete(ctx, o.ID, f.buyerID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, o.ID, f.buyerID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = f.svc.Refund(ctx, o.ID, f.sellerID, 50)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("either participant cancels a pending order", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.buyNow(t)

		cancelled, err := f.svc.Cancel(ctx, o.ID, f.sellerID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, cancelled.Status)
	})

	t.Run("outsiders cannot cancel", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.buyNow(t)

		_, err := f.svc.Cancel(ctx, o.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("shipped orders cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Ship(ctx, o.ID, f.sellerID, "USPS", "9400something")
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, o.ID, f.buyerID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("seller refunds a paid order", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		refunded, err := f.svc.Refund(ctx, o.ID, f.sellerID, 120)
		require.NoError(t, err)
		assert.Equal(t, StatusRefunded, refunded.Status)
		assert.Equal(t, 120.0, refunded.RefundAmount)
	})

	t.Run("refund cannot exceed the order amount", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Refund(ctx, o.ID, f.sellerID, 500)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("buyer cannot refund", func(t *testing.T) {
		f := newOrderFixture(t)
		o := f.paidOrder(t)

		_, err := f.svc.Refund(ctx, o.ID, f.buyerID, 120)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestGetOrderVisibility(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	o := f.buyNow(t)

	_, err := f.svc.GetOrder(ctx, o.ID, f.buyerID)
	assert.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, o.ID, f.sellerID)
	assert.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, o.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}
