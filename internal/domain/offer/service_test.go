package offer

import (
	"context"
	"testing"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOfferRepo struct {
	offers map[uuid.UUID]*Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[uuid.UUID]*Offer)}
}

func (r *fakeOfferRepo) Create(ctx context.Context, o *Offer) error {
	cp := *o
	r.offers[o.ID] = &cp
	return nil
}

func (r *fakeOfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOfferRepo) FindReceived(ctx context.Context, sellerID uuid.UUID, limit int) ([]Offer, error) {
	var out []Offer
	for _, o := range r.offers {
		if o.SellerID == sellerID && !o.Cleared {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) FindSent(ctx context.Context, buyerID uuid.UUID, limit int) ([]Offer, error) {
	var out []Offer
	for _, o := range r.offers {
		if o.BuyerID == buyerID && !o.Cleared {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) FindPendingForListing(ctx context.Context, listingID uuid.UUID) ([]Offer, error) {
	var out []Offer
	for _, o := range r.offers {
		if o.ListingID == listingID && (o.Status == StatusPending || o.Status == StatusCountered) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOfferRepo) Update(ctx context.Context, o *Offer) error {
	if _, ok := r.offers[o.ID]; !ok {
		return ErrOfferNotFound
	}
	cp := *o
	r.offers[o.ID] = &cp
	return nil
}

func (r *fakeOfferRepo) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Offer, error) {
	var out []Offer
	for _, o := range r.offers {
		if (o.Status == StatusPending || o.Status == StatusCountered) &&
			o.ExpiresAt != nil && o.ExpiresAt.Before(cutoff) {
			out = append(out, *o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeListingRepo struct {
	listings map[uuid.UUID]*listing.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[uuid.UUID]*listing.Listing)}
}

func (r *fakeListingRepo) Create(ctx context.Context, l *listing.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *fakeListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, listing.ErrListingNotFound
	}
	return l, nil
}

func (r *fakeListingRepo) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]listing.Listing, error) {
	return nil, nil
}

func (r *fakeListingRepo) FindArchivedBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]listing.Listing, error) {
	return nil, nil
}

func (r *fakeListingRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]listing.Listing, error) {
	return nil, nil
}

func (r *fakeListingRepo) Browse(ctx context.Context, filter listing.BrowseFilter) ([]listing.Listing, int64, error) {
	return nil, 0, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, l *listing.Listing) error {
	r.listings[l.ID] = l
	return nil
}

func (r *fakeListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.listings, id)
	return nil
}

func (r *fakeListingRepo) CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *fakeListingRepo) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]listing.Listing, error) {
	return nil, nil
}

func (r *fakeListingRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeOrderCreator struct {
	created []*Offer
}

func (f *fakeOrderCreator) CreateFromOffer(ctx context.Context, o *Offer) error {
	f.created = append(f.created, o)
	return nil
}

type testFixture struct {
	svc       *ServiceImpl
	repo      *fakeOfferRepo
	listings  *fakeListingRepo
	orders    *fakeOrderCreator
	bus       *events.Bus
	sellerID  uuid.UUID
	buyerID   uuid.UUID
	listingID uuid.UUID
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		repo:      newFakeOfferRepo(),
		listings:  newFakeListingRepo(),
		orders:    &fakeOrderCreator{},
		bus:       events.NewBus(),
		sellerID:  uuid.New(),
		buyerID:   uuid.New(),
		listingID: uuid.New(),
	}
	f.listings.listings[f.listingID] = &listing.Listing{
		ID:       f.listingID,
		SellerID: f.sellerID,
		Status:   listing.StatusActive,
		Price:    100,
	}
	f.svc = NewService(f.repo, f.listings, f.bus, zap.NewNop())
	f.svc.SetOrderCreator(f.orders)
	return f
}

func (f *testFixture) makeOffer(t *testing.T, amount float64) *Offer {
	t.Helper()
	o, err := f.svc.MakeOffer(context.Background(), MakeOfferInput{
		ListingID: f.listingID,
		BuyerID:   f.buyerID,
		Amount:    amount,
	})
	require.NoError(t, err)
	return o
}

func TestMakeOffer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o := f.makeOffer(t, 80)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, f.sellerID, o.SellerID)
	assert.NotNil(t, o.ExpiresAt)
	assert.True(t, o.ExpiresAt.After(time.Now()))

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := f.svc.MakeOffer(ctx, MakeOfferInput{ListingID: f.listingID, BuyerID: f.buyerID, Amount: 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects the seller's own listing", func(t *testing.T) {
		_, err := f.svc.MakeOffer(ctx, MakeOfferInput{ListingID: f.listingID, BuyerID: f.sellerID, Amount: 50})
		assert.ErrorIs(t, err, ErrOwnListing)
	})

	t.Run("rejects inactive listings", func(t *testing.T) {
		f.listings.listings[f.listingID].Status = listing.StatusArchived
		_, err := f.svc.MakeOffer(ctx, MakeOfferInput{ListingID: f.listingID, BuyerID: f.buyerID, Amount: 50})
		assert.ErrorIs(t, err, listing.ErrNotActive)
	})

	t.Run("rejects unknown listings", func(t *testing.T) {
		_, err := f.svc.MakeOffer(ctx, MakeOfferInput{ListingID: uuid.New(), BuyerID: f.buyerID, Amount: 50})
		assert.ErrorIs(t, err, listing.ErrListingNotFound)
	})
}

func TestAcceptOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("seller accepts a pending offer and an order is created", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		accepted, err := f.svc.AcceptOffer(ctx, o.ID, f.sellerID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, accepted.Status)
		require.Len(t, f.orders.created, 1)
		assert.Equal(t, 80.0, f.orders.created[0].FinalAmount())
	})

	t.Run("buyer cannot accept a pending offer", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.AcceptOffer(ctx, o.ID, f.buyerID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("buyer accepts a countered offer at the counter amount", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.CounterOffer(ctx, o.ID, f.sellerID, 90)
		require.NoError(t, err)

		accepted, err := f.svc.AcceptOffer(ctx, o.ID, f.buyerID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, accepted.Status)
		assert.Equal(t, 90.0, accepted.FinalAmount())
	})

	t.Run("seller cannot accept their own counter", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.CounterOffer(ctx, o.ID, f.sellerID, 90)
		require.NoError(t, err)

		_, err = f.svc.AcceptOffer(ctx, o.ID, f.sellerID)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("resolved offers stay resolved", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.DeclineOffer(ctx, o.ID, f.sellerID)
		require.NoError(t, err)

		_, err = f.svc.AcceptOffer(ctx, o.ID, f.sellerID)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})
}

func TestCounterOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("only the seller counters", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.CounterOffer(ctx, o.ID, f.buyerID, 90)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("only a pending offer can be countered", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.CounterOffer(ctx, o.ID, f.sellerID, 90)
		require.NoError(t, err)

		_, err = f.svc.CounterOffer(ctx, o.ID, f.sellerID, 95)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("rejects non-positive counter amounts", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.CounterOffer(ctx, o.ID, f.sellerID, -1)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestClearOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("clears a resolved offer from the participant's dashboard", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.DeclineOffer(ctx, o.ID, f.sellerID)
		require.NoError(t, err)

		require.NoError(t, f.svc.ClearOffer(ctx, o.ID, f.buyerID))

		sent, err := f.svc.Sent(ctx, f.buyerID, 50)
		require.NoError(t, err)
		assert.Empty(t, sent)
	})

	t.Run("cannot clear an unresolved offer", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		err := f.svc.ClearOffer(ctx, o.ID, f.buyerID)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("only participants can clear", func(t *testing.T) {
		f := newFixture(t)
		o := f.makeOffer(t, 80)

		_, err := f.svc.DeclineOffer(ctx, o.ID, f.sellerID)
		require.NoError(t, err)

		err = f.svc.ClearOffer(ctx, o.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestExpireOffers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o := f.makeOffer(t, 80)
	past := time.Now().Add(-time.Hour)
	o.ExpiresAt = &past
	require.NoError(t, f.repo.Update(ctx, o))

	fresh := f.makeOffer(t, 85)

	count, err := f.svc.ExpireOffers(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expired, err := f.svc.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status)

	kept, err := f.svc.GetOffer(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, kept.Status)
}

func TestOfferEventsReachBothParticipants(t *testing.T) {
	f := newFixture(t)

	sellerEvents := make(chan events.DashboardEvent, 4)
	buyerEvents := make(chan events.DashboardEvent, 4)
	f.bus.Subscribe(f.sellerID, func(ev events.DashboardEvent) { sellerEvents <- ev })
	f.bus.Subscribe(f.buyerID, func(ev events.DashboardEvent) { buyerEvents <- ev })

	f.makeOffer(t, 80)

	for name, ch := range map[string]chan events.DashboardEvent{"seller": sellerEvents, "buyer": buyerEvents} {
		select {
		case ev := <-ch:
			assert.Equal(t, events.SectionOffers, ev.Section)
			assert.Equal(t, events.EventOfferChanged, ev.EventType)
		case <-time.After(time.Second):
			t.Fatalf("no event delivered to %s", name)
		}
	}
}
