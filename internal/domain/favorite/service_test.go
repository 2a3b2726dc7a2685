package favorite

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

type fakeFavoriteRepo struct {
	favorites map[uuid.UUID]*Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{favorites: make(map[uuid.UUID]*Favorite)}
}

func (r *fakeFavoriteRepo) Add(ctx context.Context, f *Favorite) error {
	cp := *f
	r.favorites[f.ID] = &cp
	return nil
}

func (r *fakeFavoriteRepo) Remove(ctx context.Context, userID, listingID uuid.UUID) error {
	for id, f := range r.favorites {
		if f.UserID == userID && f.ListingID == listingID {
			delete(r.favorites, id)
			return nil
		}
	}
	return ErrFavoriteNotFound
}

func (r *fakeFavoriteRepo) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Favorite, error) {
	var out []Favorite
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFavoriteRepo) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	for _, f := range r.favorites {
		if f.UserID == userID && f.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFavoriteRepo) CountForListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var count int64
	for _, f := range r.favorites {
		if f.ListingID == listingID {
			count++
		}
	}
	return count, nil
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
	var out []listing.Listing
	for _, id := range ids {
		if l, ok := r.listings[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
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

type favoriteFixture struct {
	repo     *fakeFavoriteRepo
	listings *fakeListingRepo
	bus      *events.Bus
	svc      Service
}

func newFavoriteFixture(t *testing.T) *favoriteFixture {
	t.Helper()
	repo := newFakeFavoriteRepo()
	listings := newFakeListingRepo()
	bus := events.NewBus()
	return &favoriteFixture{
		repo:     repo,
		listings: listings,
		bus:      bus,
		svc:      NewService(repo, listings, bus, zap.NewNop()),
	}
}

func (f *favoriteFixture) makeListing(t *testing.T) *listing.Listing {
	t.Helper()
	l := &listing.Listing{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		CardName: "Charizard",
		Price:    350,
		Status:   listing.StatusActive,
	}
	require.NoError(t, f.listings.Create(context.Background(), l))
	return l
}

func TestAddFavorite(t *testing.T) {
	ctx := context.Background()
	f := newFavoriteFixture(t)
	userID := uuid.New()
	l := f.makeListing(t)

	received := make(chan events.DashboardEvent, 4)
	cancel := f.bus.Subscribe(userID, func(ev events.DashboardEvent) {
		received <- ev
	})
	defer cancel()

	fav, err := f.svc.AddFavorite(ctx, userID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, fav.UserID)
	assert.Equal(t, l.ID, fav.ListingID)

	select {
	case ev := <-received:
		assert.Equal(t, events.SectionFavorites, ev.Section)
		assert.Equal(t, events.EventFavoriteChanged, ev.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for favorite event")
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := f.svc.AddFavorite(ctx, userID, l.ID)
		assert.ErrorIs(t, err, ErrAlreadyFavorited)
	})

	t.Run("unknown listing", func(t *testing.T) {
		_, err := f.svc.AddFavorite(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, listing.ErrListingNotFound)
	})
}

func TestRemoveFavorite(t *testing.T) {
	ctx := context.Background()
	f := newFavoriteFixture(t)
	userID := uuid.New()
	l := f.makeListing(t)

	_, err := f.svc.AddFavorite(ctx, userID, l.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFavorite(ctx, userID, l.ID))

	saved, err := f.svc.IsFavorite(ctx, userID, l.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	t.Run("not favorited", func(t *testing.T) {
		err := f.svc.RemoveFavorite(ctx, userID, l.ID)
		assert.ErrorIs(t, err, ErrFavoriteNotFound)
	})
}

func TestUserFavoritesSkipsDeletedListings(t *testing.T) {
	ctx := context.Background()
	f := newFavoriteFixture(t)
	userID := uuid.New()

	kept := f.makeListing(t)
	removed := f.makeListing(t)

	_, err := f.svc.AddFavorite(ctx, userID, kept.ID)
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, userID, removed.ID)
	require.NoError(t, err)

	// The listing disappears but the favorite row remains.
	require.NoError(t, f.listings.Delete(ctx, removed.ID))

	saved, err := f.svc.UserFavorites(ctx, userID, 50)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, kept.ID, saved[0].Listing.ID)
	assert.Equal(t, kept.ID, saved[0].Favorite.ListingID)
}
