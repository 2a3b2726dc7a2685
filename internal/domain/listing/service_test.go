package listing

import (
	"context"
	"testing"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeListingRepo struct {
	listings map[uuid.UUID]*Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[uuid.UUID]*Listing)}
}

func (r *fakeListingRepo) Create(ctx context.Context, l *Listing) error {
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	var out []Listing
	for _, l := range r.listings {
		if l.SellerID == sellerID && l.Status == StatusActive {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) FindArchivedBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	var out []Listing
	for _, l := range r.listings {
		if l.SellerID == sellerID && l.Status == StatusArchived {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error) {
	var out []Listing
	for _, id := range ids {
		if l, ok := r.listings[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeListingRepo) Browse(ctx context.Context, filter BrowseFilter) ([]Listing, int64, error) {
	var out []Listing
	for _, l := range r.listings {
		if l.Status == StatusActive {
			out = append(out, *l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) Update(ctx context.Context, l *Listing) error {
	if _, ok := r.listings[l.ID]; !ok {
		return ErrListingNotFound
	}
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.listings[id]; !ok {
		return ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *fakeListingRepo) CountActiveBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	for _, l := range r.listings {
		if l.SellerID == sellerID && l.Status == StatusActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeListingRepo) FindExpired(ctx context.Context, cutoff time.Time, limit int) ([]Listing, error) {
	var out []Listing
	for _, l := range r.listings {
		if l.Status == StatusActive && l.ExpiresAt != nil && l.ExpiresAt.Before(cutoff) {
			out = append(out, *l)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeListingRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if l, ok := r.listings[id]; ok {
		l.ViewCount++
	}
	return nil
}

type staticPremium bool

func (p staticPremium) IsPremium(ctx context.Context, id uuid.UUID) (bool, error) {
	return bool(p), nil
}

func createInput(sellerID uuid.UUID) CreateListingInput {
	return CreateListingInput{
		SellerID:  sellerID,
		Title:     "Charizard Base Set",
		Game:      "pokemon",
		CardName:  "Charizard",
		Condition: ConditionNearMint,
		Price:     350,
	}
}

func TestCreateListing(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()

	t.Run("free accounts get the short expiry window", func(t *testing.T) {
		repo := newFakeListingRepo()
		svc := NewService(repo, staticPremium(false), events.NewBus(), zap.NewNop())

		l, err := svc.CreateListing(ctx, createInput(sellerID))
		require.NoError(t, err)
		assert.Equal(t, StatusActive, l.Status)
		assert.Equal(t, 1, l.Quantity)
		require.NotNil(t, l.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(freeListingDuration), *l.ExpiresAt, time.Minute)
	})

	t.Run("premium accounts get the long expiry window", func(t *testing.T) {
		repo := newFakeListingRepo()
		svc := NewService(repo, staticPremium(true), events.NewBus(), zap.NewNop())

		l, err := svc.CreateListing(ctx, createInput(sellerID))
		require.NoError(t, err)
		require.NotNil(t, l.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(premiumListingDuration), *l.ExpiresAt, time.Minute)
	})

	t.Run("free accounts hit the active listing cap", func(t *testing.T) {
		repo := newFakeListingRepo()
		svc := NewService(repo, staticPremium(false), events.NewBus(), zap.NewNop())

		for i := 0; i < freeMaxActiveListings; i++ {
			_, err := svc.CreateListing(ctx, createInput(sellerID))
			require.NoError(t, err)
		}

		_, err := svc.CreateListing(ctx, createInput(sellerID))
		assert.ErrorIs(t, err, ErrListingLimitReached)
	})

	t.Run("premium accounts are uncapped", func(t *testing.T) {
		repo := newFakeListingRepo()
		svc := NewService(repo, staticPremium(true), events.NewBus(), zap.NewNop())

		for i := 0; i < freeMaxActiveListings+5; i++ {
			_, err := svc.CreateListing(ctx, createInput(sellerID))
			require.NoError(t, err)
		}
	})
}

func TestListingLifecycle(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()
	repo := newFakeListingRepo()
	svc := NewService(repo, staticPremium(false), events.NewBus(), zap.NewNop())

	l, err := svc.CreateListing(ctx, createInput(sellerID))
	require.NoError(t, err)

	t.Run("only the owner mutates", func(t *testing.T) {
		_, err := svc.ArchiveListing(ctx, l.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("archive then restore resets the expiry", func(t *testing.T) {
		archived, err := svc.ArchiveListing(ctx, l.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, StatusArchived, archived.Status)
		assert.NotNil(t, archived.ArchivedAt)

		restored, err := svc.RestoreListing(ctx, l.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, restored.Status)
		assert.Nil(t, restored.ArchivedAt)
		require.NotNil(t, restored.ExpiresAt)
		assert.True(t, restored.ExpiresAt.After(time.Now()))
	})

	t.Run("restore requires archived state", func(t *testing.T) {
		_, err := svc.RestoreListing(ctx, l.ID, sellerID)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("mark sold", func(t *testing.T) {
		require.NoError(t, svc.MarkSold(ctx, l.ID))
		sold, err := svc.GetListing(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusSold, sold.Status)
		assert.NotNil(t, sold.SoldAt)
	})
}

func TestViewListing(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()
	repo := newFakeListingRepo()
	svc := NewService(repo, staticPremium(false), events.NewBus(), zap.NewNop())

	l, err := svc.CreateListing(ctx, createInput(sellerID))
	require.NoError(t, err)

	_, err = svc.ViewListing(ctx, l.ID)
	require.NoError(t, err)
	_, err = svc.ViewListing(ctx, l.ID)
	require.NoError(t, err)

	viewed, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.ViewCount)
}

func TestExpireListings(t *testing.T) {
	ctx := context.Background()
	sellerID := uuid.New()
	repo := newFakeListingRepo()
	svc := NewService(repo, staticPremium(false), events.NewBus(), zap.NewNop())

	l, err := svc.CreateListing(ctx, createInput(sellerID))
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	stale, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	stale.ExpiresAt = &past
	require.NoError(t, repo.Update(ctx, stale))

	fresh, err := svc.CreateListing(ctx, createInput(sellerID))
	require.NoError(t, err)

	archived, err := svc.ExpireListings(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	expired, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, expired.Status)

	kept, err := svc.GetListing(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, kept.Status)
}
