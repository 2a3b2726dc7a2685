package review

import (
	"context"
	"testing"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, rv *Review) error {
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *fakeReviewRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*Review, error) {
	for _, rv := range r.reviews {
		if rv.OrderID == orderID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (r *fakeReviewRepo) FindBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Review, error) {
	var out []Review
	for _, rv := range r.reviews {
		if rv.SellerID == sellerID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) FindByReviewer(ctx context.Context, reviewerID uuid.UUID, limit int) ([]Review, error) {
	var out []Review
	for _, rv := range r.reviews {
		if rv.ReviewerID == reviewerID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) Summary(ctx context.Context, sellerID uuid.UUID) (*SellerSummary, error) {
	summary := &SellerSummary{SellerID: sellerID}
	var total int
	for _, rv := range r.reviews {
		if rv.SellerID == sellerID {
			summary.ReviewCount++
			total += rv.Rating
		}
	}
	if summary.ReviewCount > 0 {
		summary.AverageRating = float64(total) / float64(summary.ReviewCount)
	}
	return summary, nil
}

func (r *fakeReviewRepo) Update(ctx context.Context, rv *Review) error {
	if _, ok := r.reviews[rv.ID]; !ok {
		return ErrReviewNotFound
	}
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

type staticOrderRepo struct {
	orders map[uuid.UUID]*order.Order
}

func (r *staticOrderRepo) Create(ctx context.Context, o *order.Order) error { return nil }
func (r *staticOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}
func (r *staticOrderRepo) FindByPaymentSession(ctx context.Context, sessionID string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}
func (r *staticOrderRepo) FindPurchases(ctx context.Context, buyerID uuid.UUID, limit int) ([]order.Order, error) {
	return nil, nil
}
func (r *staticOrderRepo) FindSales(ctx context.Context, sellerID uuid.UUID, limit int) ([]order.Order, error) {
	return nil, nil
}
func (r *staticOrderRepo) Update(ctx context.Context, o *order.Order) error { return nil }

type recordedRating struct {
	sellerID uuid.UUID
	rating   int
}

type fakeRatings struct {
	recorded []recordedRating
}

func (f *fakeRatings) RecordReview(ctx context.Context, sellerID uuid.UUID, rating int) error {
	f.recorded = append(f.recorded, recordedRating{sellerID: sellerID, rating: rating})
	return nil
}

type reviewFixture struct {
	svc      Service
	repo     *fakeReviewRepo
	ratings  *fakeRatings
	buyerID  uuid.UUID
	sellerID uuid.UUID
	orderID  uuid.UUID
}

func newReviewFixture(t *testing.T, status order.Status) *reviewFixture {
	t.Helper()

	f := &reviewFixture{
		repo:     newFakeReviewRepo(),
		ratings:  &fakeRatings{},
		buyerID:  uuid.New(),
		sellerID: uuid.New(),
		orderID:  uuid.New(),
	}
	orders := &staticOrderRepo{orders: map[uuid.UUID]*order.Order{
		f.orderID: {
			ID:       f.orderID,
			BuyerID:  f.buyerID,
			SellerID: f.sellerID,
			Status:   status,
		},
	}}
	f.svc = NewService(f.repo, orders, f.ratings, events.NewBus(), zap.NewNop())
	return f
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("buyer reviews a completed order and the seller rating updates", func(t *testing.T) {
		f := newReviewFixture(t, order.StatusCompleted)

		rv, err := f.svc.CreateReview(ctx, CreateReviewInput{
			OrderID:    f.orderID,
			ReviewerID: f.buyerID,
			Rating:     5,
			Comment:    "Fast shipping, card as described",
		})
		require.NoError(t, err)
		assert.Equal(t, f.sellerID, rv.SellerID)
		require.Len(t, f.ratings.recorded, 1)
		assert.Equal(t, recordedRating{sellerID: f.sellerID, rating: 5}, f.ratings.recorded[0])
	})

	t.Run("rating bounds", func(t *testing.T) {
		f := newReviewFixture(t, order.StatusCompleted)

		for _, rating := range []int{0, 6, -1} {
			_, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: rating})
			assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		}
	})

	t.Run("only the buyer reviews", func(t *testing.T) {
		f := newReviewFixture(t, order.StatusCompleted)

		_, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.sellerID, Rating: 4})
		assert.ErrorIs(t, err, ErrNotBuyer)
	})

	t.Run("only completed orders are reviewable", func(t *testing.T) {
		f := newReviewFixture(t, order.StatusShipped)

		_, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 4})
		assert.ErrorIs(t, err, ErrOrderNotComplete)
	})

	t.Run("one review per order", func(t *testing.T) {
		f := newReviewFixture(t, order.StatusCompleted)

		_, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 4})
		require.NoError(t, err)

		_, err = f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 2})
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t, order.StatusCompleted)

	rv, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 3, Comment: "ok"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateReview(ctx, rv.ID, f.buyerID, 4, "better after a reship")
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Rating)

	// Another user cannot see or touch it; the reviewer check hides it.
	_, err = f.svc.UpdateReview(ctx, rv.ID, uuid.New(), 1, "")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = f.svc.UpdateReview(ctx, rv.ID, f.buyerID, 9, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t, order.StatusCompleted)

	rv, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 3})
	require.NoError(t, err)

	err = f.svc.DeleteReview(ctx, rv.ID, uuid.New())
	assert.ErrorIs(t, err, ErrReviewNotFound)

	require.NoError(t, f.svc.DeleteReview(ctx, rv.ID, f.buyerID))

	_, err = f.svc.GetReview(ctx, rv.ID)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestSellerSummary(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t, order.StatusCompleted)

	_, err := f.svc.CreateReview(ctx, CreateReviewInput{OrderID: f.orderID, ReviewerID: f.buyerID, Rating: 4})
	require.NoError(t, err)

	summary, err := f.svc.SellerSummary(ctx, f.sellerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ReviewCount)
	assert.Equal(t, 4.0, summary.AverageRating)
}
