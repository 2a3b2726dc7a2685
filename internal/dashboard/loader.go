package dashboard

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/favorite"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/message"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/notification"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/review"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
	"github.com/google/uuid"
)

// Services bundles the domain services the preloader reads from.
type Services struct {
	Listings      listing.Service
	Offers        offer.Service
	Orders        order.Service
	Messages      message.Service
	Notifications notification.Service
	WantedPosts   wantedpost.Service
	Reviews       review.Service
	Favorites     favorite.Service
}

// sectionLoader fetches, applies and re-hydrates one dashboard section.
type sectionLoader struct {
	section events.Section
	load    func(ctx context.Context, userID uuid.UUID) (interface{}, error)
	apply   func(d *Data, v interface{})
	decode  func(raw []byte) (interface{}, error)
	empty   func() interface{}
}

// mergeOffers folds received and sent offers into one feed, drops cleared
// entries, and sorts strictly newest first. Ties break on ID so repeated
// merges of the same rows always agree.
func mergeOffers(received, sent []offer.Offer) []OfferEntry {
	merged := make([]OfferEntry, 0, len(received)+len(sent))
	for _, o := range received {
		if o.Cleared {
			continue
		}
		merged = append(merged, OfferEntry{Offer: o, Role: OfferRoleSeller})
	}
	for _, o := range sent {
		if o.Cleared {
			continue
		}
		merged = append(merged, OfferEntry{Offer: o, Role: OfferRoleBuyer})
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID.String() < merged[j].ID.String()
	})
	return merged
}

// mergeOrders folds purchases and sales into one feed, newest first with an
// ID tie-break.
func mergeOrders(purchases, sales []order.Order) []OrderEntry {
	merged := make([]OrderEntry, 0, len(purchases)+len(sales))
	for _, o := range purchases {
		merged = append(merged, OrderEntry{Order: o, Role: OrderRolePurchase})
	}
	for _, o := range sales {
		merged = append(merged, OrderEntry{Order: o, Role: OrderRoleSale})
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID.String() < merged[j].ID.String()
	})
	return merged
}

func buildLoaders(svc Services, limits Limits) []sectionLoader {
	return []sectionLoader{
		{
			section: events.SectionListings,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				active, err := svc.Listings.SellerActive(ctx, userID, limits.Listings)
				if err != nil {
					return nil, err
				}
				archived, err := svc.Listings.SellerArchived(ctx, userID, limits.Listings)
				if err != nil {
					return nil, err
				}
				return ListingsData{Active: active, Archived: archived}, nil
			},
			apply: func(d *Data, v interface{}) { d.Listings = v.(ListingsData) },
			decode: func(raw []byte) (interface{}, error) {
				var v ListingsData
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return ListingsData{Active: []listing.Listing{}, Archived: []listing.Listing{}} },
		},
		{
			section: events.SectionOffers,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				received, err := svc.Offers.Received(ctx, userID, limits.Offers)
				if err != nil {
					return nil, err
				}
				sent, err := svc.Offers.Sent(ctx, userID, limits.Offers)
				if err != nil {
					return nil, err
				}
				return mergeOffers(received, sent), nil
			},
			apply: func(d *Data, v interface{}) { d.Offers = v.([]OfferEntry) },
			decode: func(raw []byte) (interface{}, error) {
				var v []OfferEntry
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []OfferEntry{} },
		},
		{
			section: events.SectionOrders,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				purchases, err := svc.Orders.Purchases(ctx, userID, limits.Orders)
				if err != nil {
					return nil, err
				}
				sales, err := svc.Orders.Sales(ctx, userID, limits.Orders)
				if err != nil {
					return nil, err
				}
				return mergeOrders(purchases, sales), nil
			},
			apply: func(d *Data, v interface{}) { d.Orders = v.([]OrderEntry) },
			decode: func(raw []byte) (interface{}, error) {
				var v []OrderEntry
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []OrderEntry{} },
		},
		{
			section: events.SectionMessages,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				return svc.Messages.Conversations(ctx, userID, limits.Messages)
			},
			apply: func(d *Data, v interface{}) { d.Messages = v.([]message.Conversation) },
			decode: func(raw []byte) (interface{}, error) {
				var v []message.Conversation
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []message.Conversation{} },
		},
		{
			section: events.SectionNotifications,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				return svc.Notifications.List(ctx, userID, limits.Notifications, 0)
			},
			apply: func(d *Data, v interface{}) { d.Notifications = v.([]*notification.Notification) },
			decode: func(raw []byte) (interface{}, error) {
				var v []*notification.Notification
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []*notification.Notification{} },
		},
		{
			section: events.SectionWantedPosts,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				return svc.WantedPosts.UserPosts(ctx, userID, limits.WantedPosts)
			},
			apply: func(d *Data, v interface{}) { d.WantedPosts = v.([]wantedpost.WantedPost) },
			decode: func(raw []byte) (interface{}, error) {
				var v []wantedpost.WantedPost
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []wantedpost.WantedPost{} },
		},
		{
			section: events.SectionReviews,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				return svc.Reviews.SellerReviews(ctx, userID, limits.Reviews)
			},
			apply: func(d *Data, v interface{}) { d.Reviews = v.([]review.Review) },
			decode: func(raw []byte) (interface{}, error) {
				var v []review.Review
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []review.Review{} },
		},
		{
			section: events.SectionFavorites,
			load: func(ctx context.Context, userID uuid.UUID) (interface{}, error) {
				return svc.Favorites.UserFavorites(ctx, userID, limits.Favorites)
			},
			apply: func(d *Data, v interface{}) { d.Favorites = v.([]favorite.SavedListing) },
			decode: func(raw []byte) (interface{}, error) {
				var v []favorite.SavedListing
				err := json.Unmarshal(raw, &v)
				return v, err
			},
			empty: func() interface{} { return []favorite.SavedListing{} },
		},
	}
}
