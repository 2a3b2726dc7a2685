package dashboard

import (
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/favorite"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/message"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/notification"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/review"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
)

// OfferRole distinguishes the user's side of a merged offer entry.
type OfferRole string

const (
	OfferRoleBuyer  OfferRole = "buyer"
	OfferRoleSeller OfferRole = "seller"
)

// OfferEntry is one row of the merged received/sent offer feed.
type OfferEntry struct {
	offer.Offer
	Role OfferRole `json:"role"`
}

// OrderRole distinguishes purchases from sales in the merged order feed.
type OrderRole string

const (
	OrderRolePurchase OrderRole = "purchase"
	OrderRoleSale     OrderRole = "sale"
)

// OrderEntry is one row of the merged purchase/sale feed.
type OrderEntry struct {
	order.Order
	Role OrderRole `json:"role"`
}

// ListingsData splits a seller's listings by lifecycle state.
type ListingsData struct {
	Active   []listing.Listing `json:"active"`
	Archived []listing.Listing `json:"archived"`
}

// Data is the full dashboard snapshot for one user.
type Data struct {
	Listings      ListingsData                 `json:"listings"`
	Offers        []OfferEntry                 `json:"offers"`
	Orders        []OrderEntry                 `json:"orders"`
	Messages      []message.Conversation       `json:"messages"`
	Notifications []*notification.Notification `json:"notifications"`
	WantedPosts   []wantedpost.WantedPost      `json:"wantedPosts"`
	Reviews       []review.Review              `json:"reviews"`
	Favorites     []favorite.SavedListing      `json:"favorites"`
	LastUpdated   time.Time                    `json:"lastUpdated"`
}

// LoadingState reports which sections are in flight. Overall is true while
// at least one section flag is set, never otherwise.
type LoadingState struct {
	Sections map[events.Section]bool `json:"sections"`
	Overall  bool                    `json:"overall"`
}

func newLoadingState() LoadingState {
	sections := make(map[events.Section]bool, len(events.Sections()))
	for _, s := range events.Sections() {
		sections[s] = false
	}
	return LoadingState{Sections: sections}
}

func (ls LoadingState) clone() LoadingState {
	out := LoadingState{
		Sections: make(map[events.Section]bool, len(ls.Sections)),
		Overall:  ls.Overall,
	}
	for s, v := range ls.Sections {
		out.Sections[s] = v
	}
	return out
}

func (ls *LoadingState) set(section events.Section, loading bool) {
	ls.Sections[section] = loading
	ls.Overall = false
	for _, v := range ls.Sections {
		if v {
			ls.Overall = true
			break
		}
	}
}

// Limits caps the number of records each section fetches.
type Limits struct {
	Listings      int
	Offers        int
	Orders        int
	Messages      int
	Notifications int
	WantedPosts   int
	Reviews       int
	Favorites     int
}

// DefaultLimits mirrors what the web client displays per section.
func DefaultLimits() Limits {
	return Limits{
		Listings:      50,
		Offers:        50,
		Orders:        100,
		Messages:      100,
		Notifications: 50,
		WantedPosts:   50,
		Reviews:       50,
		Favorites:     100,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Listings <= 0 {
		l.Listings = d.Listings
	}
	if l.Offers <= 0 {
		l.Offers = d.Offers
	}
	if l.Orders <= 0 {
		l.Orders = d.Orders
	}
	if l.Messages <= 0 {
		l.Messages = d.Messages
	}
	if l.Notifications <= 0 {
		l.Notifications = d.Notifications
	}
	if l.WantedPosts <= 0 {
		l.WantedPosts = d.WantedPosts
	}
	if l.Reviews <= 0 {
		l.Reviews = d.Reviews
	}
	if l.Favorites <= 0 {
		l.Favorites = d.Favorites
	}
	return l
}
