package events

import (
	"time"

	"github.com/google/uuid"
)

// Section identifies one of the per-user dashboard data categories.
type Section string

const (
	SectionListings      Section = "listings"
	SectionOffers        Section = "offers"
	SectionOrders        Section = "orders"
	SectionMessages      Section = "messages"
	SectionNotifications Section = "notifications"
	SectionWantedPosts   Section = "wantedPosts"
	SectionReviews       Section = "reviews"
	SectionFavorites     Section = "favorites"
)

// Sections returns every dashboard section in a stable order.
func Sections() []Section {
	return []Section{
		SectionListings,
		SectionOffers,
		SectionOrders,
		SectionMessages,
		SectionNotifications,
		SectionWantedPosts,
		SectionReviews,
		SectionFavorites,
	}
}

// Valid reports whether s names a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionListings, SectionOffers, SectionOrders, SectionMessages,
		SectionNotifications, SectionWantedPosts, SectionReviews, SectionFavorites:
		return true
	}
	return false
}

// Dashboard event types
const (
	EventListingChanged      = "listing_changed"
	EventOfferChanged        = "offer_changed"
	EventOrderChanged        = "order_changed"
	EventMessageReceived     = "message_received"
	EventNotificationCreated = "notification_created"
	EventWantedPostChanged   = "wanted_post_changed"
	EventReviewCreated       = "review_created"
	EventFavoriteChanged     = "favorite_changed"
	EventCacheInvalidate     = "cache_invalidate"
)

// DashboardEvent describes a change that affects one or more users'
// dashboards. UserIDs lists every affected user: an offer touches both the
// buyer's and the seller's dashboard.
type DashboardEvent struct {
	EventType string                 `json:"event_type"`
	Section   Section                `json:"section"`
	UserIDs   []uuid.UUID            `json:"user_ids"`
	EntityID  uuid.UUID              `json:"entity_id"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Touches reports whether the event affects the given user.
func (e *DashboardEvent) Touches(userID uuid.UUID) bool {
	for _, id := range e.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
