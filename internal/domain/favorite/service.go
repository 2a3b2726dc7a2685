package favorite

import (
	"context"
	"errors"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SavedListing pairs a favorite with the listing it points at.
type SavedListing struct {
	Favorite Favorite        `json:"favorite"`
	Listing  listing.Listing `json:"listing"`
}

type Service interface {
	AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error
	UserFavorites(ctx context.Context, userID uuid.UUID, limit int) ([]SavedListing, error)
	IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	listings listing.Repository
	bus      *events.Bus
	logger   *zap.Logger
}

func NewService(repo Repository, listings listing.Repository, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, listings: listings, bus: bus, logger: logger}
}

func (s *service) publishChange(userID, listingID uuid.UUID, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventFavoriteChanged,
		Section:   events.SectionFavorites,
		UserIDs:   []uuid.UUID{userID},
		EntityID:  listingID,
		Details:   map[string]interface{}{"action": action},
	})
}

func (s *service) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (*Favorite, error) {
	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFavorited
	}

	f := &Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ListingID: listingID,
	}
	if err := s.repo.Add(ctx, f); err != nil {
		return nil, err
	}

	s.publishChange(userID, listingID, "favorite_added")
	return f, nil
}

func (s *service) RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, listingID); err != nil {
		return err
	}

	s.publishChange(userID, listingID, "favorite_removed")
	return nil
}

// UserFavorites resolves the user's saved listings, skipping favorites whose
// listing has since been deleted.
func (s *service) UserFavorites(ctx context.Context, userID uuid.UUID, limit int) ([]SavedListing, error) {
	favorites, err := s.repo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ListingID)
	}

	listings, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		if !errors.Is(err, listing.ErrListingNotFound) {
			return nil, err
		}
		listings = nil
	}

	byID := make(map[uuid.UUID]listing.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	saved := make([]SavedListing, 0, len(favorites))
	for _, f := range favorites {
		l, ok := byID[f.ListingID]
		if !ok {
			continue
		}
		saved = append(saved, SavedListing{Favorite: f, Listing: l})
	}

	return saved, nil
}

func (s *service) IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID, listingID)
}
