package listing

import (
	"context"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	freeListingDuration    = 48 * time.Hour
	premiumListingDuration = 30 * 24 * time.Hour
	freeMaxActiveListings  = 20
)

// PremiumChecker resolves whether an account has an active premium
// subscription. Satisfied by the user service.
type PremiumChecker interface {
	IsPremium(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	ViewListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	Browse(ctx context.Context, filter BrowseFilter) ([]Listing, int64, error)
	SellerActive(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error)
	SellerArchived(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error)
	UpdateListing(ctx context.Context, id, sellerID uuid.UUID, input UpdateListingInput) (*Listing, error)
	ArchiveListing(ctx context.Context, id, sellerID uuid.UUID) (*Listing, error)
	RestoreListing(ctx context.Context, id, sellerID uuid.UUID) (*Listing, error)
	MarkSold(ctx context.Context, id uuid.UUID) error
	DeleteListing(ctx context.Context, id, sellerID uuid.UUID) error
	ExpireListings(ctx context.Context, batchSize int) (int, error)
}

type CreateListingInput struct {
	SellerID     uuid.UUID      `json:"seller_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Game         string         `json:"game"`
	CardName     string         `json:"card_name"`
	SetName      string         `json:"set_name"`
	Condition    Condition      `json:"condition"`
	IsGraded     bool           `json:"is_graded"`
	GradeLevel   float64        `json:"grade_level"`
	GradeCompany string         `json:"grade_company"`
	Price        float64        `json:"price"`
	Quantity     int            `json:"quantity"`
	ImageURLs    datatypes.JSON `json:"image_urls"`
	City         string         `json:"city"`
	State        string         `json:"state"`
}

type UpdateListingInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	CardName    *string    `json:"card_name,omitempty"`
	SetName     *string    `json:"set_name,omitempty"`
	Condition   *Condition `json:"condition,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
}

type service struct {
	repo    Repository
	premium PremiumChecker
	bus     *events.Bus
	logger  *zap.Logger
}

func NewService(repo Repository, premium PremiumChecker, bus *events.Bus, logger *zap.Logger) Service {
	return &service{repo: repo, premium: premium, bus: bus, logger: logger}
}

func (s *service) publishChange(id, sellerID uuid.UUID, action string) {
	s.bus.Publish(events.DashboardEvent{
		EventType: events.EventListingChanged,
		Section:   events.SectionListings,
		UserIDs:   []uuid.UUID{sellerID},
		EntityID:  id,
		Details:   map[string]interface{}{"action": action},
	})
}

func (s *service) CreateListing(ctx context.Context, input CreateListingInput) (*Listing, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	isPremium, err := s.premium.IsPremium(ctx, input.SellerID)
	if err != nil {
		s.logger.Warn("Premium check failed, treating account as free",
			zap.String("user_id", input.SellerID.String()),
			zap.Error(err))
		isPremium = false
	}

	if !isPremium {
		count, err := s.repo.CountActiveBySeller(ctx, input.SellerID)
		if err != nil {
			return nil, err
		}
		if count >= freeMaxActiveListings {
			return nil, ErrListingLimitReached
		}
	}

	duration := freeListingDuration
	if isPremium {
		duration = premiumListingDuration
	}
	expiresAt := time.Now().Add(duration)

	l := &Listing{
		ID:           uuid.New(),
		SellerID:     input.SellerID,
		Title:        input.Title,
		Description:  input.Description,
		Game:         input.Game,
		CardName:     input.CardName,
		SetName:      input.SetName,
		Condition:    input.Condition,
		IsGraded:     input.IsGraded,
		GradeLevel:   input.GradeLevel,
		GradeCompany: input.GradeCompany,
		Price:        input.Price,
		Quantity:     input.Quantity,
		ImageURLs:    input.ImageURLs,
		City:         input.City,
		State:        input.State,
		Status:       StatusActive,
		ExpiresAt:    &expiresAt,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.publishChange(l.ID, l.SellerID, "listing_created")
	return l, nil
}

func (s *service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.FindByID(ctx, id)
}

// ViewListing fetches a listing and bumps its view counter.
func (s *service) ViewListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn("Failed to increment view count", zap.Error(err))
	}
	return l, nil
}

func (s *service) Browse(ctx context.Context, filter BrowseFilter) ([]Listing, int64, error) {
	return s.repo.Browse(ctx, filter)
}

func (s *service) SellerActive(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	return s.repo.FindActiveBySeller(ctx, sellerID, limit)
}

func (s *service) SellerArchived(ctx context.Context, sellerID uuid.UUID, limit int) ([]Listing, error) {
	return s.repo.FindArchivedBySeller(ctx, sellerID, limit)
}

func (s *service) owned(ctx context.Context, id, sellerID uuid.UUID) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (s *service) UpdateListing(ctx context.Context, id, sellerID uuid.UUID, input UpdateListingInput) (*Listing, error) {
	l, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		l.Title = *input.Title
	}
	if input.Description != nil {
		l.Description = *input.Description
	}
	if input.CardName != nil {
		l.CardName = *input.CardName
	}
	if input.SetName != nil {
		l.SetName = *input.SetName
	}
	if input.Condition != nil {
		l.Condition = *input.Condition
	}
	if input.Price != nil {
		l.Price = *input.Price
	}
	if input.Quantity != nil {
		l.Quantity = *input.Quantity
	}
	if input.City != nil {
		l.City = *input.City
	}
	if input.State != nil {
		l.State = *input.State
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.publishChange(l.ID, l.SellerID, "listing_updated")
	return l, nil
}

func (s *service) ArchiveListing(ctx context.Context, id, sellerID uuid.UUID) (*Listing, error) {
	l, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	l.Status = StatusArchived
	l.ArchivedAt = &now

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.publishChange(l.ID, l.SellerID, "listing_archived")
	return l, nil
}

// RestoreListing republishes an archived listing with a fresh expiry window.
func (s *service) RestoreListing(ctx context.Context, id, sellerID uuid.UUID) (*Listing, error) {
	l, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusArchived {
		return nil, ErrInvalidInput
	}

	isPremium, err := s.premium.IsPremium(ctx, sellerID)
	if err != nil {
		isPremium = false
	}
	duration := freeListingDuration
	if isPremium {
		duration = premiumListingDuration
	}

	expiresAt := time.Now().Add(duration)
	l.Status = StatusActive
	l.ArchivedAt = nil
	l.ExpiresAt = &expiresAt

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	s.publishChange(l.ID, l.SellerID, "listing_restored")
	return l, nil
}

// MarkSold is invoked by the order flow when a purchase completes.
func (s *service) MarkSold(ctx context.Context, id uuid.UUID) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	l.Status = StatusSold
	l.SoldAt = &now

	if err := s.repo.Update(ctx, l); err != nil {
		return err
	}

	s.publishChange(l.ID, l.SellerID, "listing_sold")
	return nil
}

func (s *service) DeleteListing(ctx context.Context, id, sellerID uuid.UUID) error {
	l, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishChange(l.ID, l.SellerID, "listing_deleted")
	return nil
}

// ExpireListings archives active listings whose expiry has passed. Called
// periodically by the scheduler.
func (s *service) ExpireListings(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	expired, err := s.repo.FindExpired(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, err
	}

	archived := 0
	for i := range expired {
		l := &expired[i]
		now := time.Now()
		l.Status = StatusArchived
		l.ArchivedAt = &now

		if err := s.repo.Update(ctx, l); err != nil {
			s.logger.Error("Failed to archive expired listing",
				zap.String("listing_id", l.ID.String()),
				zap.Error(err))
			continue
		}

		archived++
		s.bus.Publish(events.DashboardEvent{
			EventType: events.EventListingChanged,
			Section:   events.SectionListings,
			UserIDs:   []uuid.UUID{l.SellerID},
			EntityID:  l.ID,
			Details:   map[string]interface{}{"action": "listing_expired"},
		})
	}

	return archived, nil
}
