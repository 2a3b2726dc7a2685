package scheduler

import (
	"context"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/security/auth"
	"go.uber.org/zap"
)

const (
	expiryInterval  = 15 * time.Minute
	sessionInterval = time.Hour
	expiryBatchSize = 200
)

// Scheduler runs the periodic marketplace maintenance tasks: archiving
// expired listings, expiring stale offers and pruning dead sessions.
type Scheduler struct {
	listings listing.Service
	offers   offer.Service
	logger   *zap.Logger
	cancel   context.CancelFunc
}

func NewScheduler(listings listing.Service, offers offer.Service, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		listings: listings,
		offers:   offers,
		logger:   logger,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.runExpiryTasks(ctx)

	go func() {
		ticker := time.NewTicker(expiryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runExpiryTasks(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(sessionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				auth.GetSessionStore().CleanupExpiredSessions()
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info("Marketplace scheduler started",
		zap.Duration("expiry_interval", expiryInterval),
		zap.Duration("session_interval", sessionInterval))
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) runExpiryTasks(ctx context.Context) {
	start := time.Now()

	archived, err := s.listings.ExpireListings(ctx, expiryBatchSize)
	if err != nil {
		s.logger.Error("Failed to expire listings", zap.Error(err))
	} else if archived > 0 {
		s.logger.Info("Archived expired listings", zap.Int("count", archived))
	}

	expired, err := s.offers.ExpireOffers(ctx, expiryBatchSize)
	if err != nil {
		s.logger.Error("Failed to expire offers", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("Expired stale offers", zap.Int("count", expired))
	}

	s.logger.Debug("Expiry sweep finished", zap.Duration("duration", time.Since(start)))
}
