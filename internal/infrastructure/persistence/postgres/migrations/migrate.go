package migrations

import (
	"fmt"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/favorite"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/listing"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/message"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/notification"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/offer"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/order"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/review"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/user"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
	"github.com/aaandroiddd/Waboku.gg-sub000/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var log = logger.NewLogger()

// MigrationRecord tracks applied schema migrations.
type MigrationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:255"`
	AppliedAt time.Time
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// RunMigrations applies all pending schema changes.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	models := []interface{}{
		&user.User{},
		&listing.Listing{},
		&offer.Offer{},
		&order.Order{},
		&message.Conversation{},
		&message.Message{},
		&notification.Notification{},
		&wantedpost.WantedPost{},
		&review.Review{},
		&favorite.Favorite{},
	}

	name := "automigrate_marketplace"
	var existing MigrationRecord
	fresh := db.Where("name = ?", name).First(&existing).Error == gorm.ErrRecordNotFound

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if fresh {
		record := MigrationRecord{Name: name, AppliedAt: time.Now()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	log.Info("Database migrations complete", zap.Int("models", len(models)))
	return nil
}
