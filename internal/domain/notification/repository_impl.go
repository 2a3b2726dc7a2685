package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// postgresRepository implements the Repository interface for PostgreSQL
type postgresRepository struct {
	db     *connection.Database
	logger *logrus.Logger
}

// NewRepository creates a new PostgreSQL notification repository
func NewRepository(db *connection.Database, logger *logrus.Logger) Repository {
	return &postgresRepository{
		db:     db,
		logger: logger,
	}
}

// withRecovery executes the given function, reconnecting and retrying once
// when the failure looks like a dropped connection.
func (r *postgresRepository) withRecovery(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	db := r.db.WithContext(ctx)

	err := fn(db)
	if err == nil {
		return nil
	}

	r.logger.WithError(err).WithField("operation", operation).Error("Database operation failed")

	if !isConnectionError(err) {
		return err
	}

	r.logger.WithField("operation", operation).Warn("Database connection error, attempting reconnection")
	if reconnectErr := r.db.Reconnect(); reconnectErr != nil {
		r.logger.WithError(reconnectErr).Error("Failed to reconnect to database")
		return err
	}

	db = r.db.WithContext(ctx)
	if retryErr := fn(db); retryErr != nil {
		r.logger.WithError(retryErr).Error("Operation failed after reconnection")
		return retryErr
	}
	return nil
}

func isConnectionError(err error) bool {
	errMsg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"bad connection",
		"connection reset by peer",
		"broken pipe",
		"connection closed",
		"driver: bad connection",
		"hostname resolving error",
		"operation was canceled",
	} {
		if strings.Contains(errMsg, marker) {
			return true
		}
	}
	return false
}

func (r *postgresRepository) Create(ctx context.Context, notification *Notification) error {
	return r.withRecovery(ctx, "Create", func(tx *gorm.DB) error {
		return tx.Create(notification).Error
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var notification Notification

	err := r.withRecovery(ctx, "GetByID", func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&notification).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrNotFoundType{Message: "notification not found"}
		}
		return nil, err
	}

	return &notification, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var notifications []*Notification

	err := r.withRecovery(ctx, "GetByUserID", func(tx *gorm.DB) error {
		// Unread first, then newest
		query := tx.Model(&Notification{}).
			Where("user_id = ?", userID).
			Order("status DESC, created_at DESC")

		if limit > 0 {
			query = query.Limit(limit)
		}
		if offset > 0 {
			query = query.Offset(offset)
		}

		return query.Find(&notifications).Error
	})
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *postgresRepository) GetUnreadByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	var notifications []*Notification

	err := r.withRecovery(ctx, "GetUnreadByUserID", func(tx *gorm.DB) error {
		query := tx.Model(&Notification{}).
			Where("user_id = ? AND status = ?", userID, StatusUnread).
			Order("created_at DESC")

		if limit > 0 {
			query = query.Limit(limit)
		}
		if offset > 0 {
			query = query.Offset(offset)
		}

		return query.Find(&notifications).Error
	})
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *postgresRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.withRecovery(ctx, "CountUnread", func(tx *gorm.DB) error {
		return tx.Model(&Notification{}).
			Where("user_id = ? AND status = ?", userID, StatusUnread).
			Count(&count).Error
	})
	return count, err
}

func (r *postgresRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.withRecovery(ctx, "MarkRead", func(tx *gorm.DB) error {
		result := tx.Model(&Notification{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":  StatusRead,
				"read_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &ErrNotFoundType{Message: fmt.Sprintf("notification %s not found", id)}
		}
		return nil
	})
}

func (r *postgresRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var updated int64
	err := r.withRecovery(ctx, "MarkAllRead", func(tx *gorm.DB) error {
		result := tx.Model(&Notification{}).
			Where("user_id = ? AND status = ?", userID, StatusUnread).
			Updates(map[string]interface{}{
				"status":  StatusRead,
				"read_at": time.Now(),
			})
		updated = result.RowsAffected
		return result.Error
	})
	return updated, err
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.withRecovery(ctx, "Delete", func(tx *gorm.DB) error {
		result := tx.Delete(&Notification{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &ErrNotFoundType{Message: fmt.Sprintf("notification %s not found", id)}
		}
		return nil
	})
}

func (r *postgresRepository) DeleteOlderThan(ctx context.Context, userID uuid.UUID, days int) (int64, error) {
	var deleted int64
	err := r.withRecovery(ctx, "DeleteOlderThan", func(tx *gorm.DB) error {
		cutoff := time.Now().AddDate(0, 0, -days)
		result := tx.Where("user_id = ? AND created_at < ?", userID, cutoff).
			Delete(&Notification{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
