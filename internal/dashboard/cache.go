package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// sectionTTL bounds how long abandoned snapshots sit in storage. Freshness
// decisions never consult it; they come from the timestamp key alone.
const sectionTTL = 24 * time.Hour

// KV is the slice of the Redis client the dashboard store needs. An
// in-memory implementation backs the tests.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Store persists per-user dashboard snapshots section by section.
type Store struct {
	kv        KV
	freshness time.Duration
}

// NewStore creates a store. A non-positive freshness window falls back to
// five minutes.
func NewStore(kv KV, freshness time.Duration) *Store {
	if freshness <= 0 {
		freshness = 5 * time.Minute
	}
	return &Store{kv: kv, freshness: freshness}
}

// FreshnessWindow returns the configured window.
func (s *Store) FreshnessWindow() time.Duration {
	return s.freshness
}

// SaveSection writes one section's records for a user.
func (s *Store) SaveSection(ctx context.Context, userID uuid.UUID, section events.Section, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s section: %w", section, err)
	}
	return s.kv.Set(ctx, cache.DashboardSectionKey(section, userID), string(data), sectionTTL)
}

// LoadSection reads one section's raw snapshot. Returns false when the key
// is absent.
func (s *Store) LoadSection(ctx context.Context, userID uuid.UUID, section events.Section) ([]byte, bool, error) {
	raw, err := s.kv.Get(ctx, cache.DashboardSectionKey(section, userID))
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

// Touch records the moment the user's snapshot was last written.
func (s *Store) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.kv.Set(ctx, cache.DashboardTimestampKey(userID), at.UTC().Format(time.RFC3339Nano), sectionTTL)
}

// LastUpdated reads the snapshot timestamp. The zero time means no snapshot
// exists or the stored value was unreadable.
func (s *Store) LastUpdated(ctx context.Context, userID uuid.UUID) time.Time {
	raw, err := s.kv.Get(ctx, cache.DashboardTimestampKey(userID))
	if err != nil {
		return time.Time{}
	}
	t, ok := CoerceTime(raw)
	if !ok {
		return time.Time{}
	}
	return t
}

// IsFresh reports whether the snapshot was written inside the freshness
// window. No inspection of section payloads happens here.
func (s *Store) IsFresh(ctx context.Context, userID uuid.UUID, now time.Time) bool {
	last := s.LastUpdated(ctx, userID)
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < s.freshness
}

// Clear removes every section key and the timestamp key for a user.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	keys := make([]string, 0, len(events.Sections())+1)
	for _, section := range events.Sections() {
		keys = append(keys, cache.DashboardSectionKey(section, userID))
	}
	keys = append(keys, cache.DashboardTimestampKey(userID))
	return s.kv.Delete(ctx, keys...)
}

func isNotFound(err error) bool {
	return errors.Is(err, cache.ErrCacheNotFound)
}
