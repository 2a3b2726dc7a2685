package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/wantedpost"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func offerTestLoader(load func(ctx context.Context, userID uuid.UUID) (interface{}, error)) sectionLoader {
	return sectionLoader{
		section: events.SectionOffers,
		load:    load,
		apply:   func(d *Data, v interface{}) { d.Offers = v.([]OfferEntry) },
		decode: func(raw []byte) (interface{}, error) {
			var v []OfferEntry
			err := json.Unmarshal(raw, &v)
			return v, err
		},
		empty: func() interface{} { return []OfferEntry{} },
	}
}

func wantedPostTestLoader(load func(ctx context.Context, userID uuid.UUID) (interface{}, error)) sectionLoader {
	return sectionLoader{
		section: events.SectionWantedPosts,
		load:    load,
		apply:   func(d *Data, v interface{}) { d.WantedPosts = v.([]wantedpost.WantedPost) },
		decode: func(raw []byte) (interface{}, error) {
			var v []wantedpost.WantedPost
			err := json.Unmarshal(raw, &v)
			return v, err
		},
		empty: func() interface{} { return []wantedpost.WantedPost{} },
	}
}

func staticOffers(n int) []OfferEntry {
	entries := make([]OfferEntry, n)
	for i := range entries {
		entries[i].ID = uuid.New()
		entries[i].Role = OfferRoleBuyer
	}
	return entries
}

func newTestPreloader(kv *fakeKV, bus *events.Bus, loaders ...sectionLoader) *Preloader {
	return newPreloader(NewStore(kv, 5*time.Minute), loaders, bus, zap.NewNop())
}

func TestPreloadPopulatesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	var offerCalls, postCalls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			offerCalls.Add(1)
			return staticOffers(2), nil
		}),
		wantedPostTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			postCalls.Add(1)
			return []wantedpost.WantedPost{{ID: uuid.New()}}, nil
		}),
	)

	data, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)

	assert.Len(t, data.Offers, 2)
	assert.Len(t, data.WantedPosts, 1)
	assert.False(t, data.LastUpdated.IsZero())
	assert.Equal(t, int32(1), offerCalls.Load())
	assert.Equal(t, int32(1), postCalls.Load())

	state := p.LoadingState(userID)
	assert.False(t, state.Overall)
	for section, loading := range state.Sections {
		assert.False(t, loading, "section %s still flagged after preload", section)
	}

	// Both sections and the timestamp landed in storage.
	_, found, err := p.store.LoadSection(ctx, userID, events.SectionOffers)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, p.store.IsFresh(ctx, userID, time.Now()))
}

func TestPreloadFreshSnapshotSkipsLoaders(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	var calls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			calls.Add(1)
			return staticOffers(1), nil
		}),
	)

	first, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	second, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "fresh snapshot must not trigger fetches")
	assert.Equal(t, first.Offers[0].ID, second.Offers[0].ID)
}

func TestPreloadForceBypassesFreshness(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	var calls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			calls.Add(1)
			return staticOffers(1), nil
		}),
	)

	_, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)
	_, err = p.Preload(ctx, userID, true)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestRefreshSectionLeavesOthersAlone(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	var offerCalls, postCalls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			offerCalls.Add(1)
			return staticOffers(1), nil
		}),
		wantedPostTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			postCalls.Add(1)
			return []wantedpost.WantedPost{}, nil
		}),
	)

	_, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)

	require.NoError(t, p.RefreshSection(ctx, userID, events.SectionOffers))

	assert.Equal(t, int32(2), offerCalls.Load())
	assert.Equal(t, int32(1), postCalls.Load(), "refreshing offers must not touch wanted posts")
}

func TestRefreshSectionUnknownSection(t *testing.T) {
	p := newTestPreloader(newFakeKV(), events.NewBus())
	err := p.RefreshSection(context.Background(), uuid.New(), events.Section("bogus"))
	assert.Error(t, err)
}

func TestLoaderErrorDegradesToEmptySection(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return nil, assert.AnError
		}),
		wantedPostTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return []wantedpost.WantedPost{{ID: uuid.New()}}, nil
		}),
	)

	data, err := p.Preload(ctx, userID, false)
	require.NoError(t, err, "a failing section must not fail the preload")

	assert.Empty(t, data.Offers)
	assert.Len(t, data.WantedPosts, 1)

	// Failed sections are not persisted, so the next forced cycle retries.
	_, found, err := p.store.LoadSection(ctx, userID, events.SectionOffers)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	oldEntries := staticOffers(1)
	newEntries := staticOffers(1)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				return oldEntries, nil
			}
			return newEntries, nil
		}),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.RefreshSection(ctx, userID, events.SectionOffers)
	}()

	<-started
	// A second refresh supersedes the in-flight one.
	require.NoError(t, p.RefreshSection(ctx, userID, events.SectionOffers))

	close(release)
	<-done

	data, ok := p.CachedData(userID)
	require.True(t, ok)
	require.Len(t, data.Offers, 1)
	assert.Equal(t, newEntries[0].ID, data.Offers[0].ID,
		"a slow stale fetch must not overwrite a newer result")
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	bus := events.NewBus()
	userID := uuid.New()

	p := newTestPreloader(kv, bus,
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return staticOffers(3), nil
		}),
	)

	type snapshot struct {
		data  Data
		state LoadingState
	}
	received := make(chan snapshot, 16)
	cancel := p.Subscribe(userID, func(d Data, s LoadingState) {
		received <- snapshot{data: d, state: s}
	})
	defer cancel()

	_, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)

	var sawLoading, sawSettled bool
	deadline := time.After(2 * time.Second)
	for !(sawLoading && sawSettled) {
		select {
		case snap := <-received:
			if snap.state.Overall {
				sawLoading = true
			}
			if !snap.state.Overall && len(snap.data.Offers) == 3 {
				sawSettled = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshots (loading=%v settled=%v)", sawLoading, sawSettled)
		}
	}
}

func TestSnapshotsDeliveredInOrder(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	const rounds = 50

	var calls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return staticOffers(int(calls.Add(1))), nil
		}),
	)

	var mu sync.Mutex
	var delivered int
	var last Data
	cancel := p.Subscribe(userID, func(d Data, _ LoadingState) {
		mu.Lock()
		delivered++
		last = d
		mu.Unlock()
	})
	defer cancel()

	for i := 0; i < rounds; i++ {
		require.NoError(t, p.RefreshSection(ctx, userID, events.SectionOffers))
	}

	// Each refresh emits two snapshots: flag up, flag down with the data.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == rounds*2
	}, 2*time.Second, 5*time.Millisecond, "all snapshots must be delivered")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, last.Offers, rounds,
		"the final snapshot a subscriber holds must reflect the newest state")
}

func TestEventDrivenRefresh(t *testing.T) {
	kv := newFakeKV()
	bus := events.NewBus()
	userID := uuid.New()

	var calls atomic.Int32
	p := newTestPreloader(kv, bus,
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			calls.Add(1)
			return staticOffers(1), nil
		}),
	)

	cancel := p.Subscribe(userID, func(Data, LoadingState) {})
	defer cancel()

	bus.Publish(events.DashboardEvent{
		EventType: events.EventOfferChanged,
		Section:   events.SectionOffers,
		UserIDs:   []uuid.UUID{userID},
	})

	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond, "a published event must re-fetch its section")
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return staticOffers(1), nil
		}),
	)

	_, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)

	require.NoError(t, p.ClearCache(ctx, userID))

	_, ok := p.CachedData(userID)
	assert.False(t, ok, "in-memory snapshot must be dropped")
	assert.False(t, p.store.IsFresh(ctx, userID, time.Now()))
	assert.Zero(t, kv.len())
}

func TestClearCacheDiscardsInFlightFetch(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	started := make(chan struct{})
	release := make(chan struct{})

	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			close(started)
			<-release
			return staticOffers(1), nil
		}),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.RefreshSection(ctx, userID, events.SectionOffers)
	}()

	<-started
	require.NoError(t, p.ClearCache(ctx, userID))

	close(release)
	<-done

	data, ok := p.CachedData(userID)
	if ok {
		assert.Empty(t, data.Offers,
			"a fetch in flight at clear time must not repopulate the cache")
	}

	// The superseded refresh must not resurrect the freshness timestamp.
	assert.False(t, p.store.IsFresh(ctx, userID, time.Now()),
		"a cleared cache must not read as fresh")
	assert.Zero(t, kv.len(), "clearing must leave no keys behind")
}

func TestAllSectionsFailingLeavesSnapshotStale(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	userID := uuid.New()

	var calls atomic.Int32
	p := newTestPreloader(kv, events.NewBus(),
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			calls.Add(1)
			return nil, assert.AnError
		}),
	)

	data, err := p.Preload(ctx, userID, false)
	require.NoError(t, err)
	assert.Empty(t, data.Offers)

	// Freshness follows the last successful write, so an all-empty
	// snapshot is not served for the whole window.
	assert.False(t, p.store.IsFresh(ctx, userID, time.Now()))

	_, err = p.Preload(ctx, userID, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "the next preload retries the fetch")
}

func TestDisposeTearsDownSubscription(t *testing.T) {
	kv := newFakeKV()
	bus := events.NewBus()
	userID := uuid.New()

	p := newTestPreloader(kv, bus,
		offerTestLoader(func(ctx context.Context, _ uuid.UUID) (interface{}, error) {
			return staticOffers(1), nil
		}),
	)

	p.Subscribe(userID, func(Data, LoadingState) {})
	require.Equal(t, 1, bus.SubscriberCount(userID))

	p.Dispose(userID)
	assert.Zero(t, bus.SubscriberCount(userID))
	_, ok := p.CachedData(userID)
	assert.False(t, ok)
}

func TestLoadingStateOverallInvariant(t *testing.T) {
	ls := newLoadingState()
	assert.False(t, ls.Overall)

	ls.set(events.SectionOffers, true)
	assert.True(t, ls.Overall)

	ls.set(events.SectionOrders, true)
	ls.set(events.SectionOffers, false)
	assert.True(t, ls.Overall, "overall stays set while any section loads")

	ls.set(events.SectionOrders, false)
	assert.False(t, ls.Overall, "overall clears only when every section settles")
}
