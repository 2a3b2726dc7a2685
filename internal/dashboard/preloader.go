package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Callback receives a snapshot of the user's data and loading state after
// every change. Snapshots are copies; callbacks may keep them.
type Callback func(data Data, state LoadingState)

// Preloader assembles per-user dashboard snapshots from the domain
// services, keeps them warm in the cache store, and pushes updates to
// subscribers as sections change.
//
// One Preloader serves all users. Per-user state is created lazily and torn
// down by Dispose.
type Preloader struct {
	store   *Store
	loaders []sectionLoader
	bus     *events.Bus
	logger  *zap.Logger

	mu         sync.Mutex
	data       map[uuid.UUID]*Data
	loading    map[uuid.UUID]*LoadingState
	seq        map[uuid.UUID]map[events.Section]uint64
	callbacks  map[uuid.UUID]map[int]Callback
	busCancels map[uuid.UUID]func()
	pending    map[uuid.UUID][]pendingNotification
	delivering map[uuid.UUID]bool
	nextCBID   int
}

// pendingNotification is one queued snapshot delivery. Targets are captured when
// the snapshot is taken so a later unsubscribe does not drop it mid-queue.
type pendingNotification struct {
	data    Data
	state   LoadingState
	targets []Callback
}

// NewPreloader wires a preloader over the given services and cache store.
func NewPreloader(store *Store, svc Services, limits Limits, bus *events.Bus, logger *zap.Logger) *Preloader {
	return newPreloader(store, buildLoaders(svc, limits.withDefaults()), bus, logger)
}

func newPreloader(store *Store, loaders []sectionLoader, bus *events.Bus, logger *zap.Logger) *Preloader {
	return &Preloader{
		store:      store,
		loaders:    loaders,
		bus:        bus,
		logger:     logger,
		data:       make(map[uuid.UUID]*Data),
		loading:    make(map[uuid.UUID]*LoadingState),
		seq:        make(map[uuid.UUID]map[events.Section]uint64),
		callbacks:  make(map[uuid.UUID]map[int]Callback),
		busCancels: make(map[uuid.UUID]func()),
		pending:    make(map[uuid.UUID][]pendingNotification),
		delivering: make(map[uuid.UUID]bool),
	}
}

func (p *Preloader) userData(userID uuid.UUID) *Data {
	d, ok := p.data[userID]
	if !ok {
		d = &Data{}
		for _, l := range p.loaders {
			l.apply(d, l.empty())
		}
		p.data[userID] = d
	}
	return d
}

func (p *Preloader) userLoading(userID uuid.UUID) *LoadingState {
	ls, ok := p.loading[userID]
	if !ok {
		state := newLoadingState()
		ls = &state
		p.loading[userID] = ls
	}
	return ls
}

// nextSeq advances the sequence token for a (user, section) pair. A fetch
// whose token is no longer current when it completes is discarded, so a
// slow older fetch can never overwrite a newer one.
func (p *Preloader) nextSeq(userID uuid.UUID, section events.Section) uint64 {
	m, ok := p.seq[userID]
	if !ok {
		m = make(map[events.Section]uint64)
		p.seq[userID] = m
	}
	m[section]++
	return m[section]
}

func (p *Preloader) currentSeq(userID uuid.UUID, section events.Section) uint64 {
	if m, ok := p.seq[userID]; ok {
		return m[section]
	}
	return 0
}

// notifyLocked snapshots state and queues it for delivery. A single
// goroutine per user drains the queue in FIFO order, so subscribers always
// see snapshots in the order they were taken and the last one delivered is
// the newest. Callbacks run off the mutex and may block.
func (p *Preloader) notifyLocked(userID uuid.UUID) {
	cbs := p.callbacks[userID]
	if len(cbs) == 0 {
		return
	}

	data := *p.userData(userID)
	state := p.userLoading(userID).clone()

	targets := make([]Callback, 0, len(cbs))
	for _, cb := range cbs {
		targets = append(targets, cb)
	}

	p.pending[userID] = append(p.pending[userID], pendingNotification{data: data, state: state, targets: targets})
	if !p.delivering[userID] {
		p.delivering[userID] = true
		go p.deliver(userID)
	}
}

// deliver drains the user's notification queue, one snapshot at a time.
func (p *Preloader) deliver(userID uuid.UUID) {
	for {
		p.mu.Lock()
		queue := p.pending[userID]
		if len(queue) == 0 {
			delete(p.delivering, userID)
			delete(p.pending, userID)
			p.mu.Unlock()
			return
		}
		n := queue[0]
		p.pending[userID] = queue[1:]
		p.mu.Unlock()

		for _, cb := range n.targets {
			cb(n.data, n.state)
		}
	}
}

// Preload fills the user's dashboard. When the stored snapshot is inside
// the freshness window and force is false, it is served without touching
// the database; otherwise every section is fetched concurrently. Individual
// section failures degrade to empty data rather than failing the preload.
func (p *Preloader) Preload(ctx context.Context, userID uuid.UUID, force bool) (Data, error) {
	if !force && p.store.IsFresh(ctx, userID, time.Now()) {
		if data, ok := p.hydrate(ctx, userID); ok {
			return data, nil
		}
		// Fall through to a full fetch when hydration fails.
	}

	var (
		superseded atomic.Bool
		succeeded  atomic.Bool
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range p.loaders {
		loader := l
		g.Go(func() error {
			applied, err := p.runLoader(gctx, userID, loader)
			if !applied {
				superseded.Store(true)
			}
			if applied && err == nil {
				succeeded.Store(true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Data{}, err
	}

	// Freshness marks the last successful write. The timestamp stays
	// untouched when a ClearCache superseded the fetch or when every
	// section failed, so an all-empty snapshot never counts as fresh.
	now := time.Now()
	if !superseded.Load() && succeeded.Load() {
		if err := p.store.Touch(ctx, userID, now); err != nil {
			p.logger.Warn("Failed to write dashboard timestamp",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.userData(userID)
	d.LastUpdated = now
	p.notifyLocked(userID)
	return *d, nil
}

// runLoader executes one section fetch end to end: flag up, fetch, stale
// check, apply, persist, flag down, notify. It reports whether the result
// was applied (a newer fetch or ClearCache discards it) and any load error.
func (p *Preloader) runLoader(ctx context.Context, userID uuid.UUID, loader sectionLoader) (bool, error) {
	p.mu.Lock()
	token := p.nextSeq(userID, loader.section)
	p.userLoading(userID).set(loader.section, true)
	p.notifyLocked(userID)
	p.mu.Unlock()

	v, err := loader.load(ctx, userID)
	if err != nil {
		p.logger.Warn("Dashboard section load failed, serving empty section",
			zap.String("user_id", userID.String()),
			zap.String("section", string(loader.section)),
			zap.Error(err))
		v = loader.empty()
	}

	p.mu.Lock()
	if p.currentSeq(userID, loader.section) != token {
		// A newer fetch for this section superseded us.
		p.userLoading(userID).set(loader.section, false)
		p.notifyLocked(userID)
		p.mu.Unlock()
		return false, err
	}
	loader.apply(p.userData(userID), v)
	p.userLoading(userID).set(loader.section, false)
	p.notifyLocked(userID)
	p.mu.Unlock()

	if err == nil {
		if saveErr := p.store.SaveSection(ctx, userID, loader.section, v); saveErr != nil {
			p.logger.Warn("Failed to persist dashboard section",
				zap.String("user_id", userID.String()),
				zap.String("section", string(loader.section)),
				zap.Error(saveErr))
		}
	}
	return true, err
}

// RefreshSection re-fetches a single section, leaving all others untouched.
func (p *Preloader) RefreshSection(ctx context.Context, userID uuid.UUID, section events.Section) error {
	loader, ok := p.loaderFor(section)
	if !ok {
		return fmt.Errorf("unknown dashboard section: %s", section)
	}

	applied, err := p.runLoader(ctx, userID, loader)
	if !applied || err != nil {
		// Superseded or failed fetches leave the freshness timestamp
		// alone; a ClearCache that raced with us must stay cleared.
		return nil
	}

	if err := p.store.Touch(ctx, userID, time.Now()); err != nil {
		p.logger.Warn("Failed to write dashboard timestamp",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
	return nil
}

func (p *Preloader) loaderFor(section events.Section) (sectionLoader, bool) {
	for _, l := range p.loaders {
		if l.section == section {
			return l, true
		}
	}
	return sectionLoader{}, false
}

// hydrate rebuilds the in-memory snapshot from stored sections. Returns
// false when any section is missing or undecodable, which forces a full
// fetch instead.
func (p *Preloader) hydrate(ctx context.Context, userID uuid.UUID) (Data, bool) {
	values := make(map[events.Section]interface{}, len(p.loaders))
	for _, l := range p.loaders {
		raw, found, err := p.store.LoadSection(ctx, userID, l.section)
		if err != nil || !found {
			return Data{}, false
		}
		v, err := l.decode(raw)
		if err != nil {
			p.logger.Warn("Discarding undecodable dashboard section",
				zap.String("user_id", userID.String()),
				zap.String("section", string(l.section)),
				zap.Error(err))
			return Data{}, false
		}
		values[l.section] = v
	}

	last := p.store.LastUpdated(ctx, userID)

	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.userData(userID)
	for _, l := range p.loaders {
		l.apply(d, values[l.section])
	}
	d.LastUpdated = last
	p.notifyLocked(userID)
	return *d, true
}

// Fresh reports whether the user's persisted snapshot is inside the
// freshness window.
func (p *Preloader) Fresh(ctx context.Context, userID uuid.UUID) bool {
	return p.store.IsFresh(ctx, userID, time.Now())
}

// CachedData returns the in-memory snapshot, if one has been assembled.
func (p *Preloader) CachedData(userID uuid.UUID) (Data, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.data[userID]
	if !ok {
		return Data{}, false
	}
	return *d, true
}

// LoadingState returns a snapshot of the user's section flags.
func (p *Preloader) LoadingState(userID uuid.UUID) LoadingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userLoading(userID).clone()
}

// Subscribe registers a callback for dashboard changes and starts the
// user's event subscription if it is not yet running. The returned cancel
// removes the callback; the event subscription stays until Dispose.
func (p *Preloader) Subscribe(userID uuid.UUID, cb Callback) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.callbacks[userID] == nil {
		p.callbacks[userID] = make(map[int]Callback)
	}
	p.nextCBID++
	id := p.nextCBID
	p.callbacks[userID][id] = cb

	p.ensureEventSubscriptionLocked(userID)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.callbacks[userID], id)
	}
}

// ensureEventSubscriptionLocked attaches the user to the event bus so that
// domain changes re-fetch their section.
func (p *Preloader) ensureEventSubscriptionLocked(userID uuid.UUID) {
	if _, ok := p.busCancels[userID]; ok {
		return
	}

	cancel := p.bus.Subscribe(userID, func(ev events.DashboardEvent) {
		if ev.EventType == events.EventCacheInvalidate {
			if err := p.ClearCache(context.Background(), userID); err != nil {
				p.logger.Warn("Failed to clear dashboard cache on invalidate",
					zap.String("user_id", userID.String()),
					zap.Error(err))
			}
			return
		}
		if !ev.Section.Valid() {
			return
		}
		go func() {
			if err := p.RefreshSection(context.Background(), userID, ev.Section); err != nil {
				p.logger.Warn("Event-driven section refresh failed",
					zap.String("user_id", userID.String()),
					zap.String("section", string(ev.Section)),
					zap.Error(err))
			}
		}()
	})
	p.busCancels[userID] = cancel
}

// ClearCache removes the user's stored snapshot and resets in-memory data.
// Fetches in flight at clear time are superseded so their results never
// repopulate the cleared state.
func (p *Preloader) ClearCache(ctx context.Context, userID uuid.UUID) error {
	if err := p.store.Clear(ctx, userID); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, l := range p.loaders {
		p.nextSeq(userID, l.section)
	}
	delete(p.data, userID)
	p.notifyLocked(userID)
	return nil
}

// Dispose tears down all per-user state: callbacks, event subscription,
// loading flags and in-memory data. Stored snapshots remain until they
// expire or ClearCache removes them.
func (p *Preloader) Dispose(userID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cancel, ok := p.busCancels[userID]; ok {
		cancel()
		delete(p.busCancels, userID)
	}
	delete(p.callbacks, userID)
	delete(p.data, userID)
	delete(p.loading, userID)
	delete(p.seq, userID)
	// Queued snapshots for a disposed user are dropped; the delivery
	// goroutine exits once it sees the empty queue.
	delete(p.pending, userID)
}
