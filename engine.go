package queryflight

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/queryflight/bus"
	"github.com/unkn0wn-root/queryflight/internal/flight"
	"github.com/unkn0wn-root/queryflight/internal/timers"
	"github.com/unkn0wn-root/queryflight/store"
)

type engine[V any] struct {
	store store.Store[V]
	log   Logger
	hooks Hooks
	bus   bus.Bus

	enabled bool

	cacheTime         time.Duration
	staleTime         time.Duration
	retries           int
	retryDelay        time.Duration
	backoff           BackoffFunc
	dedupe            bool
	revalidate        bool
	backgroundRefresh bool
	refreshInterval   time.Duration

	flight *flight.Registry
	timers *timers.Registry

	closeOnce sync.Once
}

func newEngine[V any](opts Options[V]) (*engine[V], error) {
	e := &engine[V]{
		enabled: !opts.Disabled,
		flight:  flight.New(),
		timers:  timers.New(),
	}

	e.store = opts.Store
	if e.store == nil {
		e.store = store.NewMemory[V](store.MemoryConfig{})
	}
	e.log = opts.Logger
	if e.log == nil {
		e.log = NopLogger{}
	}
	e.hooks = opts.Hooks
	if e.hooks == nil {
		e.hooks = NopHooks{}
	}
	e.bus = opts.Bus
	if e.bus == nil {
		e.bus = bus.Nop{}
	}

	e.cacheTime = coalesce[time.Duration](opts.CacheTime, defaultCacheTime)
	e.staleTime = opts.StaleTime
	e.retries = opts.RetryCount
	e.retryDelay = coalesce[time.Duration](opts.RetryDelay, defaultRetryDelay)
	e.refreshInterval = coalesce[time.Duration](opts.RefreshInterval, defaultRefresh)
	e.backoff = opts.Backoff
	if e.backoff == nil {
		e.backoff = ConstantBackoff
	}
	e.dedupe = !opts.DisableDedupe
	e.revalidate = opts.RevalidateStale
	e.backgroundRefresh = opts.BackgroundRefresh

	return e, nil
}

func (e *engine[V]) Enabled() bool { return e.enabled }

func (e *engine[V]) Close(ctx context.Context) error {
	var err error
	e.closeOnce.Do(func() {
		e.timers.Close()
		err = e.store.Close(ctx)
		if berr := e.bus.Close(ctx); err == nil {
			err = berr
		}
	})
	return err
}

// Get reads the stored value directly, bypassing the fetch path. Expired
// entries are reported as a miss.
func (e *engine[V]) Get(ctx context.Context, key Key) (V, bool, error) {
	var zero V
	if !key.Valid() {
		return zero, false, ErrEmptyKey
	}
	ent, ok, err := e.store.Get(ctx, key.Canon())
	if err != nil || !ok {
		return zero, false, err
	}
	if ent.Expired(time.Now()) {
		return zero, false, nil
	}
	return ent.Value, true, nil
}

// Set writes value with the engine's default cache time, bypassing the
// fetch path. Used for optimistic updates.
func (e *engine[V]) Set(ctx context.Context, key Key, value V) error {
	if !key.Valid() {
		return ErrEmptyKey
	}
	now := time.Now()
	return e.store.Set(ctx, key.Canon(), store.Entry[V]{
		Value:       value,
		CreatedAt:   now,
		LastUpdated: now,
		ExpiresAt:   now.Add(e.cacheTime),
	})
}

// Invalidate removes the entry and any refresh timer for key, then notifies
// the invalidation bus. Invalidating an absent key is a no-op, not an error;
// bus failures are hooked and logged, never returned.
func (e *engine[V]) Invalidate(ctx context.Context, key Key) error {
	if !key.Valid() {
		return ErrEmptyKey
	}
	k := key.Canon()

	e.timers.Cancel(k)
	e.flight.Forget(k)

	err := e.store.Del(ctx, k)

	category, subKey := key.Split()
	if nerr := e.bus.NotifyInvalidate(ctx, category, subKey); nerr != nil {
		e.hooks.BusNotifyFailed(k, nerr)
		e.log.Warn("invalidation bus notify failed", Fields{"key": k, "err": nerr})
	}

	e.log.Debug("invalidated key", Fields{"key": k})
	return err
}

// Reset has the same effect as Invalidate for this engine.
func (e *engine[V]) Reset(ctx context.Context, key Key) error {
	return e.Invalidate(ctx, key)
}

// Stats returns a structural occupancy snapshot: entry counts by freshness
// plus registry sizes. It is not a historical hit/miss rate.
func (e *engine[V]) Stats(ctx context.Context) (CacheStats, error) {
	occ, err := e.store.Stats(ctx)
	if err != nil {
		return CacheStats{}, err
	}
	st := CacheStats{
		Entries:  occ.Entries,
		Fresh:    occ.Fresh,
		Expired:  occ.Expired,
		InFlight: e.flight.Len(),
		Timers:   e.timers.Len(),
	}
	if occ.Entries > 0 {
		st.FreshRatio = float64(occ.Fresh) / float64(occ.Entries)
	}
	return st, nil
}
