package queryflight

import (
	"context"
	"time"

	"github.com/unkn0wn-root/queryflight/bus"
	"github.com/unkn0wn-root/queryflight/store"
)

// FetchFunc produces the value for a query. It is opaque to the engine: the
// engine only observes success, failure, or that the caller stopped waiting.
// The context passed in is detached from any individual caller, so the
// function is not interrupted when one of several deduplicated callers
// abandons its wait.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// MutationFunc executes a one-shot side-effecting operation. vars is the
// caller's opaque variables value, handed through unchanged.
type MutationFunc[V any] func(ctx context.Context, vars any) (V, error)

// Engine is the query/mutation coordinator. One engine instance owns its
// store, in-flight registry, and timer registry exclusively; callers interact
// with those only through this surface.
type Engine[V any] interface {
	// Query resolves key through the cache, an in-flight fetch, or a new
	// fetch. It never returns a Go error; failures are encoded in the state.
	Query(ctx context.Context, key Key, fetch FetchFunc[V], opts *QueryOptions[V]) QueryState[V]

	// Prefetch runs Query in the background and discards the result.
	Prefetch(ctx context.Context, key Key, fetch FetchFunc[V], opts *QueryOptions[V])

	// Mutate executes fn(vars) with bounded, awaited retries and invokes the
	// option callbacks once on final settlement.
	Mutate(ctx context.Context, fn MutationFunc[V], vars any, opts *MutationOptions[V]) MutationState[V]

	// Invalidate removes the entry, cancels any refresh timer for key, and
	// notifies the invalidation bus. Invalidating an absent key is a no-op.
	Invalidate(ctx context.Context, key Key) error

	// Reset is Invalidate under another name; it exists so call sites can
	// say what they mean.
	Reset(ctx context.Context, key Key) error

	// Get reads the stored value directly, bypassing the fetch path.
	Get(ctx context.Context, key Key) (V, bool, error)

	// Set writes a value directly with the engine's default cache time,
	// bypassing the fetch path (optimistic updates).
	Set(ctx context.Context, key Key, value V) error

	// Stats returns a structural occupancy snapshot.
	Stats(ctx context.Context) (CacheStats, error)

	Enabled() bool

	// Close synchronously cancels every registered timer and releases the
	// store. No background refresh fires after Close returns.
	Close(ctx context.Context) error
}

// Options tune the engine. All fields are optional; zero values fall back to
// library defaults. The configuration is immutable after New.
type Options[V any] struct {
	// Store holds cache entries. Defaults to an in-process memory store.
	Store store.Store[V]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// Bus, when set, is notified on every Invalidate/Reset.
	Bus bus.Bus

	// Disabled turns the engine into a pass-through: fetches run, nothing is
	// cached, no dedup, no timers.
	Disabled bool

	// CacheTime is the default time-to-live of written entries; 0 => 5m.
	CacheTime time.Duration

	// StaleTime is the default age after which an entry is servable but
	// triggers a background revalidation. 0 or >= CacheTime collapses to
	// two-state freshness (fresh until CacheTime elapses).
	StaleTime time.Duration

	// RetryCount is the default number of retries after the initial fetch
	// attempt; 0 => no retries.
	RetryCount int

	// RetryDelay is the base delay between retries; 0 => 500ms.
	RetryDelay time.Duration

	// Backoff shapes the retry delay; nil => ConstantBackoff.
	Backoff BackoffFunc

	// DisableDedupe turns off single-flight deduplication by default.
	DisableDedupe bool

	// RevalidateStale enables serve-stale-while-revalidate for expired
	// entries by default.
	RevalidateStale bool

	// BackgroundRefresh registers a refresh timer after every successful
	// fetch by default (per-call options can still opt in individually).
	BackgroundRefresh bool

	// RefreshInterval is the interval for background-refresh timers when a
	// call enables refresh without naming its own interval; 0 => 30s.
	RefreshInterval time.Duration
}

// New constructs an Engine.
func New[V any](opts Options[V]) (Engine[V], error) {
	return newEngine[V](opts)
}
