package queryflight

import "time"

// QueryOptions override the engine defaults for one call. A nil *QueryOptions
// means "all defaults". Zero-valued fields fall back to the engine default;
// explicit opt-outs use the NoCache / NoRetry sentinels so they cannot be
// confused with "unset".
type QueryOptions[V any] struct {
	// Disabled returns the idle state immediately: no registry is touched
	// and the fetch function is never invoked.
	Disabled bool

	// CacheTime is this call's entry TTL. 0 => engine default; NoCache
	// disables caching for the call entirely.
	CacheTime time.Duration

	// StaleTime is this call's stale threshold (see Options.StaleTime).
	StaleTime time.Duration

	// NoDedupe opts this call out of single-flight deduplication.
	NoDedupe bool

	// RevalidateStale enables serve-stale-while-revalidate for this call
	// even when the engine default is off.
	RevalidateStale bool

	// BackgroundRefresh registers a refresh timer for the key after a
	// successful fetch, using the engine's default interval.
	BackgroundRefresh bool

	// Refresh, when > 0, registers a background-refresh timer for the key
	// after a successful fetch with this interval, replacing any existing
	// timer. The timer re-runs the query, discarding results.
	Refresh time.Duration

	// RetryCount: 0 => engine default, NoRetry => no retries.
	RetryCount int

	// RetryDelay is the base delay between retries; 0 => engine default.
	RetryDelay time.Duration

	// Backoff shapes the retry delay; nil => engine default.
	Backoff BackoffFunc

	// Select transforms the fetched value before it is cached and returned.
	Select func(V) V
}

// MutationOptions tune one Mutate call. Callbacks fire once, on final
// settlement, after any retries are exhausted or the mutation succeeds.
type MutationOptions[V any] struct {
	// RetryCount: 0 => engine default, NoRetry => no retries.
	RetryCount int

	// RetryDelay is the base delay between retries; 0 => engine default.
	RetryDelay time.Duration

	// Backoff shapes the retry delay; nil => engine default.
	Backoff BackoffFunc

	OnSuccess func(v V, vars any)
	OnError   func(err error, vars any)
	OnSettled func(v V, err error, vars any)
}

// queryConfig is the fully resolved per-call configuration.
type queryConfig[V any] struct {
	cacheTime  time.Duration // -1 => caching off for the call
	staleTime  time.Duration
	dedupe     bool
	revalidate bool
	refresh    time.Duration
	retries    int
	retryDelay time.Duration
	backoff    BackoffFunc
	selectFn   func(V) V
}

func (e *engine[V]) resolveQuery(opts *QueryOptions[V]) queryConfig[V] {
	cfg := queryConfig[V]{
		cacheTime:  e.cacheTime,
		staleTime:  e.staleTime,
		dedupe:     e.dedupe,
		revalidate: e.revalidate,
		retries:    e.retries,
		retryDelay: e.retryDelay,
		backoff:    e.backoff,
	}
	if e.backgroundRefresh {
		cfg.refresh = e.refreshInterval
	}
	if opts == nil {
		return cfg
	}
	if opts.BackgroundRefresh {
		cfg.refresh = e.refreshInterval
	}
	if opts.CacheTime != 0 {
		cfg.cacheTime = opts.CacheTime
	}
	if opts.StaleTime != 0 {
		cfg.staleTime = opts.StaleTime
	}
	if opts.NoDedupe {
		cfg.dedupe = false
	}
	if opts.RevalidateStale {
		cfg.revalidate = true
	}
	if opts.Refresh > 0 {
		cfg.refresh = opts.Refresh
	}
	switch {
	case opts.RetryCount == NoRetry:
		cfg.retries = 0
	case opts.RetryCount > 0:
		cfg.retries = opts.RetryCount
	}
	if opts.RetryDelay > 0 {
		cfg.retryDelay = opts.RetryDelay
	}
	if opts.Backoff != nil {
		cfg.backoff = opts.Backoff
	}
	cfg.selectFn = opts.Select
	return cfg
}

// caching reports whether this call writes/reads the store at all.
func (c queryConfig[V]) caching() bool { return c.cacheTime > 0 }

// staleAfter returns the effective stale threshold: staleTime when it is a
// shorter window than the cache time, otherwise the cache time itself
// (two-state freshness).
func (c queryConfig[V]) staleAfter() time.Duration {
	if c.staleTime > 0 && c.staleTime < c.cacheTime {
		return c.staleTime
	}
	return c.cacheTime
}
