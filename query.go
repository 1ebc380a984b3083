package queryflight

import (
	"context"
	"time"

	"github.com/unkn0wn-root/queryflight/internal/flight"
	"github.com/unkn0wn-root/queryflight/store"
)

// Query resolves key in priority order: disabled call, fresh cache hit,
// stale-but-servable hit (served plus background revalidation), expired
// entry with stale revalidation (served one last time plus an async
// re-query), dedup join, new fetch with bounded retry and an abort race
// against the caller's context.
//
// Query never returns a Go error; every outcome is encoded in the state.
func (e *engine[V]) Query(ctx context.Context, key Key, fetch FetchFunc[V], opts *QueryOptions[V]) QueryState[V] {
	k := key.Canon()
	if opts != nil && opts.Disabled {
		// idle: no registry is touched, fetch never runs
		return QueryState[V]{Key: k}
	}
	if !key.Valid() {
		return QueryState[V]{Key: k, Err: ErrEmptyKey}
	}

	cfg := e.resolveQuery(opts)
	if !e.enabled {
		// pass-through engine: fetches run, nothing else does
		cfg.cacheTime = NoCache
		cfg.dedupe = false
		cfg.revalidate = false
		cfg.refresh = 0
	}
	return e.run(ctx, key, k, fetch, cfg, cfg.retries)
}

// Prefetch runs Query in the background and discards the result. Failures
// surface only through hooks and logs.
func (e *engine[V]) Prefetch(ctx context.Context, key Key, fetch FetchFunc[V], opts *QueryOptions[V]) {
	bg := context.WithoutCancel(ctx)
	go func() {
		st := e.Query(bg, key, fetch, opts)
		if st.Errored() {
			e.log.Debug("prefetch failed", Fields{"key": st.Key, "err": st.Err})
		}
	}()
}

func (e *engine[V]) run(ctx context.Context, key Key, k string, fetch FetchFunc[V], cfg queryConfig[V], budget int) QueryState[V] {
	if cfg.caching() {
		if ent, ok, err := e.store.Get(ctx, k); err == nil && ok {
			if st, served := e.serveCached(ctx, key, k, ent, fetch, cfg); served {
				return st
			}
		}
	}
	return e.fetch(ctx, key, k, fetch, cfg, budget)
}

// serveCached decides the three freshness states. Returns served=false when
// the entry cannot be served and the caller must fall through to a fetch.
func (e *engine[V]) serveCached(ctx context.Context, key Key, k string, ent store.Entry[V], fetch FetchFunc[V], cfg queryConfig[V]) (QueryState[V], bool) {
	now := time.Now()

	if !ent.Expired(now) {
		if now.Before(ent.LastUpdated.Add(cfg.staleAfter())) {
			// fresh
			return e.hit(k, ent.Value), true
		}
		// stale-but-servable: entry stays; the refresh bypasses the
		// cache-read path so it cannot land back here.
		e.hooks.StaleServed(k)
		e.log.Debug("serving stale, revalidating", Fields{"key": k})
		go e.refresh(context.WithoutCancel(ctx), k, fetch, cfg)
		return e.hit(k, ent.Value), true
	}

	if cfg.revalidate {
		// expired: drop the entry before the async re-query, otherwise the
		// re-query would re-enter this branch forever instead of fetching.
		_ = e.store.Del(ctx, k)
		e.hooks.StaleServed(k)
		e.log.Debug("serving expired, re-querying", Fields{"key": k})
		bg := context.WithoutCancel(ctx)
		go func() {
			st := e.run(bg, key, k, fetch, cfg, cfg.retries)
			if st.Errored() {
				e.hooks.RefreshFailed(k, st.Err)
				e.log.Warn("stale revalidation failed", Fields{"key": k, "err": st.Err})
			}
		}()
		return e.hit(k, ent.Value), true
	}

	return QueryState[V]{}, false
}

func (e *engine[V]) hit(k string, v V) QueryState[V] {
	return QueryState[V]{Key: k, Data: v, Success: true, FromCache: true}
}

// fetch races one attempt against the caller's context and retries the whole
// query (not just the bare fetch) while budget remains.
func (e *engine[V]) fetch(ctx context.Context, key Key, k string, fetch FetchFunc[V], cfg queryConfig[V], budget int) QueryState[V] {
	res := e.await(ctx, k, fetch, cfg)
	if res.aborted {
		e.hooks.FetchAbandoned(k)
		return QueryState[V]{Key: k, Err: &AbortError{Key: k, Cause: res.cause}}
	}
	if res.err == nil {
		return QueryState[V]{Key: k, Data: res.val, Success: true}
	}

	if budget > 0 {
		attempt := cfg.retries - budget + 1
		delay := cfg.backoff(attempt, cfg.retryDelay)
		e.hooks.RetryScheduled(k, attempt, delay)
		e.log.Debug("retrying query", Fields{"key": k, "attempt": attempt, "delay": delay})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			e.hooks.FetchAbandoned(k)
			return QueryState[V]{Key: k, Err: &AbortError{Key: k, Cause: ctx.Err()}}
		}
		return e.run(ctx, key, k, fetch, cfg, budget-1)
	}

	return QueryState[V]{Key: k, Err: &FetchError{Key: k, Err: res.err}}
}

type fetchResult[V any] struct {
	val     V
	err     error
	aborted bool
	cause   error
}

// await starts (or joins) the fetch for k and waits for it or the caller's
// context, whichever settles first. Losing the race abandons only this
// caller's wait: the fetch runs on a detached context and still writes the
// store for future callers.
func (e *engine[V]) await(ctx context.Context, k string, fetch FetchFunc[V], cfg queryConfig[V]) fetchResult[V] {
	bg := context.WithoutCancel(ctx)

	var ch <-chan flight.Result
	if cfg.dedupe {
		ch = e.flight.DoChan(k, func() (any, error) {
			return e.execute(bg, k, fetch, cfg)
		})
	} else {
		direct := make(chan flight.Result, 1)
		done := e.flight.Track(k)
		go func() {
			v, err := e.execute(bg, k, fetch, cfg)
			done()
			direct <- flight.Result{Val: v, Err: err}
		}()
		ch = direct
	}

	select {
	case r := <-ch:
		if r.Err != nil {
			return fetchResult[V]{err: r.Err}
		}
		if r.Shared {
			e.hooks.DedupJoined(k)
		}
		return fetchResult[V]{val: r.Val.(V)}
	case <-ctx.Done():
		return fetchResult[V]{aborted: true, cause: ctx.Err()}
	}
}

// execute is the leader's body: run the fetch, apply Select, write the store,
// and (re)register the background-refresh timer. Store and timer failures
// never fail the fetch itself.
func (e *engine[V]) execute(ctx context.Context, k string, fetch FetchFunc[V], cfg queryConfig[V]) (V, error) {
	v, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if cfg.selectFn != nil {
		v = cfg.selectFn(v)
	}

	if cfg.caching() {
		now := time.Now()
		ent := store.Entry[V]{
			Value:       v,
			CreatedAt:   now,
			LastUpdated: now,
			ExpiresAt:   now.Add(cfg.cacheTime),
		}
		if serr := e.store.Set(ctx, k, ent); serr != nil {
			e.hooks.StoreWriteFailed(k, serr)
			e.log.Warn("store write failed", Fields{"key": k, "err": serr})
		}
	}

	if cfg.refresh > 0 {
		// fire-and-forget: nobody waits on refresh outcomes
		rcfg := cfg
		rcfg.refresh = 0 // the running timer keeps its own registration
		e.timers.Register(k, cfg.refresh, func() {
			e.refresh(context.Background(), k, fetch, rcfg)
		})
	}

	return v, nil
}

// refresh re-fetches k without consulting the cache, with the call's retry
// budget. Used by the stale-but-servable path and refresh timers; errors go
// to hooks/logs only.
func (e *engine[V]) refresh(ctx context.Context, k string, fetch FetchFunc[V], cfg queryConfig[V]) {
	budget := cfg.retries
	for {
		res := e.await(ctx, k, fetch, cfg)
		if res.aborted {
			return
		}
		if res.err == nil {
			return
		}
		if budget > 0 {
			attempt := cfg.retries - budget + 1
			delay := cfg.backoff(attempt, cfg.retryDelay)
			e.hooks.RetryScheduled(k, attempt, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			budget--
			continue
		}
		e.hooks.RefreshFailed(k, res.err)
		e.log.Warn("background refresh failed", Fields{"key": k, "err": res.err})
		return
	}
}
