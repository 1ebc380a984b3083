// Package timers is the background-refresh timer registry: at most one
// active timer per key. Registering a key replaces any existing timer;
// Close cancels everything and waits, so no callback fires afterwards.
package timers

import (
	"sync"
	"time"
)

type timer struct {
	ticker *time.Ticker
	stopCh chan struct{}
}

type Registry struct {
	mu     sync.Mutex
	timers map[string]*timer
	wg     sync.WaitGroup
	closed bool
}

func New() *Registry {
	return &Registry{timers: make(map[string]*timer)}
}

// Register starts a timer invoking fn every interval until the key is
// canceled or the registry closes. An existing timer for the key is stopped
// first. No-op after Close and for non-positive intervals.
func (r *Registry) Register(key string, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if old, ok := r.timers[key]; ok {
		stop(old)
	}
	t := &timer{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	r.timers[key] = t
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-t.ticker.C:
				fn()
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Cancel stops and removes the timer for key, if any. Idempotent.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	if t, ok := r.timers[key]; ok {
		stop(t)
		delete(r.timers, key)
	}
	r.mu.Unlock()
}

// Len returns the number of registered timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Close cancels every timer and waits for their goroutines to exit.
// After Close returns, no callback fires and Register is a no-op.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for k, t := range r.timers {
		stop(t)
		delete(r.timers, k)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func stop(t *timer) {
	t.ticker.Stop()
	close(t.stopCh)
}
