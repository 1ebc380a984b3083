// Package flight is the in-flight registry: at most one executing
// deduplicated fetch per key, concurrent callers sharing the leader's
// outcome. Deduplication itself is x/sync singleflight; this wrapper adds
// an executing-fetch index for occupancy stats (covering non-deduplicated
// fetches too, via Track) and key-level forgetting for invalidation.
package flight

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Result mirrors the singleflight result shape. Shared is true when the
// value was produced by a fetch this caller did not start.
type Result struct {
	Val    any
	Err    error
	Shared bool
}

type Registry struct {
	mu     sync.Mutex
	active map[string]int // key -> executing fetch count
	sf     singleflight.Group
}

func New() *Registry {
	return &Registry{active: make(map[string]int)}
}

// Track records an executing fetch for key outside single-flight (the
// no-dedup path). The returned func unrecords it; extra calls are no-ops.
func (r *Registry) Track(key string) func() {
	r.track(key)
	var once sync.Once
	return func() { once.Do(func() { r.untrack(key) }) }
}

func (r *Registry) track(key string) {
	r.mu.Lock()
	r.active[key]++
	r.mu.Unlock()
}

func (r *Registry) untrack(key string) {
	r.mu.Lock()
	if n := r.active[key]; n <= 1 {
		delete(r.active, key)
	} else {
		r.active[key] = n - 1
	}
	r.mu.Unlock()
}

// DoChan runs fn under single-flight for key and returns a channel the
// settled result is delivered on. The key is tracked as active only while
// the leader's fn executes and is removed exactly once, when fn settles.
func (r *Registry) DoChan(key string, fn func() (any, error)) <-chan Result {
	ch := r.sf.DoChan(key, func() (any, error) {
		r.track(key)
		defer r.untrack(key)
		return fn()
	})

	out := make(chan Result, 1)
	go func() {
		res := <-ch
		out <- Result{Val: res.Val, Err: res.Err, Shared: res.Shared}
	}()
	return out
}

// Forget drops the key so the next DoChan starts a fresh fetch instead of
// joining the current one. The current fetch still settles for its callers.
func (r *Registry) Forget(key string) {
	r.sf.Forget(key)
}

// Len returns the number of fetches currently executing, deduplicated
// leaders and tracked direct fetches alike.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.active {
		total += n
	}
	return total
}
