// Package store defines the cache entry model and the storage abstraction
// used by queryflight.
//
// Implementations MUST return entries byte-for-byte as written: an update
// replaces the entry wholesale, it is never mutated in place. Expired entries
// MUST remain readable until pruned (the engine serves them during
// stale-while-revalidate); freshness decisions belong to the engine, not the
// store.
package store

import (
	"context"
	"time"
)

// Entry is one cache entry. Invariants for stored entries:
// CreatedAt <= LastUpdated <= now, and when ExpiresAt is set,
// ExpiresAt > CreatedAt. An entry with a zero ExpiresAt is never fresh.
type Entry[V any] struct {
	Value       V
	CreatedAt   time.Time
	LastUpdated time.Time
	ExpiresAt   time.Time // zero => absent
}

// Expired reports whether the entry is past its cache time at now.
// Entries without an expiry are never fresh, so they count as expired.
func (e Entry[V]) Expired(now time.Time) bool {
	return e.ExpiresAt.IsZero() || !e.ExpiresAt.After(now)
}

// Occupancy is a structural snapshot of the store.
type Occupancy struct {
	Entries int
	Fresh   int
	Expired int
}

// Store is a keyed entry store. Must be safe for concurrent use.
type Store[V any] interface {
	// Get returns (entry, true, nil) when key is present, including entries
	// already past their expiry; (zero, false, nil) on miss.
	Get(ctx context.Context, key string) (Entry[V], bool, error)

	// Set replaces the entry for key wholesale.
	Set(ctx context.Context, key string, e Entry[V]) error

	// Del removes a key (best-effort; absent keys are a no-op).
	Del(ctx context.Context, key string) error

	// Stats returns the occupancy snapshot at the time of the call.
	Stats(ctx context.Context) (Occupancy, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
