package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/queryflight/codec"
	"github.com/unkn0wn-root/queryflight/internal/wire"
	"github.com/unkn0wn-root/queryflight/provider"
)

// Bytes adapts a byte Provider plus a Codec into a Store. Entry timing
// metadata is framed with the wire format; frames that fail to decode are
// deleted on read (self-heal) and reported as a miss.
//
// The provider's physical TTL is the entry expiry plus StaleRetention, so
// expired entries stay servable for stale-while-revalidate until the
// provider drops them.
//
// Stats is served from an in-process expiry index maintained on writes. A
// provider may evict behind the store's back (pressure, restart), so the
// snapshot is an upper bound; the index reconciles on read misses.
type Bytes[V any] struct {
	p   provider.Provider
	c   codec.Codec[V]
	ret time.Duration

	mu   sync.Mutex
	meta map[string]time.Time // key -> logical expiry (zero = none)
}

var _ Store[any] = (*Bytes[any])(nil)

// BytesConfig wires a Bytes store. Provider and Codec are required.
type BytesConfig[V any] struct {
	Provider provider.Provider
	Codec    codec.Codec[V]

	// StaleRetention is how long entries outlive their expiry in the
	// provider; 0 => 1h.
	StaleRetention time.Duration
}

func NewBytes[V any](cfg BytesConfig[V]) (*Bytes[V], error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("store: provider is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("store: codec is required")
	}
	return &Bytes[V]{
		p:    cfg.Provider,
		c:    cfg.Codec,
		ret:  coalesceDur(cfg.StaleRetention, defaultStaleRetention),
		meta: make(map[string]time.Time),
	}, nil
}

func (s *Bytes[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	var zero Entry[V]
	raw, ok, err := s.p.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		s.forget(key)
		return zero, false, nil
	}
	fr, err := wire.Decode(raw)
	if err != nil {
		_ = s.p.Del(ctx, key) // self-heal corrupt
		s.forget(key)
		return zero, false, nil
	}
	v, err := s.c.Decode(fr.Payload)
	if err != nil {
		_ = s.p.Del(ctx, key) // self-heal
		s.forget(key)
		return zero, false, nil
	}
	return Entry[V]{
		Value:       v,
		CreatedAt:   fr.CreatedAt,
		LastUpdated: fr.LastUpdated,
		ExpiresAt:   fr.ExpiresAt,
	}, true, nil
}

func (s *Bytes[V]) Set(ctx context.Context, key string, e Entry[V]) error {
	payload, err := s.c.Encode(e.Value)
	if err != nil {
		return err
	}
	raw := wire.Encode(wire.Entry{
		CreatedAt:   e.CreatedAt,
		LastUpdated: e.LastUpdated,
		ExpiresAt:   e.ExpiresAt,
		Payload:     payload,
	})

	var ttl time.Duration
	if !e.ExpiresAt.IsZero() {
		ttl = time.Until(e.ExpiresAt) + s.ret
	}
	ok, err := s.p.Set(ctx, key, raw, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("store: provider rejected write for %q", key)
	}
	s.mu.Lock()
	s.meta[key] = e.ExpiresAt
	s.mu.Unlock()
	return nil
}

func (s *Bytes[V]) Del(ctx context.Context, key string) error {
	s.forget(key)
	return s.p.Del(ctx, key)
}

func (s *Bytes[V]) Stats(_ context.Context) (Occupancy, error) {
	now := time.Now()
	var occ Occupancy
	s.mu.Lock()
	for _, exp := range s.meta {
		occ.Entries++
		if exp.IsZero() || !exp.After(now) {
			occ.Expired++
		} else {
			occ.Fresh++
		}
	}
	s.mu.Unlock()
	return occ, nil
}

func (s *Bytes[V]) Close(ctx context.Context) error {
	return s.p.Close(ctx)
}

func (s *Bytes[V]) forget(key string) {
	s.mu.Lock()
	delete(s.meta, key)
	s.mu.Unlock()
}

func coalesceDur(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
