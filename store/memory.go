package store

import (
	"context"
	"sync"
	"time"
)

const (
	defaultSweep          = time.Minute
	defaultStaleRetention = time.Hour
)

// Memory keeps entries in-process (default). Expired entries stay readable
// for StaleRetention past their expiry so stale-while-revalidate can serve
// them; a background sweep prunes them afterwards.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	retention time.Duration
}

var _ Store[any] = (*Memory[any])(nil)

// MemoryConfig tunes the in-process store. Zero values use defaults.
type MemoryConfig struct {
	// SweepInterval is how often long-expired entries are pruned; 0 => 1m.
	// Negative disables the sweep loop entirely.
	SweepInterval time.Duration

	// StaleRetention is how long entries remain readable past their expiry;
	// 0 => 1h.
	StaleRetention time.Duration
}

func NewMemory[V any](cfg MemoryConfig) *Memory[V] {
	m := &Memory[V]{
		entries:   make(map[string]Entry[V]),
		retention: cfg.StaleRetention,
	}
	if m.retention == 0 {
		m.retention = defaultStaleRetention
	}
	sweep := cfg.SweepInterval
	if sweep == 0 {
		sweep = defaultSweep
	}
	if sweep > 0 {
		m.ticker = time.NewTicker(sweep)
		m.stopCh = make(chan struct{})
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-m.ticker.C:
					m.Sweep(time.Now())
				case <-m.stopCh:
					return
				}
			}
		}()
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (Entry[V], bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	return e, ok, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, e Entry[V]) error {
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Stats(_ context.Context) (Occupancy, error) {
	now := time.Now()
	var occ Occupancy
	m.mu.RLock()
	for _, e := range m.entries {
		occ.Entries++
		if e.Expired(now) {
			occ.Expired++
		} else {
			occ.Fresh++
		}
	}
	m.mu.RUnlock()
	return occ, nil
}

// Sweep removes entries expired for longer than the stale retention.
// Entries merely past their expiry are kept; they are still servable stale.
func (m *Memory[V]) Sweep(now time.Time) {
	cutoff := now.Add(-m.retention)

	m.mu.Lock()
	for k, e := range m.entries {
		if e.ExpiresAt.IsZero() {
			continue
		}
		if e.ExpiresAt.Before(cutoff) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}

func (m *Memory[V]) Close(_ context.Context) error {
	m.once.Do(func() {
		if m.stopCh != nil {
			close(m.stopCh)
			if m.ticker != nil {
				m.ticker.Stop()
			}
			m.wg.Wait()
		}
	})
	return nil
}
