package store

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](MemoryConfig{SweepInterval: -1})
	defer m.Close(ctx)

	if _, ok, err := m.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("miss expected: ok=%v err=%v", ok, err)
	}

	e := Entry[string]{
		Value:       "v",
		CreatedAt:   time.Now(),
		LastUpdated: time.Now(),
		ExpiresAt:   time.Now().Add(time.Minute),
	}
	if err := m.Set(ctx, "k", e); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || got.Value != "v" {
		t.Fatalf("Get: ok=%v err=%v got=%+v", ok, err, got)
	}

	if err := m.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("entry should be gone after Del")
	}
}

// Expired entries must stay readable; freshness is the engine's call.
func TestMemoryKeepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](MemoryConfig{SweepInterval: -1})
	defer m.Close(ctx)

	e := Entry[string]{Value: "v", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := m.Set(ctx, "k", e); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expired entry should remain readable: ok=%v err=%v", ok, err)
	}
	if !got.Expired(time.Now()) {
		t.Fatal("entry should report expired")
	}
}

func TestMemorySweepRetention(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](MemoryConfig{
		SweepInterval:  -1,
		StaleRetention: time.Minute,
	})
	defer m.Close(ctx)

	now := time.Now()
	// Expired recently: inside retention, must survive the sweep.
	m.Set(ctx, "recent", Entry[string]{Value: "a", ExpiresAt: now.Add(-time.Second)})
	// Expired long ago: past retention, must be pruned.
	m.Set(ctx, "old", Entry[string]{Value: "b", ExpiresAt: now.Add(-2 * time.Minute)})
	// Fresh: untouched.
	m.Set(ctx, "fresh", Entry[string]{Value: "c", ExpiresAt: now.Add(time.Hour)})

	m.Sweep(now)

	for _, k := range []string{"recent", "fresh"} {
		if _, ok, _ := m.Get(ctx, k); !ok {
			t.Errorf("sweep removed %q, should have kept it", k)
		}
	}
	if _, ok, _ := m.Get(ctx, "old"); ok {
		t.Error("sweep kept long-expired entry")
	}
}

func TestMemoryStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[string](MemoryConfig{SweepInterval: -1})
	defer m.Close(ctx)

	now := time.Now()
	m.Set(ctx, "fresh", Entry[string]{ExpiresAt: now.Add(time.Hour)})
	m.Set(ctx, "expired", Entry[string]{ExpiresAt: now.Add(-time.Hour)})

	occ, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if occ.Entries != 2 || occ.Fresh != 1 || occ.Expired != 1 {
		t.Fatalf("occupancy: %+v", occ)
	}
}

func TestEntryExpired(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		e    Entry[int]
		want bool
	}{
		{"future", Entry[int]{ExpiresAt: now.Add(time.Minute)}, false},
		{"past", Entry[int]{ExpiresAt: now.Add(-time.Minute)}, true},
		{"zero", Entry[int]{}, true},
	}
	for _, c := range cases {
		if got := c.e.Expired(now); got != c.want {
			t.Errorf("%s: Expired = %v, want %v", c.name, got, c.want)
		}
	}
}
