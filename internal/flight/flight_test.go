package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoChanDeduplicates(t *testing.T) {
	r := New()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func() (any, error) {
		calls.Add(1)
		close(started)
		<-release
		return "v", nil
	}

	ch1 := r.DoChan("k", fn)
	<-started
	// joiner while the leader is blocked
	ch2 := r.DoChan("k", func() (any, error) {
		calls.Add(1)
		return "other", nil
	})

	if got := r.Len(); got != 1 {
		t.Fatalf("Len while in flight = %d, want 1", got)
	}

	close(release)
	r1, r2 := <-ch1, <-ch2
	if r1.Err != nil || r2.Err != nil {
		t.Fatalf("errors: %v %v", r1.Err, r2.Err)
	}
	if r1.Val.(string) != "v" || r2.Val.(string) != "v" {
		t.Fatalf("values: %v %v", r1.Val, r2.Val)
	}
	if !r2.Shared {
		t.Fatal("joiner should observe a shared result")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("fn ran %d times, want 1", got)
	}

	// settled fetches leave the active set
	deadline := time.Now().Add(time.Second)
	for r.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Len after settle = %d, want 0", r.Len())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTrackCountsDirectFetches(t *testing.T) {
	r := New()

	// Two direct fetches for the same key plus one deduplicated leader all
	// show up in Len.
	done1 := r.Track("k")
	done2 := r.Track("k")

	started := make(chan struct{})
	release := make(chan struct{})
	ch := r.DoChan("k", func() (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	if got := r.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}

	done1()
	done1() // second call is a no-op
	if got := r.Len(); got != 2 {
		t.Fatalf("Len after one untrack = %d, want 2", got)
	}

	done2()
	close(release)
	<-ch

	deadline := time.Now().Add(time.Second)
	for r.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Len after settle = %d, want 0", r.Len())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDoChanDeliversError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	res := <-r.DoChan("k", func() (any, error) { return nil, boom })
	if !errors.Is(res.Err, boom) {
		t.Fatalf("want boom, got %v", res.Err)
	}
}

func TestForgetStartsFreshFetch(t *testing.T) {
	r := New()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	ch1 := r.DoChan("k", func() (any, error) {
		calls.Add(1)
		close(started)
		<-release
		return 1, nil
	})
	<-started

	r.Forget("k")

	// a new caller after Forget must not join the old fetch
	done2 := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		res := <-r.DoChan("k", func() (any, error) {
			calls.Add(1)
			close(done2)
			return 2, nil
		})
		if res.Val.(int) != 2 {
			t.Errorf("post-forget caller got %v, want 2", res.Val)
		}
	}()
	<-done2

	close(release)
	if res := <-ch1; res.Val.(int) != 1 {
		t.Fatalf("original caller got %v, want 1", res.Val)
	}
	wg.Wait()

	if got := calls.Load(); got != 2 {
		t.Fatalf("fn ran %d times, want 2", got)
	}
}
