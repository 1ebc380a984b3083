// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/queryflight"
//	asynchook "github.com/unkn0wn-root/queryflight/hooks/async"
//	"github.com/unkn0wn-root/queryflight/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    StaleServedEvery: 10, // sample logs: ~every 10th stale serve
//	    RetryEvery:       1,  // log every scheduled retry
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	engine, _ := queryflight.New[User](queryflight.Options[User]{
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/queryflight"
)

type Hooks struct {
	inner queryflight.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ queryflight.Hooks = (*Hooks)(nil)

func New(inner queryflight.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) StaleServed(k string)    { h.try(func() { h.inner.StaleServed(k) }) }
func (h *Hooks) DedupJoined(k string)    { h.try(func() { h.inner.DedupJoined(k) }) }
func (h *Hooks) FetchAbandoned(k string) { h.try(func() { h.inner.FetchAbandoned(k) }) }
func (h *Hooks) RetryScheduled(k string, attempt int, delay time.Duration) {
	h.try(func() { h.inner.RetryScheduled(k, attempt, delay) })
}
func (h *Hooks) RefreshFailed(k string, err error) {
	h.try(func() { h.inner.RefreshFailed(k, err) })
}
func (h *Hooks) StoreWriteFailed(k string, err error) {
	h.try(func() { h.inner.StoreWriteFailed(k, err) })
}
func (h *Hooks) BusNotifyFailed(k string, err error) {
	h.try(func() { h.inner.BusNotifyFailed(k, err) })
}
