package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/queryflight"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StaleServedEvery uint64
	DedupEvery       uint64
	RetryEvery       uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	staleCtr atomic.Uint64
	dedupCtr atomic.Uint64
	retryCtr atomic.Uint64
}

var _ queryflight.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) StaleServed(key string) {
	if h.l == nil || !sample(h.opts.StaleServedEvery, &h.staleCtr) {
		return
	}
	h.l.Debug("queryflight.stale_served",
		"key", h.redact(key))
}

func (h *Hooks) DedupJoined(key string) {
	if h.l == nil || !sample(h.opts.DedupEvery, &h.dedupCtr) {
		return
	}
	h.l.Debug("queryflight.dedup_joined",
		"key", h.redact(key))
}

func (h *Hooks) RetryScheduled(key string, attempt int, delay time.Duration) {
	if h.l == nil || !sample(h.opts.RetryEvery, &h.retryCtr) {
		return
	}
	h.l.Info("queryflight.retry_scheduled",
		"key", h.redact(key),
		"attempt", attempt,
		"delay", delay)
}

func (h *Hooks) FetchAbandoned(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("queryflight.fetch_abandoned",
		"key", h.redact(key))
}

func (h *Hooks) RefreshFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("queryflight.refresh_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) StoreWriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("queryflight.store_write_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) BusNotifyFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("queryflight.bus_notify_failed",
		"key", h.redact(key),
		"err", err)
}
