// Package promhooks exports engine events and occupancy as Prometheus
// metrics. Hooks increments counters per event; Collector scrapes
// CacheStats on collect so gauges are never stale.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/queryflight"
)

type Hooks struct {
	staleServed    prometheus.Counter
	dedupJoined    prometheus.Counter
	retryScheduled prometheus.Counter
	fetchAbandoned prometheus.Counter
	refreshFailed  prometheus.Counter
	storeWrite     prometheus.Counter
	busNotify      prometheus.Counter
}

var _ queryflight.Hooks = (*Hooks)(nil)

// New builds the event counters and registers them on reg.
// Pass prometheus.DefaultRegisterer for the global registry.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		staleServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "stale_served_total",
			Help:      "Stale entries served while a background revalidation ran.",
		}),
		dedupJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "dedup_joined_total",
			Help:      "Callers that joined an in-flight fetch instead of starting one.",
		}),
		retryScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "retries_scheduled_total",
			Help:      "Failed fetches that scheduled a retry.",
		}),
		fetchAbandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "fetches_abandoned_total",
			Help:      "Callers whose context fired before the fetch settled.",
		}),
		refreshFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "refreshes_failed_total",
			Help:      "Background refreshes that settled with an error.",
		}),
		storeWrite: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "store_write_failures_total",
			Help:      "Store writes rejected or failed after a successful fetch.",
		}),
		busNotify: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "queryflight",
			Name:      "bus_notify_failures_total",
			Help:      "Invalidation bus notify errors.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			h.staleServed, h.dedupJoined, h.retryScheduled,
			h.fetchAbandoned, h.refreshFailed, h.storeWrite, h.busNotify,
		)
	}
	return h
}

func (h *Hooks) StaleServed(string)                        { h.staleServed.Inc() }
func (h *Hooks) DedupJoined(string)                        { h.dedupJoined.Inc() }
func (h *Hooks) RetryScheduled(string, int, time.Duration) { h.retryScheduled.Inc() }
func (h *Hooks) FetchAbandoned(string)                     { h.fetchAbandoned.Inc() }
func (h *Hooks) RefreshFailed(string, error)               { h.refreshFailed.Inc() }
func (h *Hooks) StoreWriteFailed(string, error)            { h.storeWrite.Inc() }
func (h *Hooks) BusNotifyFailed(string, error)             { h.busNotify.Inc() }

// StatsFunc returns a CacheStats snapshot; typically Engine.Stats.
type StatsFunc func() queryflight.CacheStats

// Collector exports occupancy gauges from a stats snapshot taken at
// scrape time.
type Collector struct {
	stats StatsFunc

	entries  *prometheus.Desc
	fresh    *prometheus.Desc
	expired  *prometheus.Desc
	inFlight *prometheus.Desc
	timers   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(stats StatsFunc) *Collector {
	return &Collector{
		stats: stats,
		entries: prometheus.NewDesc(
			"queryflight_entries",
			"Cached entries, fresh and expired.", nil, nil),
		fresh: prometheus.NewDesc(
			"queryflight_entries_fresh",
			"Cached entries that have not expired.", nil, nil),
		expired: prometheus.NewDesc(
			"queryflight_entries_expired",
			"Cached entries past expiry, retained for stale serving.", nil, nil),
		inFlight: prometheus.NewDesc(
			"queryflight_fetches_in_flight",
			"Fetches currently running.", nil, nil),
		timers: prometheus.NewDesc(
			"queryflight_refresh_timers",
			"Active background refresh timers.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.fresh
	ch <- c.expired
	ch <- c.inFlight
	ch <- c.timers
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.fresh, prometheus.GaugeValue, float64(s.Fresh))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.GaugeValue, float64(s.Expired))
	ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(s.InFlight))
	ch <- prometheus.MustNewConstMetric(c.timers, prometheus.GaugeValue, float64(s.Timers))
}
