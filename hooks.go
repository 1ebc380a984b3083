package queryflight

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The engine calls them on hot paths.
type Hooks interface {
	// An expired (or stale-but-servable) entry was served while a background
	// revalidation was started for the key.
	StaleServed(key string)

	// A caller joined an already in-flight fetch instead of starting one.
	DedupJoined(key string)

	// A failed fetch or mutation scheduled a retry. attempt is 1-based;
	// delay is the backoff before the re-run. key is empty for mutations,
	// which are not keyed.
	RetryScheduled(key string, attempt int, delay time.Duration)

	// A caller's context fired before the fetch settled. The fetch itself
	// keeps running; only this caller abandoned its wait.
	FetchAbandoned(key string)

	// A background refresh (timer or revalidation) settled with an error.
	// No caller was waiting; the error is not surfaced anywhere else.
	RefreshFailed(key string, err error)

	// The store rejected or failed a write after a successful fetch.
	StoreWriteFailed(key string, err error)

	// The invalidation bus returned an error on notify (likely outage).
	BusNotifyFailed(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StaleServed(string)                          {}
func (NopHooks) DedupJoined(string)                          {}
func (NopHooks) RetryScheduled(string, int, time.Duration)   {}
func (NopHooks) FetchAbandoned(string)                       {}
func (NopHooks) RefreshFailed(string, error)                 {}
func (NopHooks) StoreWriteFailed(string, error)              {}
func (NopHooks) BusNotifyFailed(string, error)               {}
