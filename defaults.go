package queryflight

import "time"

const (
	defaultCacheTime  = 5 * time.Minute
	defaultRetryDelay = 500 * time.Millisecond
	defaultRefresh    = 30 * time.Second
)

// NoCache disables caching for a call when set as QueryOptions.CacheTime.
// A zero CacheTime means "use the engine default"; an explicit opt-out must
// stay distinguishable from the zero value, so it gets its own sentinel.
const NoCache = time.Duration(-1)

// NoRetry disables retries for a call when set as RetryCount.
const NoRetry = -1

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// BackoffFunc maps a 1-based retry attempt and the configured base delay to
// the wait before that attempt.
type BackoffFunc func(attempt int, base time.Duration) time.Duration

// ConstantBackoff waits the base delay before every retry.
func ConstantBackoff(_ int, base time.Duration) time.Duration { return base }

// ExponentialBackoff doubles the base delay per attempt, capped at 30s.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	const ceiling = 30 * time.Second
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}
