package queryflight

// QueryState is the settled snapshot returned by Query. It is not a live
// subscription; callers re-issue the query to observe newer state.
//
// For a settled state of an enabled call exactly one of Success / (Err != nil)
// holds. A disabled call returns the idle state: no flags set, zero Data.
type QueryState[V any] struct {
	// Key is the canonical key the state belongs to.
	Key string

	// Data holds the result when Success is true; zero value otherwise.
	Data V

	// Err is the terminal failure: the caller's fetch error wrapped in
	// *FetchError, or *AbortError when the cancellation race won.
	Err error

	// Success is true when Data is valid (fetched or served from cache).
	Success bool

	// FromCache is true when Data was served from the store rather than a
	// fetch completed during this call.
	FromCache bool

	// Loading and Fetching are false in every settled snapshot; they exist
	// so the state shape matches in-progress observations (prefetch, timers).
	Loading  bool
	Fetching bool
}

// Errored reports whether the state carries a terminal error.
func (s QueryState[V]) Errored() bool { return s.Err != nil }

// Idle reports whether the state is the disabled/idle state: not fetching,
// neither success nor error.
func (s QueryState[V]) Idle() bool {
	return !s.Loading && !s.Fetching && !s.Success && s.Err == nil
}

// MutationState is the settled snapshot returned by Mutate.
type MutationState[V any] struct {
	Data    V
	Err     error
	Success bool

	// Attempts is the number of times the mutation function ran, including
	// the initial attempt.
	Attempts int
}

// Errored reports whether the mutation settled with an error.
func (s MutationState[V]) Errored() bool { return s.Err != nil }

// CacheStats is a structural occupancy snapshot of the store and registries.
// It is not a historical hit/miss rate.
type CacheStats struct {
	// Entries is the total number of entries in the store.
	Entries int
	// Fresh is the number of entries whose cache time has not elapsed.
	Fresh int
	// Expired is the number of entries past their cache time (or without one).
	Expired int
	// FreshRatio is Fresh/Entries; 0 when the store is empty.
	FreshRatio float64
	// InFlight is the number of fetches currently executing.
	InFlight int
	// Timers is the number of registered background-refresh timers.
	Timers int
}
