// Package queryflight wraps arbitrary asynchronous read operations ("queries")
// and side-effecting operations ("mutations") with caching, single-flight
// request deduplication, staleness handling, bounded retry, cooperative
// cancellation, and background refresh.
//
// Components:
//   - Store[V]: keyed entry store with timing metadata. In-process map by
//     default; optional byte-backed stores (Ristretto, BigCache, Redis) via a
//     pluggable Provider and Codec[V].
//   - flight registry: at most one outstanding fetch per key; concurrent
//     callers share the leader's outcome.
//   - timer registry: at most one background-refresh timer per key; Close
//     leaves zero live timers.
//   - Bus: optional external invalidation fan-out, keyed by the leading key
//     segment.
//
// Freshness is three-state: fresh entries are served directly; entries past
// their stale time but within their cache time are served while a background
// revalidation runs; entries past their cache time are either refetched
// inline or, with stale revalidation enabled, served one last time while a
// full re-query runs in the background.
//
// Query and Mutate never return a Go error: every outcome, including
// exhausted retries and abandoned waits, is encoded in the returned state.
package queryflight
