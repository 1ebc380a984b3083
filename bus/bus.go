// Package bus defines the external invalidation boundary. When the engine
// invalidates a key it may notify a separate cache-coordination subsystem,
// addressed by the key's leading category segment and the joined remainder.
// The subsystem's internals are out of the engine's hands; only the notify
// outcome comes back.
package bus

import "context"

// Bus broadcasts invalidations. Implementations must be safe for concurrent
// use; notify failures are reported to the caller and nothing is retried.
type Bus interface {
	NotifyInvalidate(ctx context.Context, category, subKey string) error
	Close(ctx context.Context) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) NotifyInvalidate(context.Context, string, string) error { return nil }
func (Nop) Close(context.Context) error                            { return nil }
