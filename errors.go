package queryflight

import (
	"errors"
	"fmt"
)

// ErrEmptyKey is returned in the error state when a query is issued with a
// key that has no segments (or an empty segment).
var ErrEmptyKey = errors.New("queryflight: empty key")

// FetchError wraps the error raised by the caller's fetch function. The
// underlying error is carried unchanged; there is no separate "retries
// exhausted" kind, a FetchError in a settled state is simply the last
// attempt's failure.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("queryflight: fetch %q failed: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AbortError is produced only by the cancellation race: the caller's context
// fired before the fetch settled. The underlying fetch keeps running; only
// this caller's wait was abandoned.
type AbortError struct {
	Key   string
	Cause error // the context's error at the time the race was lost
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("queryflight: query %q aborted: %v", e.Key, e.Cause)
}

func (e *AbortError) Unwrap() error { return e.Cause }

// IsAbort reports whether err is (or wraps) an AbortError.
func IsAbort(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}
