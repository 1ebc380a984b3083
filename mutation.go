package queryflight

import (
	"context"
	"time"
)

// Mutate executes a one-shot side-effecting operation with bounded, awaited
// retries: the returned state reflects the final outcome and the option
// callbacks fire exactly once, on final settlement. Mutations bypass the
// store and every registry; they share only the retry policy with queries.
//
// Mutate never returns a Go error. If the caller's context fires between
// attempts, the state settles with an AbortError (the attempt already
// running is not interrupted).
func (e *engine[V]) Mutate(ctx context.Context, fn MutationFunc[V], vars any, opts *MutationOptions[V]) MutationState[V] {
	retries, delay, backoff := e.resolveMutation(opts)

	var st MutationState[V]
	for {
		st.Attempts++
		v, err := fn(ctx, vars)
		if err == nil {
			st.Data = v
			st.Success = true
			break
		}
		st.Err = err // the caller's error, unchanged

		if st.Attempts > retries {
			break
		}
		attempt := st.Attempts
		wait := backoff(attempt, delay)
		e.hooks.RetryScheduled("", attempt, wait)
		e.log.Debug("retrying mutation", Fields{"attempt": attempt, "delay": wait})
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			st.Err = &AbortError{Cause: ctx.Err()}
			e.settleMutation(st, vars, opts)
			return st
		}
	}

	if st.Success {
		st.Err = nil
	}
	e.settleMutation(st, vars, opts)
	return st
}

func (e *engine[V]) settleMutation(st MutationState[V], vars any, opts *MutationOptions[V]) {
	if opts == nil {
		return
	}
	if st.Success {
		if opts.OnSuccess != nil {
			opts.OnSuccess(st.Data, vars)
		}
	} else if opts.OnError != nil {
		opts.OnError(st.Err, vars)
	}
	if opts.OnSettled != nil {
		opts.OnSettled(st.Data, st.Err, vars)
	}
}

func (e *engine[V]) resolveMutation(opts *MutationOptions[V]) (retries int, delay time.Duration, backoff BackoffFunc) {
	retries = e.retries
	delay = e.retryDelay
	backoff = e.backoff
	if opts == nil {
		return retries, delay, backoff
	}
	switch {
	case opts.RetryCount == NoRetry:
		retries = 0
	case opts.RetryCount > 0:
		retries = opts.RetryCount
	}
	if opts.RetryDelay > 0 {
		delay = opts.RetryDelay
	}
	if opts.Backoff != nil {
		backoff = opts.Backoff
	}
	return retries, delay, backoff
}
