// Package deadline bounds calls to backing stores.
package deadline

import (
	"context"
	stderrors "errors"
	"time"

	"pooja-supplies/pkg/errors"
)

// Call runs fn with a deadline of d from now. When the deadline passes
// first, Call returns STORE_UNAVAILABLE without waiting for fn; the result
// of an abandoned call is discarded. A zero d runs fn on ctx unchanged.
func Call[T any](ctx context.Context, d time.Duration, store string, fn func(ctx context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && stderrors.Is(r.err, context.DeadlineExceeded) {
			return zero, timedOut(store, r.err)
		}
		return r.v, r.err
	case <-ctx.Done():
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, timedOut(store, ctx.Err())
		}
		return zero, errors.NewUnavailable(store+" call cancelled", ctx.Err())
	}
}

// Run is Call for operations without a result
func Run(ctx context.Context, d time.Duration, store string, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, d, store, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func timedOut(store string, err error) error {
	return errors.NewUnavailable(store+" did not answer in time", err)
}
