package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
)

// RenderTimeoutError is returned when a chart does not finish within the
// configured timeout.
type RenderTimeoutError struct {
	Title   string
	Timeout time.Duration
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("render %q: timed out after %s", e.Title, e.Timeout)
}

// RenderFailureError wraps the last error of a chart that kept failing.
type RenderFailureError struct {
	Title string
	Err   error
}

func (e *RenderFailureError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Title, e.Err)
}

func (e *RenderFailureError) Unwrap() error { return e.Err }

type BoundedOption func(*boundedRenderer)

// WithBackOff replaces the delay policy between attempts.
func WithBackOff(newBackOff func() backoff.BackOff) BoundedOption {
	return func(b *boundedRenderer) {
		b.newBackOff = newBackOff
	}
}

type boundedRenderer struct {
	next       Renderer
	timeout    time.Duration
	retries    uint64
	newBackOff func() backoff.BackOff
}

// WithTimeout bounds every render call by timeout and retries failed
// attempts up to retries more times. A zero timeout disables the bound.
func WithTimeout(next Renderer, timeout time.Duration, retries int, opts ...BoundedOption) Renderer {
	b := &boundedRenderer{
		next:    next,
		timeout: timeout,
		retries: uint64(max(retries, 0)),
		newBackOff: func() backoff.BackOff {
			policy := backoff.NewExponentialBackOff()
			policy.InitialInterval = 200 * time.Millisecond
			policy.MaxInterval = 2 * time.Second
			return policy
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *boundedRenderer) Render(ctx context.Context, s Series, spec Spec) ([]byte, error) {
	var out []byte
	attempt := func() error {
		data, err := b.renderOnce(ctx, s, spec)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		out = data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b.newBackOff(), b.retries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		var timeout *RenderTimeoutError
		if errors.As(err, &timeout) {
			return nil, timeout
		}
		return nil, &RenderFailureError{Title: spec.Title, Err: err}
	}
	return out, nil
}

func (b *boundedRenderer) renderOnce(ctx context.Context, s Series, spec Spec) ([]byte, error) {
	if b.timeout <= 0 {
		return b.next.Render(ctx, s, spec)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := b.next.Render(attemptCtx, s, spec)
		done <- result{data: data, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, &RenderTimeoutError{Title: spec.Title, Timeout: b.timeout}
		}
		return res.data, res.err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &RenderTimeoutError{Title: spec.Title, Timeout: b.timeout}
	}
}
