package apiclient

import (
	"context"
	"encoding/json"
)

// Future is the pending result of a request started with Client.Go.
type Future struct {
	body json.RawMessage
	err  error
	done chan struct{}
}

func NewFuture(ctx context.Context, fn func(ctx context.Context) (json.RawMessage, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.body, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks for the result or until ctx is done. Abandoning the wait does
// not cancel the request; cancel the context given to Client.Go for that.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.body, f.err
	}
}
