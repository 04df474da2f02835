package news

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout bounds every fetch and search.
const DefaultTimeout = 15 * time.Second

// FetchFunc is one provider call.
type FetchFunc func(ctx context.Context) ([]Article, error)

// FetchWithTimeout races fn against a timer of d. Whichever finishes first
// decides the result; the loser is cancelled and its result discarded. A
// timeout yields ErrFetchTimeout and any other error a *FetchFailure.
func FetchWithTimeout(ctx context.Context, d time.Duration, op string, fn FetchFunc) ([]Article, error) {
	if d <= 0 {
		d = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		articles []Article
		err      error
	}
	// buffered so a late fn never blocks
	done := make(chan result, 1)
	go func() {
		articles, err := fn(ctx)
		done <- result{articles, err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, ErrEmptyQuery) {
				return nil, r.err
			}
			return nil, &FetchFailure{Op: op, Err: r.err}
		}
		return r.articles, nil
	case <-timer.C:
		return nil, ErrFetchTimeout
	case <-ctx.Done():
		return nil, &FetchFailure{Op: op, Err: ctx.Err()}
	}
}
