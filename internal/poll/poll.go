// Package poll waits for long-running remote operations to reach a terminal
// state.
package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultMaxPolls = 120
)

// ErrMaxPolls is returned when an operation is still running after the
// configured number of polls.
var ErrMaxPolls = errors.New("poll: operation did not finish within the poll limit")

// OperationError reports an operation that finished with a failure.
type OperationError struct {
	Name    string
	Code    int
	Message string
}

func (e *OperationError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("operation %s failed (%d): %s", e.Name, e.Code, e.Message)
	}
	return fmt.Sprintf("operation %s failed: %s", e.Name, e.Message)
}

type Options struct {
	Interval time.Duration
	MaxPolls int
	// Timeout bounds the whole wait. Zero means no deadline beyond ctx.
	Timeout time.Duration
	Sleep   func(ctx context.Context, d time.Duration) error
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultMaxPolls
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	return o
}

// Until sleeps Interval then calls fetch, repeating until fetch reports done,
// fetch fails, the poll limit is reached, or ctx ends.
func Until[T any](ctx context.Context, opts Options, fetch func(context.Context) (T, bool, error)) (T, error) {
	var zero T
	opts = opts.withDefaults()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	for i := 1; i <= opts.MaxPolls; i++ {
		if err := opts.Sleep(ctx, opts.Interval); err != nil {
			return zero, err
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, done, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if opts.Logger != nil {
			opts.Logger.Debug("polled operation", slog.Int("poll", i), slog.Bool("done", done))
		}
		if done {
			return v, nil
		}
	}
	return zero, ErrMaxPolls
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
