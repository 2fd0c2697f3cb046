package backoff

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 4 * time.Second
	DefaultMultiplier  = 2
)

// Attempt describes a failed attempt that is about to be retried.
type Attempt struct {
	Number      int // 1-based number of the attempt that failed
	MaxAttempts int
	Wait        time.Duration
	Err         error
}

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64

	// Classify defaults to the package-level Classify.
	Classify func(error) Class
	// Sleep defaults to a context-aware timer. Tests replace it to observe
	// waits without sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait.
	OnRetry func(Attempt)

	Logger *slog.Logger
}

// Default returns the policy used when a call site does not pick its own.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// Validate rejects policies that would retry without waiting.
func (p Policy) Validate() error {
	if p.MaxAttempts > 1 && p.BaseDelay <= 0 {
		return fmt.Errorf("backoff: base delay must be > 0, got %s", p.BaseDelay)
	}
	if p.Multiplier < 0 {
		return fmt.Errorf("backoff: multiplier must be >= 0, got %g", p.Multiplier)
	}
	return nil
}

// Delay returns the wait before retrying after the attempt with the given
// zero-based index: BaseDelay * Multiplier^index.
func (p Policy) Delay(index int) time.Duration {
	m := p.Multiplier
	if m == 0 {
		m = DefaultMultiplier
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(m, float64(index)))
}

// Do runs op until it succeeds, fails with a fatal error, or MaxAttempts is
// reached. Attempts are strictly sequential. The returned error is the one
// produced by op, never wrapped; only context cancellation during a wait
// replaces it with ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, err
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = Classify
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if i == maxAttempts-1 || classify(err) != Transient {
			return zero, err
		}

		wait := p.Delay(i)
		a := Attempt{Number: i + 1, MaxAttempts: maxAttempts, Wait: wait, Err: err}
		if p.Logger != nil {
			p.Logger.Warn("rate limited, retrying",
				slog.Int("attempt", a.Number),
				slog.Int("max_attempts", maxAttempts),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()),
			)
		}
		if p.OnRetry != nil {
			p.OnRetry(a)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
