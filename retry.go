package studio

import (
	"context"
	"log/slog"
	"time"

	"github.com/bitop-dev/studio/internal/backoff"
)

// RetryPolicy controls how a call is retried on rate-limit or availability
// failures. Delays double after each attempt, starting at BaseDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// OnRetry is called before each wait.
	OnRetry func(RetryAttempt)
}

type RetryAttempt struct {
	Attempt     int // 1-based attempt that failed
	MaxAttempts int
	Wait        time.Duration
	Err         error
}

// Call-site defaults. Speech, text and story calls use NoRetry.
var (
	DefaultRetry = RetryPolicy{MaxAttempts: backoff.DefaultMaxAttempts, BaseDelay: backoff.DefaultBaseDelay}
	ImageRetry   = RetryPolicy{MaxAttempts: 5, BaseDelay: 5 * time.Second}
	ExtractRetry = RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Second}
	NoRetry      = RetryPolicy{MaxAttempts: 1}
)

// retrySleep replaces the backoff timer in tests.
var retrySleep func(ctx context.Context, d time.Duration) error

// resolveRetry turns the caller's policy, or fallback when p is nil, into a
// backoff policy. A policy that would retry without waiting is rejected.
func resolveRetry(p *RetryPolicy, fallback RetryPolicy) (backoff.Policy, error) {
	rp := fallback
	if p != nil {
		rp = *p
	}
	if rp.MaxAttempts > 1 && rp.BaseDelay <= 0 {
		return backoff.Policy{}, invalid("retry", "base delay must be > 0 when max attempts > 1")
	}
	bp := backoff.Policy{
		MaxAttempts: rp.MaxAttempts,
		BaseDelay:   rp.BaseDelay,
		Multiplier:  backoff.DefaultMultiplier,
		Logger:      slog.Default(),
		Sleep:       retrySleep,
	}
	if rp.OnRetry != nil {
		bp.OnRetry = func(a backoff.Attempt) {
			rp.OnRetry(RetryAttempt{Attempt: a.Number, MaxAttempts: a.MaxAttempts, Wait: a.Wait, Err: mapProviderError(a.Err)})
		}
	}
	return bp, nil
}
