// Package images runs multi-image generation under a shared rate cap.
package images

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitop-dev/studio/internal/backoff"
	"github.com/bitop-dev/studio/internal/provider"
)

// DefaultMinInterval is the spacing between image calls. The image model
// rate-limits bursts aggressively, so calls are paced rather than fanned out.
const DefaultMinInterval = 4 * time.Second

type Options struct {
	// MinInterval spaces call starts. Ignored when Limiter is set.
	MinInterval time.Duration
	// MaxParallel bounds in-flight calls. 1 (the default) keeps calls strictly
	// sequential.
	MaxParallel int
	// Limiter may be shared between batches so the cap holds process-wide.
	Limiter *rate.Limiter
	Retry   backoff.Policy
}

// NewLimiter returns a limiter admitting one call per interval.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// GenerateBatched issues n single-image calls and returns every image
// produced, in call order. The first failing call aborts the batch.
func GenerateBatched(ctx context.Context, ip provider.ImageProvider, base provider.GenerateImageRequest, n int, opts Options) ([]provider.Image, []byte, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("n must be > 0")
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 1
	}
	lim := opts.Limiter
	if lim == nil {
		interval := opts.MinInterval
		if interval == 0 {
			interval = DefaultMinInterval
		}
		lim = NewLimiter(interval)
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make([]provider.GenerateImageResponse, n)
	sem := make(chan struct{}, opts.MaxParallel)
	errCh := make(chan error, n)
	var (
		wg        sync.WaitGroup
		completed atomic.Int32
	)

	for i := 0; i < n; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := lim.Wait(ctx); err != nil {
				errCh <- err
				cancel()
				return
			}
			resp, err := backoff.Do(ctx, opts.Retry, func(ctx context.Context) (provider.GenerateImageResponse, error) {
				return ip.GenerateImage(ctx, base)
			})
			if err != nil {
				errCh <- err
				cancel()
				return
			}
			results[i] = resp
			completed.Add(1)
		}(i)
	}

	wg.Wait()
	close(errCh)
	// Report the root cause, not the cancellations it triggered.
	var firstErr error
	for err := range errCh {
		if firstErr == nil || (isCancel(firstErr) && !isCancel(err)) {
			firstErr = err
		}
	}
	if firstErr == nil && completed.Load() < int32(n) {
		// Cancelled between calls: the batch is short, not complete.
		firstErr = parent.Err()
	}
	if firstErr != nil {
		return nil, nil, firstErr
	}

	var out []provider.Image
	var firstRaw []byte
	for _, r := range results {
		if firstRaw == nil && len(r.RawResponse) > 0 {
			firstRaw = r.RawResponse
		}
		for _, img := range r.Images {
			if img.Base64 == "" {
				continue
			}
			out = append(out, img)
		}
	}
	return out, firstRaw, nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
