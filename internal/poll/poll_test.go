package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestUntil_DoneAfterPolls(t *testing.T) {
	var waits []time.Duration
	calls := 0

	v, err := Until(context.Background(), Options{Sleep: noSleep(&waits)}, func(ctx context.Context) (string, bool, error) {
		calls++
		return "uri", calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "uri", v)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{DefaultInterval, DefaultInterval, DefaultInterval}, waits)
}

func TestUntil_MaxPolls(t *testing.T) {
	var waits []time.Duration
	calls := 0

	_, err := Until(context.Background(), Options{MaxPolls: 4, Interval: time.Second, Sleep: noSleep(&waits)},
		func(ctx context.Context) (int, bool, error) {
			calls++
			return 0, false, nil
		})

	assert.ErrorIs(t, err, ErrMaxPolls)
	assert.Equal(t, 4, calls)
	assert.Len(t, waits, 4)
}

func TestUntil_FetchErrorStops(t *testing.T) {
	var waits []time.Duration
	want := &OperationError{Name: "operations/1", Code: 3, Message: "blocked"}
	calls := 0

	_, err := Until(context.Background(), Options{Sleep: noSleep(&waits)}, func(ctx context.Context) (int, bool, error) {
		calls++
		return 0, false, want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "blocked")
}

func TestUntil_CancelBetweenPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var waits []time.Duration
	calls := 0

	_, err := Until(ctx, Options{Sleep: noSleep(&waits)}, func(ctx context.Context) (int, bool, error) {
		calls++
		cancel()
		return 0, false, nil
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestUntil_Timeout(t *testing.T) {
	start := time.Now()
	_, err := Until(context.Background(), Options{Interval: time.Hour, Timeout: 20 * time.Millisecond},
		func(ctx context.Context) (int, bool, error) {
			t.Fatal("fetch must not run before the first interval elapses")
			return 0, false, nil
		})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
