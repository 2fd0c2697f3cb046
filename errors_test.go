package studio

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/studio/internal/provider"
)

type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o timeout" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return false }

func TestMapProviderError(t *testing.T) {
	tests := []struct {
		name      string
		in        error
		retryable bool
		check     func(t *testing.T, err error)
	}{
		{
			name:      "rate limited",
			in:        &provider.Error{Provider: "gemini", Code: "RESOURCE_EXHAUSTED", Status: 429, Message: "quota exceeded"},
			retryable: true,
			check: func(t *testing.T, err error) {
				assert.True(t, IsRateLimited(err))
				assert.True(t, IsTransient(err))
			},
		},
		{
			name:      "unavailable",
			in:        &provider.Error{Provider: "gemini", Code: "UNAVAILABLE", Status: 503, Message: "overloaded"},
			retryable: true,
			check: func(t *testing.T, err error) {
				assert.True(t, IsUnavailable(err))
			},
		},
		{
			name: "server error",
			in:   &provider.Error{Provider: "gemini", Code: "INTERNAL", Status: 500, Message: "internal", Retryable: true},
			check: func(t *testing.T, err error) {
				assert.False(t, IsTransient(err))
			},
		},
		{
			name: "auth",
			in:   fmt.Errorf("speech: %w", &provider.Error{Provider: "gemini", Code: "PERMISSION_DENIED", Status: 403, Message: "denied"}),
			check: func(t *testing.T, err error) {
				assert.True(t, IsAuth(err))
			},
		},
		{
			name: "transport timeout",
			in:   &provider.Error{Provider: "gemini", Code: "timeout", Message: "i/o timeout", Cause: netTimeout{}},
			check: func(t *testing.T, err error) {
				assert.True(t, IsTimeout(err))
				assert.ErrorIs(t, err, context.DeadlineExceeded)
				var nt netTimeout
				assert.ErrorAs(t, err, &nt)
			},
		},
		{
			name: "transport canceled",
			in:   &provider.Error{Provider: "gemini", Code: "canceled", Message: "context canceled", Cause: context.Canceled},
			check: func(t *testing.T, err error) {
				assert.True(t, IsCanceled(err))
				assert.False(t, IsTimeout(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapProviderError(tt.in)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.retryable, e.Retryable)
			tt.check(t, err)
		})
	}
}

func TestMapProviderErrorPassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, mapProviderError(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, mapProviderError(plain))

	v := invalid("text", "is required")
	assert.True(t, IsValidation(mapProviderError(v)))
}
