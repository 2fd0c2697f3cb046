package studio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bitop-dev/studio/internal/audio"
	"github.com/bitop-dev/studio/internal/backoff"
	"github.com/bitop-dev/studio/internal/poll"
	"github.com/bitop-dev/studio/internal/provider"
)

// Error is a failure reported by the remote generation API.
type Error struct {
	Provider  string
	Code      string
	Status    int
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Provider != "" && e.Message != "" {
		return e.Provider + ": " + e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Provider != "" {
		return e.Provider + ": error"
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) StatusCode() int { return e.Status }

func (e *Error) ErrorCode() string { return e.Code }

func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusTooManyRequests || e.Code == "RESOURCE_EXHAUSTED" || e.Code == "rate_limited")
}

func IsUnavailable(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusServiceUnavailable || e.Code == "UNAVAILABLE")
}

// IsTransient reports whether err is a rate-limit or availability failure,
// i.e. one the retry policies would retry.
func IsTransient(err error) bool {
	return backoff.Classify(err) == backoff.Transient
}

func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden ||
		e.Code == "UNAUTHENTICATED" || e.Code == "PERMISSION_DENIED" || e.Code == "config_error")
}

func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, poll.ErrMaxPolls)
}

func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// mapProviderError converts a provider failure into an *Error. Transport
// codes keep their context sentinel in the chain so IsTimeout and IsCanceled
// match them, and Retryable mirrors IsTransient.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}
	var pe *provider.Error
	if !errors.As(err, &pe) {
		return err
	}
	e := &Error{
		Provider: pe.Provider,
		Code:     pe.Code,
		Status:   pe.Status,
		Message:  pe.Message,
		Cause:    pe.Cause,
	}
	switch e.Code {
	case "canceled":
		if !errors.Is(e.Cause, context.Canceled) {
			e.Cause = errors.Join(e.Cause, context.Canceled)
		}
	case "timeout":
		if !errors.Is(e.Cause, context.DeadlineExceeded) {
			e.Cause = errors.Join(e.Cause, context.DeadlineExceeded)
		}
	}
	e.Retryable = IsTransient(e)
	return e
}

// ValidationError rejects a request before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// DecodeError and FormatError report a malformed media payload returned by
// the remote API.
type (
	DecodeError = audio.DecodeError
	FormatError = audio.FormatError
)

func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

func IsFormatError(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}

// ErrMaxPolls is returned when a video operation is still running after the
// configured number of polls.
var ErrMaxPolls = poll.ErrMaxPolls

type NoSpeechGeneratedError struct {
	Provider    string
	RawResponse []byte
}

func (e *NoSpeechGeneratedError) Error() string {
	return fmt.Sprintf("%s: no audio data received", e.Provider)
}

type NoImageGeneratedError struct {
	Provider    string
	Text        string
	RawResponse []byte
}

func (e *NoImageGeneratedError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s: no image generated: %s", e.Provider, e.Text)
	}
	return fmt.Sprintf("%s: no image generated", e.Provider)
}

type NoTextGeneratedError struct {
	Provider string
}

func (e *NoTextGeneratedError) Error() string {
	return fmt.Sprintf("%s: no text generated", e.Provider)
}

type NoVideoGeneratedError struct {
	Provider  string
	Operation string
}

func (e *NoVideoGeneratedError) Error() string {
	return fmt.Sprintf("%s: operation %s returned no video", e.Provider, e.Operation)
}

// IsNoOutput reports whether the API answered successfully but without the
// requested output.
func IsNoOutput(err error) bool {
	var (
		s *NoSpeechGeneratedError
		i *NoImageGeneratedError
		t *NoTextGeneratedError
		v *NoVideoGeneratedError
	)
	return errors.As(err, &s) || errors.As(err, &i) || errors.As(err, &t) || errors.As(err, &v)
}
