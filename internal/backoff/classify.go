package backoff

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Class is the retry classification of an error.
type Class int

const (
	Fatal Class = iota
	Transient
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	default:
		return "fatal"
	}
}

type statusCoder interface {
	StatusCode() int
}

type errorCoder interface {
	ErrorCode() string
}

// Markers matched against error codes and messages. The remote API does not
// expose a typed taxonomy for quota exhaustion, so text is all we get.
var transientMarkers = []string{"429", "quota", "RESOURCE_EXHAUSTED"}

var transientCodes = map[string]bool{
	"RESOURCE_EXHAUSTED": true,
	"UNAVAILABLE":        true,
	"rate_limited":       true,
}

// Classify reports whether err signals rate limiting or transient
// unavailability (HTTP 429/503, quota exhaustion). Everything else, including
// context cancellation, is Fatal.
func Classify(err error) Class {
	if err == nil {
		return Fatal
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Fatal
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return Transient
		}
	}

	var ec errorCoder
	if errors.As(err, &ec) && transientCodes[ec.ErrorCode()] {
		return Transient
	}

	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return Transient
		}
	}
	return Fatal
}
