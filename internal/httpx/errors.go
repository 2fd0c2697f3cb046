package httpx

import (
	"context"
	"errors"
	"net"
)

// ClassifyNetworkErr maps a transport error to a provider error code.
func ClassifyNetworkErr(err error) string {
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	return "network_error"
}
