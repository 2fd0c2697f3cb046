package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/internal/media"
)

// statusClientClosedRequest is reported when the caller went away mid-call.
const statusClientClosedRequest = 499

const busyMessage = "The service is busy. Please try again in a moment."

// statusFor maps an operation error to an HTTP status and a client-facing
// message.
func statusFor(err error) (int, string) {
	var remote *studio.Error
	switch {
	case studio.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrStoreFull):
		return http.StatusInsufficientStorage, "media store is full; release unused media and retry"
	case studio.IsTransient(err):
		return http.StatusTooManyRequests, busyMessage
	case studio.IsAuth(err):
		return http.StatusUnauthorized, err.Error()
	case studio.IsTimeout(err):
		return http.StatusGatewayTimeout, err.Error()
	case studio.IsCanceled(err):
		return statusClientClosedRequest, err.Error()
	case studio.IsDecodeError(err), studio.IsFormatError(err), studio.IsNoOutput(err):
		return http.StatusBadGateway, err.Error()
	case errors.As(err, &remote):
		if remote.Status >= 400 && remote.Status < 500 && remote.Status != http.StatusNotFound {
			return http.StatusBadRequest, remote.Message
		}
		return http.StatusBadGateway, remote.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Status: StatusError, Error: msg})
}

// bindJSON binds the request body into target, answering 400 on failure.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return false
	}
	return true
}
