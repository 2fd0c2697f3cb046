package studio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bitop-dev/studio/internal/poll"
	"github.com/bitop-dev/studio/internal/provider"
)

const (
	DefaultVideoResolution  = "720p"
	DefaultVideoAspectRatio = "16:9"
	defaultImageVideoPrompt = "Animate this image"
)

type PollOptions struct {
	// Interval between status checks (default 5s).
	Interval time.Duration
	// MaxPolls caps the number of status checks (default 120).
	MaxPolls int
	// Timeout bounds the wait for the operation, excluding the download.
	Timeout time.Duration
	// OnPoll observes each status check.
	OnPoll func(poll int, done bool)
}

type GenerateVideoRequest struct {
	Model ModelRef

	Prompt string
	// Image is an optional image data URI to animate.
	Image       string
	AspectRatio string
	Resolution  string

	Poll PollOptions

	// Media receives the downloaded video when set.
	Media MediaStore

	// Retry applies to the submit and download calls, not to polling.
	Retry   *RetryPolicy
	Timeout time.Duration
}

type Video struct {
	Data      []byte
	MediaType string
	Operation string

	// Handle is set when the request named a MediaStore.
	Handle string
}

// pollSleep replaces the poll timer in tests.
var pollSleep func(ctx context.Context, d time.Duration) error

// GenerateVideo submits a video job, waits for it to finish and downloads
// the first generated video.
func GenerateVideo(ctx context.Context, req GenerateVideoRequest) (*Video, error) {
	vreq := provider.VideoRequest{
		Prompt:         strings.TrimSpace(req.Prompt),
		NumberOfVideos: 1,
		Resolution:     req.Resolution,
		AspectRatio:    req.AspectRatio,
	}
	if req.Image != "" {
		img, ok := parseImageDataURI(req.Image)
		if !ok {
			return nil, invalid("image", "invalid base64 image data")
		}
		vreq.Image = &img
		if vreq.Prompt == "" {
			vreq.Prompt = defaultImageVideoPrompt
		}
	}
	if vreq.Prompt == "" {
		return nil, invalid("prompt", "is required")
	}
	if vreq.Resolution == "" {
		vreq.Resolution = DefaultVideoResolution
	}
	if vreq.AspectRatio == "" {
		vreq.AspectRatio = DefaultVideoAspectRatio
	}

	vp, err := videoProviderFor(req.Model)
	if err != nil {
		return nil, err
	}
	pd := providerData(req.Model)
	vreq.Model = req.Model.Name()
	vreq.ProviderData = pd

	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	policy, err := resolveRetry(req.Retry, DefaultRetry)
	if err != nil {
		return nil, err
	}
	op, err := withRetry(ctx, policy, func(ctx context.Context) (provider.Operation, error) {
		return vp.StartVideo(ctx, vreq)
	})
	if err != nil {
		return nil, err
	}
	slog.Default().Info("video operation started", slog.String("operation", op.Name))

	if !op.Done {
		name, n := op.Name, 0
		op, err = poll.Until(ctx, poll.Options{
			Interval: req.Poll.Interval,
			MaxPolls: req.Poll.MaxPolls,
			Timeout:  req.Poll.Timeout,
			Sleep:    pollSleep,
			Logger:   slog.Default(),
		}, func(ctx context.Context) (provider.Operation, bool, error) {
			cur, err := vp.GetVideoOperation(ctx, name, pd)
			if err != nil {
				return cur, false, err
			}
			n++
			if req.Poll.OnPoll != nil {
				req.Poll.OnPoll(n, cur.Done)
			}
			return cur, cur.Done, nil
		})
		if err != nil {
			return nil, mapProviderError(err)
		}
	}

	if op.Failed() {
		return nil, &Error{
			Provider: req.Model.Provider(),
			Code:     "operation_failed",
			Message:  fmt.Sprintf("video operation %s failed: %s", op.Name, op.ErrorMessage),
			Cause:    &poll.OperationError{Name: op.Name, Code: op.ErrorCode, Message: op.ErrorMessage},
		}
	}
	if len(op.VideoURIs) == 0 {
		return nil, &NoVideoGeneratedError{Provider: req.Model.Provider(), Operation: op.Name}
	}

	type download struct {
		data      []byte
		mediaType string
	}
	dl, err := withRetry(ctx, policy, func(ctx context.Context) (download, error) {
		b, mt, err := vp.DownloadVideo(ctx, op.VideoURIs[0], pd)
		return download{data: b, mediaType: mt}, err
	})
	if err != nil {
		return nil, err
	}
	if len(dl.data) == 0 {
		return nil, &NoVideoGeneratedError{Provider: req.Model.Provider(), Operation: op.Name}
	}

	v := &Video{Data: dl.data, MediaType: dl.mediaType, Operation: op.Name}
	if req.Media != nil {
		h, err := req.Media.Publish(dl.data, dl.mediaType)
		if err != nil {
			return nil, fmt.Errorf("publish video: %w", err)
		}
		v.Handle = h
	}
	return v, nil
}

func videoProviderFor(m ModelRef) (provider.VideoProvider, error) {
	p, err := providerForModel(m)
	if err != nil {
		return nil, err
	}
	vp, ok := p.(provider.VideoProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not support video generation", m.Provider())
	}
	return vp, nil
}
