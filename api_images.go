package studio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitop-dev/studio/internal/audio"
	"github.com/bitop-dev/studio/internal/images"
	"github.com/bitop-dev/studio/internal/provider"
)

const DefaultAspectRatio = "1:1"

// GeneratedImages holds images as base64 data URIs, in generation order.
type GeneratedImages struct {
	Images      []string
	RawResponse []byte
}

type GenerateImagesRequest struct {
	Model ModelRef

	Prompt      string
	AspectRatio string
	N           int

	// MinInterval spaces successive calls (default 4s, negative disables).
	// Limiter, when set, replaces it and can be shared across requests.
	MinInterval time.Duration
	MaxParallel int
	Limiter     *rate.Limiter

	Retry   *RetryPolicy
	Timeout time.Duration
}

type EditImageRequest struct {
	Model ModelRef

	// Image and Mask are image data URIs. An unusable mask is ignored.
	Image  string
	Mask   string
	Prompt string

	Retry   *RetryPolicy
	Timeout time.Duration
}

type MergeImagesRequest struct {
	Model ModelRef

	Images []string
	Prompt string

	Retry   *RetryPolicy
	Timeout time.Duration
}

// GenerateImages runs N single-image calls, paced by the request's rate cap.
func GenerateImages(ctx context.Context, req GenerateImagesRequest) (*GeneratedImages, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, invalid("prompt", "is required")
	}
	n := req.N
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return nil, invalid("n", "must be > 0")
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = DefaultAspectRatio
	}

	ip, err := imageProviderFor(req.Model)
	if err != nil {
		return nil, err
	}
	policy, err := resolveRetry(req.Retry, ImageRetry)
	if err != nil {
		return nil, err
	}
	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	imgs, raw, err := images.GenerateBatched(ctx, ip, provider.GenerateImageRequest{
		Model:        req.Model.Name(),
		Prompt:       prompt,
		AspectRatio:  aspect,
		ProviderData: providerData(req.Model),
	}, n, images.Options{
		MinInterval: req.MinInterval,
		MaxParallel: req.MaxParallel,
		Limiter:     req.Limiter,
		Retry:       policy,
	})
	if err != nil {
		return nil, mapProviderError(err)
	}
	if len(imgs) == 0 {
		return nil, &NoImageGeneratedError{Provider: req.Model.Provider(), RawResponse: raw}
	}
	return &GeneratedImages{Images: toDataURIs(imgs), RawResponse: raw}, nil
}

// EditImage applies Prompt to Image. With a valid Mask, only the masked
// (red) area is meant to change.
func EditImage(ctx context.Context, req EditImageRequest) (string, error) {
	base, ok := parseImageDataURI(req.Image)
	if !ok {
		return "", invalid("image", "invalid base64 image string")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", invalid("prompt", "is required")
	}
	parts := []provider.InlineDataPart{base}
	prompt := req.Prompt
	if mask, ok := parseImageDataURI(req.Mask); ok {
		parts = append(parts, mask)
		prompt = "The second image is a mask (red area = edit). Instruction: " + req.Prompt
	}
	return singleImage(ctx, req.Model, parts, prompt, req.Retry, req.Timeout)
}

// MergeImages blends the given images following Prompt. Inputs that are not
// image data URIs are skipped.
func MergeImages(ctx context.Context, req MergeImagesRequest) (string, error) {
	var parts []provider.InlineDataPart
	for _, s := range req.Images {
		if p, ok := parseImageDataURI(s); ok {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", invalid("images", "no valid image data URIs")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", invalid("prompt", "is required")
	}
	prompt := fmt.Sprintf("Merge these images together based on this instruction: %s. Aim for a seamless blend.", req.Prompt)
	return singleImage(ctx, req.Model, parts, prompt, req.Retry, req.Timeout)
}

func singleImage(ctx context.Context, m ModelRef, parts []provider.InlineDataPart, prompt string, retry *RetryPolicy, timeout time.Duration) (string, error) {
	ip, err := imageProviderFor(m)
	if err != nil {
		return "", err
	}
	policy, err := resolveRetry(retry, ImageRetry)
	if err != nil {
		return "", err
	}
	ctx, cancel := applyTimeout(ctx, timeout)
	defer cancel()

	preq := provider.GenerateImageRequest{
		Model:        m.Name(),
		Prompt:       prompt,
		Images:       parts,
		ProviderData: providerData(m),
	}
	out, err := withRetry(ctx, policy, func(ctx context.Context) (provider.GenerateImageResponse, error) {
		return ip.GenerateImage(ctx, preq)
	})
	if err != nil {
		return "", err
	}
	for _, img := range out.Images {
		if img.Base64 != "" {
			return audio.DataURI(imageMediaType(img.MediaType), img.Base64), nil
		}
	}
	return "", &NoImageGeneratedError{Provider: m.Provider(), Text: out.Text, RawResponse: out.RawResponse}
}

func imageProviderFor(m ModelRef) (provider.ImageProvider, error) {
	p, err := providerForModel(m)
	if err != nil {
		return nil, err
	}
	ip, ok := p.(provider.ImageProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not support image generation", m.Provider())
	}
	return ip, nil
}

// parseImageDataURI accepts only data:image/...;base64 URIs.
func parseImageDataURI(s string) (provider.InlineDataPart, bool) {
	mt, payload, ok := audio.ParseDataURI(s)
	if !ok || !strings.HasPrefix(mt, "image/") {
		return provider.InlineDataPart{}, false
	}
	return provider.InlineDataPart{MediaType: mt, Data: payload}, true
}

func toDataURIs(imgs []provider.Image) []string {
	out := make([]string, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, audio.DataURI(imageMediaType(img.MediaType), img.Base64))
	}
	return out
}

func imageMediaType(mt string) string {
	if mt == "" {
		return "image/png"
	}
	return mt
}
