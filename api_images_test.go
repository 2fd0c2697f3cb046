package studio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/bitop-dev/studio/internal/provider"
)

const (
	pngURI  = "data:image/png;base64,aGVsbG8="
	jpegURI = "data:image/jpeg;base64,d29ybGQ="
)

func imageOK(int, provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	return provider.GenerateImageResponse{Images: []provider.Image{{Base64: "aW1n", MediaType: "image/png"}}}, nil
}

func TestGenerateImages_Sequential(t *testing.T) {
	fp := &fakeProvider{image: imageOK}
	model := fakeModel(t, fp, "img")

	out, err := GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "a cat", N: 3, MinInterval: -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,aW1n", "data:image/png;base64,aW1n", "data:image/png;base64,aW1n"}, out.Images)

	reqs := fp.ImageRequests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "a cat", r.Prompt)
		assert.Equal(t, DefaultAspectRatio, r.AspectRatio)
		assert.Empty(t, r.Images)
	}
}

func TestGenerateImages_PacedByLimiter(t *testing.T) {
	fp := &fakeProvider{image: imageOK}
	model := fakeModel(t, fp, "img")

	start := time.Now()
	_, err := GenerateImages(context.Background(), GenerateImagesRequest{
		Model:   model,
		Prompt:  "x",
		N:       3,
		Limiter: rate.NewLimiter(rate.Every(30*time.Millisecond), 1),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestGenerateImages_RetriesRateLimit(t *testing.T) {
	rec := useFakeSleep(t)
	fp := &fakeProvider{image: func(call int, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
		if call == 0 {
			return provider.GenerateImageResponse{}, rateLimited()
		}
		return imageOK(call, req)
	}}
	model := fakeModel(t, fp, "img")

	out, err := GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "x", AspectRatio: "16:9", MinInterval: -1})
	require.NoError(t, err)
	assert.Len(t, out.Images, 1)
	assert.Equal(t, []time.Duration{ImageRetry.BaseDelay}, rec.Waits())
	assert.Equal(t, "16:9", fp.ImageRequests()[0].AspectRatio)
}

func TestGenerateImages_FatalErrorNotRetried(t *testing.T) {
	rec := useFakeSleep(t)
	fp := &fakeProvider{image: func(int, provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
		return provider.GenerateImageResponse{}, &provider.Error{Provider: "fake", Code: "INVALID_ARGUMENT", Status: 400, Message: "bad prompt"}
	}}
	model := fakeModel(t, fp, "img")

	_, err := GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "x", N: 2, MinInterval: -1})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 400, e.Status)
	assert.Len(t, fp.ImageRequests(), 1)
	assert.Empty(t, rec.Waits())
}

func TestGenerateImages_NoImages(t *testing.T) {
	fp := &fakeProvider{image: func(int, provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
		return provider.GenerateImageResponse{Text: "I cannot draw that"}, nil
	}}
	model := fakeModel(t, fp, "img")

	_, err := GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "x", MinInterval: -1})
	var nie *NoImageGeneratedError
	require.ErrorAs(t, err, &nie)
}

func TestGenerateImages_Validation(t *testing.T) {
	fp := &fakeProvider{image: imageOK}
	model := fakeModel(t, fp, "img")

	_, err := GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "  "})
	assert.True(t, IsValidation(err))
	_, err = GenerateImages(context.Background(), GenerateImagesRequest{Model: model, Prompt: "x", N: -2})
	assert.True(t, IsValidation(err))
	_, err = GenerateImages(context.Background(), GenerateImagesRequest{Prompt: "x"})
	assert.True(t, IsValidation(err))
	assert.Empty(t, fp.ImageRequests())
}

func TestEditImage(t *testing.T) {
	t.Run("with mask", func(t *testing.T) {
		fp := &fakeProvider{image: imageOK}
		model := fakeModel(t, fp, "img")

		out, err := EditImage(context.Background(), EditImageRequest{Model: model, Image: pngURI, Mask: jpegURI, Prompt: "add a hat"})
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,aW1n", out)

		reqs := fp.ImageRequests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "The second image is a mask (red area = edit). Instruction: add a hat", reqs[0].Prompt)
		assert.Equal(t, []provider.InlineDataPart{
			{MediaType: "image/png", Data: "aGVsbG8="},
			{MediaType: "image/jpeg", Data: "d29ybGQ="},
		}, reqs[0].Images)
	})

	t.Run("unusable mask is ignored", func(t *testing.T) {
		fp := &fakeProvider{image: imageOK}
		model := fakeModel(t, fp, "img")

		_, err := EditImage(context.Background(), EditImageRequest{Model: model, Image: pngURI, Mask: "not-a-uri", Prompt: "add a hat"})
		require.NoError(t, err)
		reqs := fp.ImageRequests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "add a hat", reqs[0].Prompt)
		assert.Len(t, reqs[0].Images, 1)
	})

	t.Run("invalid base image", func(t *testing.T) {
		fp := &fakeProvider{image: imageOK}
		model := fakeModel(t, fp, "img")

		_, err := EditImage(context.Background(), EditImageRequest{Model: model, Image: "data:text/plain;base64,aGk=", Prompt: "x"})
		assert.True(t, IsValidation(err))
		assert.Empty(t, fp.ImageRequests())
	})
}

func TestMergeImages(t *testing.T) {
	fp := &fakeProvider{image: imageOK}
	model := fakeModel(t, fp, "img")

	_, err := MergeImages(context.Background(), MergeImagesRequest{Model: model, Images: []string{pngURI, "garbage", jpegURI}, Prompt: "side by side"})
	require.NoError(t, err)

	reqs := fp.ImageRequests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].Images, 2)
	assert.Equal(t, "Merge these images together based on this instruction: side by side. Aim for a seamless blend.", reqs[0].Prompt)

	_, err = MergeImages(context.Background(), MergeImagesRequest{Model: model, Images: []string{"garbage"}, Prompt: "x"})
	assert.True(t, IsValidation(err))
}

func TestMergeImages_NoImage(t *testing.T) {
	fp := &fakeProvider{image: func(int, provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
		return provider.GenerateImageResponse{Text: "refused"}, nil
	}}
	model := fakeModel(t, fp, "img")

	_, err := MergeImages(context.Background(), MergeImagesRequest{Model: model, Images: []string{pngURI}, Prompt: "x"})
	var nie *NoImageGeneratedError
	require.ErrorAs(t, err, &nie)
	assert.Equal(t, "refused", nie.Text)
}

func TestGenerateImages_CancelledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fp := &fakeProvider{image: func(call int, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
		cancel()
		return imageOK(call, req)
	}}
	model := fakeModel(t, fp, "img")

	out, err := GenerateImages(ctx, GenerateImagesRequest{Model: model, Prompt: "a cat", N: 3, MinInterval: -1})
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.Nil(t, out)
	assert.Len(t, fp.ImageRequests(), 1)
}
