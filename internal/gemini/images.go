package gemini

import (
	"context"

	"github.com/bitop-dev/studio/internal/provider"
)

func (p *Provider) GenerateImage(ctx context.Context, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	cfg, err := clientAndConfig(req.ProviderData)
	if err != nil {
		return provider.GenerateImageResponse{}, configError(err)
	}
	if req.Prompt == "" {
		return provider.GenerateImageResponse{}, &provider.Error{Provider: providerName, Code: "request_error", Message: "prompt is required"}
	}

	parts := make([]part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, part{InlineData: &blob{MimeType: img.MediaType, Data: img.Data}})
	}
	parts = append(parts, part{Text: req.Prompt})

	payload := generateContentRequest{Contents: []content{{Parts: parts}}}
	if req.AspectRatio != "" {
		payload.GenerationConfig = &generationConfig{ImageConfig: &imageConfig{AspectRatio: req.AspectRatio}}
	}

	out, raw, err := generateContent(ctx, cfg, req.Model, payload)
	if err != nil {
		return provider.GenerateImageResponse{}, err
	}
	c, err := firstCandidate(out)
	if err != nil {
		return provider.GenerateImageResponse{}, err
	}

	msg := fromContent(c.Content)
	resp := provider.GenerateImageResponse{Text: msg.Text(), RawResponse: raw}
	for _, cp := range msg.Content {
		d, ok := cp.(provider.InlineDataPart)
		if !ok {
			continue
		}
		mt := d.MediaType
		if mt == "" {
			mt = "image/png"
		}
		resp.Images = append(resp.Images, provider.Image{Base64: d.Data, MediaType: mt})
	}
	return resp, nil
}
