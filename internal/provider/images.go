package provider

import "context"

type ImageProvider interface {
	GenerateImage(ctx context.Context, req GenerateImageRequest) (GenerateImageResponse, error)
}

type Image struct {
	Base64    string
	MediaType string
}

type GenerateImageRequest struct {
	Model  string
	Prompt string

	// Images are source images for edit/merge requests, in order.
	Images []InlineDataPart

	AspectRatio string

	ProviderData any
}

type GenerateImageResponse struct {
	Images []Image
	Text   string

	RawResponse []byte
}
