package provider

import "context"

type VideoProvider interface {
	StartVideo(ctx context.Context, req VideoRequest) (Operation, error)
	GetVideoOperation(ctx context.Context, name string, providerData any) (Operation, error)
	DownloadVideo(ctx context.Context, uri string, providerData any) ([]byte, string, error)
}

type VideoRequest struct {
	Model  string
	Prompt string
	Image  *InlineDataPart

	NumberOfVideos int
	Resolution     string
	AspectRatio    string

	ProviderData any
}

// Operation is the provider's view of a long-running job.
type Operation struct {
	Name string
	Done bool

	VideoURIs []string

	ErrorCode    int
	ErrorMessage string
}

func (o Operation) Failed() bool {
	return o.Done && o.ErrorMessage != ""
}
