package provider

import "context"

type SpeechProvider interface {
	GenerateSpeech(ctx context.Context, req SpeechRequest) (SpeechResponse, error)
}

type SpeakerVoice struct {
	Speaker string
	Voice   string
}

type SpeechRequest struct {
	Model string
	Text  string

	// Voice selects a single prebuilt voice. Speakers switches to
	// multi-speaker synthesis and takes precedence when non-empty.
	Voice    string
	Speakers []SpeakerVoice

	ProviderData any
}

type SpeechResponse struct {
	// AudioBase64 is the raw inline payload as returned by the API: headerless
	// little-endian 16-bit PCM, base64 encoded.
	AudioBase64 string
	MediaType   string

	RawResponse []byte
}
