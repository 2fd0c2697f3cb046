package gemini

import (
	"context"

	"github.com/bitop-dev/studio/internal/provider"
)

func (p *Provider) GenerateSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResponse, error) {
	cfg, err := clientAndConfig(req.ProviderData)
	if err != nil {
		return provider.SpeechResponse{}, configError(err)
	}
	if req.Text == "" {
		return provider.SpeechResponse{}, &provider.Error{Provider: providerName, Code: "request_error", Message: "text is required"}
	}

	sc := &speechConfig{}
	if len(req.Speakers) > 0 {
		cfgs := make([]speakerVoiceConfig, 0, len(req.Speakers))
		for _, s := range req.Speakers {
			cfgs = append(cfgs, speakerVoiceConfig{
				Speaker:     s.Speaker,
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: s.Voice}},
			})
		}
		sc.MultiSpeakerVoiceConfig = &multiSpeakerVoiceConfig{SpeakerVoiceConfigs: cfgs}
	} else {
		sc.VoiceConfig = &voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: req.Voice}}
	}

	payload := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig:       sc,
		},
	}

	out, raw, err := generateContent(ctx, cfg, req.Model, payload)
	if err != nil {
		return provider.SpeechResponse{}, err
	}
	c, err := firstCandidate(out)
	if err != nil {
		return provider.SpeechResponse{}, err
	}

	resp := provider.SpeechResponse{RawResponse: raw}
	if d, ok := fromContent(c.Content).InlineData(); ok {
		resp.AudioBase64 = d.Data
		resp.MediaType = d.MediaType
	}
	return resp, nil
}
