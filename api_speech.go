package studio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitop-dev/studio/internal/audio"
	"github.com/bitop-dev/studio/internal/provider"
)

// SpeechAudio is a playable WAV rendering of synthesized speech.
type SpeechAudio struct {
	AudioData  []byte
	MediaType  string
	SampleRate int
	Channels   int
	Duration   time.Duration

	// Handle is set when the request named a MediaStore.
	Handle string

	RawResponse []byte
}

type GenerateSpeechRequest struct {
	Model ModelRef

	Text    string
	Voice   string // prebuilt voice name; defaults to DefaultVoice
	Emotion Emotion

	// Media receives the WAV file when set.
	Media MediaStore

	Retry   *RetryPolicy
	Timeout time.Duration
}

type DialogueLine struct {
	Speaker string
	Text    string
}

type GenerateDialogueRequest struct {
	Model ModelRef

	Lines []DialogueLine
	// Voices maps a speaker to a prebuilt voice. Speakers without an entry
	// use their own name as the voice name.
	Voices map[string]string

	Media MediaStore

	Retry   *RetryPolicy
	Timeout time.Duration
}

var markdownChars = strings.NewReplacer("*", "", "#", "", "`", "", "_", "")

// GenerateSpeech synthesizes Text with a single prebuilt voice.
func GenerateSpeech(ctx context.Context, req GenerateSpeechRequest) (*SpeechAudio, error) {
	text := strings.TrimSpace(markdownChars.Replace(req.Text))
	if text == "" {
		return nil, invalid("text", "is required")
	}
	prefix, ok := req.Emotion.stylePrefix()
	if !ok {
		return nil, invalid("emotion", fmt.Sprintf("unknown emotion %q", req.Emotion))
	}
	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	sp, err := speechProviderFor(req.Model)
	if err != nil {
		return nil, err
	}
	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	return synthesize(ctx, sp, req.Model, provider.SpeechRequest{
		Model:        req.Model.Name(),
		Text:         prefix + text,
		Voice:        voice,
		ProviderData: providerData(req.Model),
	}, req.Media, req.Retry)
}

// GenerateDialogue synthesizes a multi-speaker script, one voice per
// distinct speaker.
func GenerateDialogue(ctx context.Context, req GenerateDialogueRequest) (*SpeechAudio, error) {
	var (
		script   []string
		speakers []provider.SpeakerVoice
		seen     = map[string]bool{}
	)
	for i, l := range req.Lines {
		speaker := strings.TrimSpace(l.Speaker)
		text := strings.TrimSpace(l.Text)
		if speaker == "" {
			return nil, invalid(fmt.Sprintf("lines[%d].speaker", i), "is required")
		}
		if text == "" {
			continue
		}
		script = append(script, speaker+": "+text)
		if seen[speaker] {
			continue
		}
		seen[speaker] = true
		voice := req.Voices[speaker]
		if voice == "" {
			voice = speaker
		}
		speakers = append(speakers, provider.SpeakerVoice{Speaker: speaker, Voice: voice})
	}
	if len(script) == 0 {
		return nil, invalid("lines", "at least one line with text is required")
	}

	sp, err := speechProviderFor(req.Model)
	if err != nil {
		return nil, err
	}
	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	return synthesize(ctx, sp, req.Model, provider.SpeechRequest{
		Model:        req.Model.Name(),
		Text:         strings.Join(script, "\n"),
		Speakers:     speakers,
		ProviderData: providerData(req.Model),
	}, req.Media, req.Retry)
}

func speechProviderFor(m ModelRef) (provider.SpeechProvider, error) {
	p, err := providerForModel(m)
	if err != nil {
		return nil, err
	}
	sp, ok := p.(provider.SpeechProvider)
	if !ok {
		return nil, fmt.Errorf("provider %q does not support speech generation", m.Provider())
	}
	return sp, nil
}

func synthesize(ctx context.Context, sp provider.SpeechProvider, m ModelRef, preq provider.SpeechRequest, store MediaStore, retry *RetryPolicy) (*SpeechAudio, error) {
	policy, err := resolveRetry(retry, NoRetry)
	if err != nil {
		return nil, err
	}
	out, err := withRetry(ctx, policy, func(ctx context.Context) (provider.SpeechResponse, error) {
		return sp.GenerateSpeech(ctx, preq)
	})
	if err != nil {
		return nil, err
	}
	if out.AudioBase64 == "" {
		return nil, &NoSpeechGeneratedError{Provider: m.Provider(), RawResponse: out.RawResponse}
	}

	rate, ok := audio.RateFromMediaType(out.MediaType)
	if !ok {
		rate = audio.SpeechSampleRate
	}
	c, err := audio.ToPlayableContainer(out.AudioBase64, rate, audio.SpeechChannels)
	if err != nil {
		return nil, err
	}

	res := &SpeechAudio{
		AudioData:   c.Data,
		MediaType:   c.MediaType,
		SampleRate:  c.SampleRate,
		Channels:    c.Channels,
		Duration:    c.Duration,
		RawResponse: out.RawResponse,
	}
	if store != nil {
		h, err := store.Publish(c.Data, c.MediaType)
		if err != nil {
			return nil, fmt.Errorf("publish audio: %w", err)
		}
		res.Handle = h
	}
	return res, nil
}
