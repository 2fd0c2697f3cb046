package studio

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/studio/internal/audio"
	"github.com/bitop-dev/studio/internal/media"
	"github.com/bitop-dev/studio/internal/provider"
)

// pcmBase64 returns n frames of mono PCM16.
func pcmBase64(n int) string {
	raw := make([]byte, n*2)
	for i := range raw {
		raw[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func speechOK(frames int) func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
	return func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
		return provider.SpeechResponse{AudioBase64: pcmBase64(frames), MediaType: "audio/L16;codec=pcm;rate=24000"}, nil
	}
}

func TestGenerateSpeech_ProducesWAV(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(2400)}
	model := fakeModel(t, fp, "tts")

	out, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hello there"})
	require.NoError(t, err)

	assert.Equal(t, "audio/wav", out.MediaType)
	assert.Equal(t, 24000, out.SampleRate)
	assert.Equal(t, 1, out.Channels)
	assert.Equal(t, 100*time.Millisecond, out.Duration)
	require.Len(t, out.AudioData, audio.HeaderSize+4800)
	assert.Equal(t, "RIFF", string(out.AudioData[:4]))

	raw, _ := base64.StdEncoding.DecodeString(pcmBase64(2400))
	assert.Equal(t, raw, out.AudioData[audio.HeaderSize:])
	assert.Empty(t, out.Handle)
}

func TestGenerateSpeech_StripsMarkdownAndDefaultsVoice(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(10)}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "  **Bold** _it_ `code` #tag  "})
	require.NoError(t, err)

	reqs := fp.SpeechRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bold it code tag", reqs[0].Text)
	assert.Equal(t, DefaultVoice, reqs[0].Voice)
	assert.Equal(t, "tts", reqs[0].Model)
}

func TestGenerateSpeech_EmptyTextIsRejectedLocally(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(10)}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: " **__## "})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, fp.SpeechRequests())
}

func TestGenerateSpeech_Emotion(t *testing.T) {
	tests := []struct {
		emotion Emotion
		want    string
		invalid bool
	}{
		{emotion: "", want: "Hi"},
		{emotion: EmotionNeutral, want: "Hi"},
		{emotion: EmotionHappy, want: "Say cheerfully: Hi"},
		{emotion: EmotionWhisper, want: "Say in a whisper: Hi"},
		{emotion: "Bored", invalid: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.emotion), func(t *testing.T) {
			fp := &fakeProvider{speech: speechOK(10)}
			model := fakeModel(t, fp, "tts")

			_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi", Voice: "Puck", Emotion: tt.emotion})
			if tt.invalid {
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			reqs := fp.SpeechRequests()
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.want, reqs[0].Text)
			assert.Equal(t, "Puck", reqs[0].Voice)
		})
	}
}

func TestGenerateSpeech_NoAudio(t *testing.T) {
	fp := &fakeProvider{speech: func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
		return provider.SpeechResponse{RawResponse: []byte(`{}`)}, nil
	}}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi"})
	var nse *NoSpeechGeneratedError
	require.ErrorAs(t, err, &nse)
	assert.True(t, IsNoOutput(err))
}

func TestGenerateSpeech_MalformedAudio(t *testing.T) {
	fp := &fakeProvider{speech: func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
		return provider.SpeechResponse{AudioBase64: "%%%not-base64%%%"}, nil
	}}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi"})
	assert.True(t, IsDecodeError(err))
}

func TestGenerateSpeech_OddPCMLength(t *testing.T) {
	fp := &fakeProvider{speech: func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
		return provider.SpeechResponse{AudioBase64: base64.StdEncoding.EncodeToString([]byte{1, 2, 3})}, nil
	}}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi"})
	assert.True(t, IsFormatError(err))
}

func TestGenerateSpeech_FailsFastOnRateLimit(t *testing.T) {
	rec := useFakeSleep(t)
	fp := &fakeProvider{speech: func(int, provider.SpeechRequest) (provider.SpeechResponse, error) {
		return provider.SpeechResponse{}, rateLimited()
	}}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi"})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Len(t, fp.SpeechRequests(), 1)
	assert.Empty(t, rec.Waits())
}

func TestGenerateSpeech_RetryOverride(t *testing.T) {
	rec := useFakeSleep(t)
	fp := &fakeProvider{speech: func(call int, req provider.SpeechRequest) (provider.SpeechResponse, error) {
		if call < 2 {
			return provider.SpeechResponse{}, rateLimited()
		}
		return speechOK(10)(call, req)
	}}
	model := fakeModel(t, fp, "tts")

	var seen []RetryAttempt
	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{
		Model: model,
		Text:  "Hi",
		Retry: &RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, OnRetry: func(a RetryAttempt) { seen = append(seen, a) }},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.Waits())
	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Attempt)
	assert.True(t, IsRateLimited(seen[0].Err))
}

func TestGenerateSpeech_PublishesHandle(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(10)}
	model := fakeModel(t, fp, "tts")
	store := media.NewStore(media.Options{})

	out, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi", Media: store})
	require.NoError(t, err)
	require.NotEmpty(t, out.Handle)

	item, ok := store.Get(media.Handle(out.Handle))
	require.True(t, ok)
	assert.Equal(t, "audio/wav", item.MediaType)
	assert.Equal(t, out.AudioData, item.Data)
}

func TestGenerateSpeech_UnsupportedProvider(t *testing.T) {
	model := fakeModel(t, textOnlyProvider{}, "tts")

	_, err := GenerateSpeech(context.Background(), GenerateSpeechRequest{Model: model, Text: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support speech")
}

func TestGenerateDialogue_OneVoicePerSpeaker(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(10)}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateDialogue(context.Background(), GenerateDialogueRequest{
		Model: model,
		Lines: []DialogueLine{
			{Speaker: "Puck", Text: "Hello"},
			{Speaker: "Kore", Text: "Hi"},
			{Speaker: "Puck", Text: "Bye"},
			{Speaker: "Kore", Text: "  "},
		},
		Voices: map[string]string{"Kore": "Aoede"},
	})
	require.NoError(t, err)

	reqs := fp.SpeechRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Puck: Hello\nKore: Hi\nPuck: Bye", reqs[0].Text)
	assert.Equal(t, []provider.SpeakerVoice{{Speaker: "Puck", Voice: "Puck"}, {Speaker: "Kore", Voice: "Aoede"}}, reqs[0].Speakers)
}

func TestGenerateDialogue_Validation(t *testing.T) {
	fp := &fakeProvider{speech: speechOK(10)}
	model := fakeModel(t, fp, "tts")

	_, err := GenerateDialogue(context.Background(), GenerateDialogueRequest{Model: model})
	assert.True(t, IsValidation(err))

	_, err = GenerateDialogue(context.Background(), GenerateDialogueRequest{Model: model, Lines: []DialogueLine{{Text: "x"}}})
	assert.True(t, IsValidation(err))
	assert.Empty(t, fp.SpeechRequests())
}
