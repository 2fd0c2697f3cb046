package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio"
)

// GetVoices lists the prebuilt voices and supported emotions.
func GetVoices() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, VoicesResponse{Voices: studio.Voices(), Emotions: studio.Emotions()})
	}
}

// PostSpeech synthesizes text with one voice and returns a media handle to
// the WAV file.
func PostSpeech(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SpeechRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.GenerateSpeech(c.Request.Context(), studio.GenerateSpeechRequest{
			Model:   deps.Models.Speech,
			Text:    req.Text,
			Voice:   req.Voice,
			Emotion: studio.Emotion(req.Emotion),
			Media:   deps.mediaStore(),
			Retry:   deps.retryPolicy("speech", deps.Retry.Speech),
		})
		deps.observe("speech", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		deps.show(req.Player, req.Replaces, out.Handle)
		writeAudio(c, deps, out)
	}
}

// PostDialogue synthesizes a multi-speaker script.
func PostDialogue(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DialogueRequest
		if !bindJSON(c, &req) {
			return
		}
		lines := make([]studio.DialogueLine, len(req.Lines))
		for i, l := range req.Lines {
			lines[i] = studio.DialogueLine{Speaker: l.Speaker, Text: l.Text}
		}

		start := time.Now()
		out, err := studio.GenerateDialogue(c.Request.Context(), studio.GenerateDialogueRequest{
			Model:  deps.Models.Speech,
			Lines:  lines,
			Voices: req.Voices,
			Media:  deps.mediaStore(),
			Retry:  deps.retryPolicy("dialogue", deps.Retry.Speech),
		})
		deps.observe("dialogue", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		deps.show(req.Player, req.Replaces, out.Handle)
		writeAudio(c, deps, out)
	}
}

func writeAudio(c *gin.Context, deps *Dependencies, out *studio.SpeechAudio) {
	c.JSON(http.StatusOK, audioResponse(deps, out))
}

func audioResponse(deps *Dependencies, out *studio.SpeechAudio) AudioResponse {
	if deps.Metrics != nil {
		deps.Metrics.AudioSeconds.Observe(out.Duration.Seconds())
	}
	return AudioResponse{
		Audio:      out.Handle,
		MediaType:  out.MediaType,
		SampleRate: out.SampleRate,
		DurationMs: millis(out.Duration),
	}
}
