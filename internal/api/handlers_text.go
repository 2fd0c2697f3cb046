package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio"
)

func PostTranslate(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TranslateRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.Translate(c.Request.Context(), studio.TranslateRequest{
			Model:          deps.Models.Text,
			Text:           req.Text,
			TargetLanguage: req.TargetLanguage,
			Retry:          deps.retryPolicy("translate", deps.Retry.Text),
		})
		deps.observe("translate", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, TextResponse{Text: out.Text})
	}
}

// PostTranscript extracts the spoken script from an uploaded audio or video.
func PostTranscript(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TranscriptRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.ExtractScript(c.Request.Context(), studio.ExtractScriptRequest{
			Model:     deps.Models.Text,
			Media:     req.Media,
			MediaType: req.MediaType,
			Retry:     deps.retryPolicy("transcript", deps.Retry.Extract),
		})
		deps.observe("transcript", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, TextResponse{Text: out.Text})
	}
}

func PostChat(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChatRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.Chat(c.Request.Context(), studio.ChatRequest{
			Model:             deps.Models.Text,
			SessionID:         req.SessionID,
			Message:           req.Message,
			SystemInstruction: req.SystemInstruction,
			EnableSearch:      req.EnableSearch,
			EnableThinking:    req.EnableThinking,
			Attachments:       req.Attachments,
			SpeakReply:        req.SpeakReply,
			SpeechModel:       deps.Models.Speech,
			Media:             deps.mediaStore(),
			History:           deps.History,
			Retry:             deps.retryPolicy("chat", deps.Retry.Text),
		})
		deps.observe("chat", start, err)
		if err != nil {
			writeError(c, err)
			return
		}

		resp := ChatResponse{SessionID: out.SessionID, Text: out.Text}
		for _, s := range out.Sources {
			resp.Sources = append(resp.Sources, SourceLink{Title: s.Title, URI: s.URI})
		}
		if out.Speech != nil {
			deps.show(req.Player, "", out.Speech.Handle)
			a := audioResponse(deps, out.Speech)
			resp.Audio = &a
		}
		c.JSON(http.StatusOK, resp)
	}
}

func DeleteChat(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := studio.ClearChat(c.Request.Context(), deps.History, c.Param("session")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func PostStory(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StoryRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.AnalyzeStory(c.Request.Context(), studio.AnalyzeStoryRequest{
			Model: deps.Models.Text,
			Story: req.Story,
			Retry: deps.retryPolicy("story", deps.Retry.Text),
		})
		deps.observe("story", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func PostManga(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MangaRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.PageCount == 0 {
			req.PageCount = 1
		}

		start := time.Now()
		out, err := studio.GenerateMangaScript(c.Request.Context(), studio.MangaScriptRequest{
			Model:     deps.Models.Text,
			Concept:   req.Concept,
			Genre:     req.Genre,
			PageCount: req.PageCount,
			Retry:     deps.retryPolicy("manga", deps.Retry.Text),
		})
		deps.observe("manga", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
