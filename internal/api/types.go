package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/internal/config"
	"github.com/bitop-dev/studio/internal/database"
	"github.com/bitop-dev/studio/internal/media"
	"github.com/bitop-dev/studio/internal/metrics"
)

// Models names the model used for each operation family.
type Models struct {
	Text   studio.ModelRef
	Speech studio.ModelRef
	Image  studio.ModelRef
	Video  studio.ModelRef
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Models  Models
	Media   *media.Store
	History studio.HistoryStore
	DB      *database.DB
	Metrics *metrics.Metrics

	// ImageLimiter is shared by every image request so the pacing holds
	// across concurrent clients.
	ImageLimiter *rate.Limiter

	Retry  config.RetryConfig
	Images config.ImagesConfig
	Video  config.VideoConfig

	Version string

	// players maps a client-chosen player id to the *media.Slot holding the
	// handle it currently displays.
	players sync.Map
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type SpeechRequest struct {
	Text     string `json:"text" binding:"required"`
	Voice    string `json:"voice"`
	Emotion  string `json:"emotion"`
	Replaces string `json:"replaces"`
	Player   string `json:"player"`
}

type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type DialogueRequest struct {
	Lines    []DialogueLine    `json:"lines" binding:"required"`
	Voices   map[string]string `json:"voices"`
	Replaces string            `json:"replaces"`
	Player   string            `json:"player"`
}

type AudioResponse struct {
	Audio      string `json:"audio"`
	MediaType  string `json:"mediaType"`
	SampleRate int    `json:"sampleRate"`
	DurationMs int64  `json:"durationMs"`
}

type ImagesRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	AspectRatio string `json:"aspectRatio"`
	N           int    `json:"n"`
}

type ImagesResponse struct {
	Images []string `json:"images"`
}

type EditImageRequest struct {
	Image  string `json:"image" binding:"required"`
	Mask   string `json:"mask"`
	Prompt string `json:"prompt" binding:"required"`
}

type MergeImagesRequest struct {
	Images []string `json:"images" binding:"required"`
	Prompt string   `json:"prompt" binding:"required"`
}

type ImageResponse struct {
	Image string `json:"image"`
}

type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	TargetLanguage string `json:"targetLanguage" binding:"required"`
}

type TranscriptRequest struct {
	Media     string `json:"media" binding:"required"`
	MediaType string `json:"mediaType"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type VideoRequest struct {
	Prompt      string `json:"prompt"`
	Image       string `json:"image"`
	AspectRatio string `json:"aspectRatio"`
	Replaces    string `json:"replaces"`
	Player      string `json:"player"`
}

type VideoResponse struct {
	Video     string `json:"video"`
	MediaType string `json:"mediaType"`
	Operation string `json:"operation"`
}

type ChatRequest struct {
	SessionID         string   `json:"sessionId"`
	Message           string   `json:"message"`
	SystemInstruction string   `json:"systemInstruction"`
	EnableSearch      bool     `json:"enableSearch"`
	EnableThinking    bool     `json:"enableThinking"`
	Attachments       []string `json:"attachments"`
	SpeakReply        bool     `json:"speakReply"`
	Player            string   `json:"player"`
}

type ChatResponse struct {
	SessionID string         `json:"sessionId"`
	Text      string         `json:"text"`
	Sources   []SourceLink   `json:"sources,omitempty"`
	Audio     *AudioResponse `json:"audio,omitempty"`
}

type SourceLink struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

type StoryRequest struct {
	Story string `json:"story" binding:"required"`
}

type MangaRequest struct {
	Concept   string `json:"concept" binding:"required"`
	Genre     string `json:"genre"`
	PageCount int    `json:"pageCount"`
}

type MangaPanelRequest struct {
	Description string                  `json:"description" binding:"required"`
	Style       string                  `json:"style"`
	AspectRatio string                  `json:"aspectRatio"`
	Characters  []studio.MangaCharacter `json:"characters"`
}

type VoicesResponse struct {
	Voices   []studio.Voice   `json:"voices"`
	Emotions []studio.Emotion `json:"emotions"`
}

func millis(d time.Duration) int64 { return d.Milliseconds() }
