package studio

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bitop-dev/studio/internal/audio"
	"github.com/bitop-dev/studio/internal/provider"
)

// ThinkingBudget is the token budget used when a chat enables thinking.
const ThinkingBudget = 2048

type TextResult struct {
	Text  string
	Usage Usage
}

type TranslateRequest struct {
	Model ModelRef

	Text           string
	TargetLanguage string

	Retry   *RetryPolicy
	Timeout time.Duration
}

type ExtractScriptRequest struct {
	Model ModelRef

	// Media is a data URI or bare base64 audio/video payload.
	Media string
	// MediaType is required when Media is bare base64.
	MediaType string
	// MediaURL is fetched when Media is empty.
	MediaURL string

	Retry   *RetryPolicy
	Timeout time.Duration
}

type ChatRequest struct {
	Model ModelRef

	// SessionID names the conversation; a new one is assigned when empty.
	SessionID         string
	Message           string
	SystemInstruction string
	EnableSearch      bool
	EnableThinking    bool

	// Attachments are image or audio data URIs sent alongside Message.
	// They are not kept in History.
	Attachments []string

	// SpeakReply also renders the reply with ChatVoice using SpeechModel.
	// A failed rendering is logged and leaves Speech nil.
	SpeakReply  bool
	SpeechModel ModelRef
	// Media receives the spoken reply when set.
	Media MediaStore

	// History defaults to an in-memory store scoped to this call.
	History HistoryStore

	Retry   *RetryPolicy
	Timeout time.Duration
}

// ChatVoice speaks chat replies.
const ChatVoice = "Zephyr"

type ChatResponse struct {
	SessionID string
	Text      string
	Turns     []ChatTurn
	Usage     Usage

	// Sources are the web pages a search-grounded reply cites.
	Sources []Source
	// Speech is set when the request asked for a spoken reply.
	Speech *SpeechAudio
}

type Source struct {
	Title string
	URI   string
}

// Translate rewrites a script into TargetLanguage, keeping its tone.
func Translate(ctx context.Context, req TranslateRequest) (*TextResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, invalid("text", "is required")
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, invalid("target_language", "is required")
	}
	prompt := fmt.Sprintf("Translate the following video script into %s. Maintain tone. Only return text. Original: \"%s\"", req.TargetLanguage, req.Text)
	return generateText(ctx, req.Model, provider.Request{
		Messages: []provider.Message{provider.UserText(prompt)},
	}, req.Retry, NoRetry, req.Timeout)
}

// ExtractScript transcribes the spoken audio of a media file.
func ExtractScript(ctx context.Context, req ExtractScriptRequest) (*TextResult, error) {
	payload, mediaType := strings.TrimSpace(req.Media), req.MediaType
	if mt, data, ok := audio.ParseDataURI(payload); ok {
		payload = data
		if mediaType == "" {
			mediaType = mt
		}
	} else if _, after, found := strings.Cut(payload, ","); found {
		payload = after
	}
	if payload == "" && req.MediaURL != "" {
		b, mt, err := audio.ResolveInput(ctx, audio.Input{URL: req.MediaURL, MediaType: mediaType})
		if err != nil {
			return nil, fmt.Errorf("fetch media: %w", err)
		}
		payload, mediaType = base64.StdEncoding.EncodeToString(b), mt
	}
	if payload == "" {
		return nil, invalid("media", "is required")
	}
	if mediaType == "" {
		return nil, invalid("media_type", "is required")
	}
	msg := provider.Message{Role: provider.RoleUser, Content: []provider.ContentPart{
		provider.InlineDataPart{MediaType: mediaType, Data: payload},
		provider.TextPart{Text: "Listen to the audio and provide a transcript. Text only."},
	}}
	return generateText(ctx, req.Model, provider.Request{Messages: []provider.Message{msg}},
		req.Retry, ExtractRetry, req.Timeout)
}

// Chat sends Message in the context of the session's stored history and
// appends both turns to it.
func Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" && len(req.Attachments) == 0 {
		return nil, invalid("message", "is required")
	}
	attachments, err := chatAttachments(req.Attachments)
	if err != nil {
		return nil, err
	}
	if req.SpeakReply && req.SpeechModel == nil {
		return nil, invalid("speech_model", "is required to speak the reply")
	}
	p, err := providerForModel(req.Model)
	if err != nil {
		return nil, err
	}
	policy, err := resolveRetry(req.Retry, NoRetry)
	if err != nil {
		return nil, err
	}
	store := req.History
	if store == nil {
		store = NewMemoryHistory()
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	turns, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs := make([]provider.Message, 0, len(turns)+1)
	for _, t := range turns {
		msgs = append(msgs, provider.Message{Role: provider.Role(t.Role), Content: []provider.ContentPart{provider.TextPart{Text: t.Text}}})
	}
	userText := req.Message
	if strings.TrimSpace(userText) == "" {
		userText = " "
	}
	parts := append([]provider.ContentPart{provider.TextPart{Text: userText}}, attachments...)
	msgs = append(msgs, provider.Message{Role: provider.RoleUser, Content: parts})

	preq := provider.Request{
		Model:        req.Model.Name(),
		System:       req.SystemInstruction,
		Messages:     msgs,
		EnableSearch: req.EnableSearch,
		ProviderData: providerData(req.Model),
	}
	if req.EnableThinking {
		budget := ThinkingBudget
		preq.ThinkingBudget = &budget
	}

	resp, err := withRetry(ctx, policy, func(ctx context.Context) (provider.Response, error) {
		return p.Generate(ctx, preq)
	})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Message.Text())
	if text == "" {
		return nil, &NoTextGeneratedError{Provider: req.Model.Provider()}
	}

	turns = append(turns,
		ChatTurn{Role: string(provider.RoleUser), Text: userText},
		ChatTurn{Role: string(provider.RoleModel), Text: text},
	)
	if err := store.Save(ctx, sessionID, turns); err != nil {
		return nil, err
	}

	out := &ChatResponse{SessionID: sessionID, Text: text, Turns: turns, Usage: Usage(resp.Usage)}
	for _, s := range resp.Sources {
		out.Sources = append(out.Sources, Source(s))
	}
	if req.SpeakReply {
		speech, err := GenerateSpeech(ctx, GenerateSpeechRequest{
			Model: req.SpeechModel,
			Text:  text,
			Voice: ChatVoice,
			Media: req.Media,
		})
		if err != nil {
			slog.Default().Warn("chat reply not spoken",
				slog.String("session", sessionID),
				slog.String("error", err.Error()))
		} else {
			out.Speech = speech
		}
	}
	return out, nil
}

// chatAttachments turns image and audio data URIs into inline parts.
func chatAttachments(uris []string) ([]provider.ContentPart, error) {
	out := make([]provider.ContentPart, 0, len(uris))
	for i, u := range uris {
		mt, payload, ok := audio.ParseDataURI(strings.TrimSpace(u))
		if !ok || !(strings.HasPrefix(mt, "image/") || strings.HasPrefix(mt, "audio/")) {
			return nil, invalid(fmt.Sprintf("attachments[%d]", i), "must be an image or audio data URI")
		}
		out = append(out, provider.InlineDataPart{MediaType: mt, Data: payload})
	}
	return out, nil
}

// ClearChat forgets a session's history.
func ClearChat(ctx context.Context, store HistoryStore, sessionID string) error {
	if sessionID == "" {
		return invalid("session_id", "is required")
	}
	if store == nil {
		return nil
	}
	return store.Delete(ctx, sessionID)
}

func generateText(ctx context.Context, m ModelRef, preq provider.Request, retry *RetryPolicy, fallback RetryPolicy, timeout time.Duration) (*TextResult, error) {
	p, err := providerForModel(m)
	if err != nil {
		return nil, err
	}
	policy, err := resolveRetry(retry, fallback)
	if err != nil {
		return nil, err
	}
	ctx, cancel := applyTimeout(ctx, timeout)
	defer cancel()

	preq.Model = m.Name()
	preq.ProviderData = providerData(m)
	resp, err := withRetry(ctx, policy, func(ctx context.Context) (provider.Response, error) {
		return p.Generate(ctx, preq)
	})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Message.Text())
	if text == "" {
		return nil, &NoTextGeneratedError{Provider: m.Provider()}
	}
	return &TextResult{Text: text, Usage: Usage(resp.Usage)}, nil
}
