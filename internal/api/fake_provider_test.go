package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/internal/config"
	"github.com/bitop-dev/studio/internal/media"
	"github.com/bitop-dev/studio/internal/metrics"
	"github.com/bitop-dev/studio/internal/provider"
)

type testModel struct {
	provider string
	name     string
}

func (m testModel) Provider() string { return m.provider }
func (m testModel) Name() string     { return m.name }

// fakeProvider answers every operation family with canned output unless an
// err is set.
type fakeProvider struct {
	mu    sync.Mutex
	err   error
	calls int
	polls int
}

func (p *fakeProvider) fail() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.err
}

func (p *fakeProvider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	if err := p.fail(); err != nil {
		return provider.Response{}, err
	}
	text := "echo: " + req.Messages[len(req.Messages)-1].Text()
	if req.ResponseMIMEType == "application/json" {
		text = `{"characters":[],"scenes":[],"pages":[]}`
	}
	resp := provider.Response{Message: provider.Message{Role: provider.RoleModel, Content: []provider.ContentPart{provider.TextPart{Text: text}}}}
	if req.EnableSearch {
		resp.Sources = []provider.Source{{Title: "example", URI: "https://example.test/source"}}
	}
	return resp, nil
}

func (p *fakeProvider) GenerateSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResponse, error) {
	if err := p.fail(); err != nil {
		return provider.SpeechResponse{}, err
	}
	return provider.SpeechResponse{AudioBase64: base64.StdEncoding.EncodeToString(make([]byte, 4800)), MediaType: "audio/L16;codec=pcm;rate=24000"}, nil
}

func (p *fakeProvider) GenerateImage(ctx context.Context, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	if err := p.fail(); err != nil {
		return provider.GenerateImageResponse{}, err
	}
	return provider.GenerateImageResponse{Images: []provider.Image{{Base64: "aW1n", MediaType: "image/png"}}}, nil
}

func (p *fakeProvider) StartVideo(ctx context.Context, req provider.VideoRequest) (provider.Operation, error) {
	if err := p.fail(); err != nil {
		return provider.Operation{}, err
	}
	return provider.Operation{Name: "operations/v1"}, nil
}

func (p *fakeProvider) GetVideoOperation(ctx context.Context, name string, providerData any) (provider.Operation, error) {
	p.mu.Lock()
	p.polls++
	done := p.polls >= 2
	p.mu.Unlock()
	if !done {
		return provider.Operation{Name: name}, nil
	}
	return provider.Operation{Name: name, Done: true, VideoURIs: []string{"https://example.test/v"}}, nil
}

func (p *fakeProvider) DownloadVideo(ctx context.Context, uri string, providerData any) ([]byte, string, error) {
	return []byte("video-bytes"), "video/mp4", nil
}

func (p *fakeProvider) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type testEnv struct {
	engine *gin.Engine
	deps   *Dependencies
	fake   *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fp := &fakeProvider{}
	name := "fake_api_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	require.NoError(t, provider.Register(name, fp))
	model := func(m string) studio.ModelRef { return testModel{provider: name, name: m} }

	m := metrics.New()
	deps := &Dependencies{
		Models:  Models{Text: model("text"), Speech: model("tts"), Image: model("img"), Video: model("veo")},
		Media:   media.NewStore(media.Options{OnChange: m.ObserveMedia}),
		History: studio.NewMemoryHistory(),
		Metrics: m,
		Retry: config.RetryConfig{
			Images:  config.RetryPolicy{MaxAttempts: 1},
			Extract: config.RetryPolicy{MaxAttempts: 1},
			Speech:  config.RetryPolicy{MaxAttempts: 1},
			Text:    config.RetryPolicy{MaxAttempts: 1},
			Video:   config.RetryPolicy{MaxAttempts: 1},
		},
		Images:  config.ImagesConfig{MinInterval: -1, MaxParallel: 1},
		Video:   config.VideoConfig{PollInterval: time.Millisecond, MaxPolls: 10},
		Version: "test",
	}

	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0, MaxBodyBytes: 1 << 20}, deps, nil)
	require.NoError(t, srv.Initialize())
	return &testEnv{engine: srv.Engine(), deps: deps, fake: fp}
}

func rateLimitedErr() error {
	return &provider.Error{Provider: "fake", Code: "RESOURCE_EXHAUSTED", Status: 429, Message: "quota exceeded"}
}

func statusErr(status int, code string) error {
	return &provider.Error{Provider: "fake", Code: code, Status: status, Message: fmt.Sprintf("%s from upstream", code)}
}
