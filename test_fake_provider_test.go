package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitop-dev/studio/internal/provider"
)

type testModel struct {
	provider string
	name     string
}

func (m testModel) Provider() string { return m.provider }
func (m testModel) Name() string     { return m.name }

// fakeProvider implements every provider interface; unset hooks fail the call.
type fakeProvider struct {
	mu sync.Mutex

	requests      []provider.Request
	speechReqs    []provider.SpeechRequest
	imageReqs     []provider.GenerateImageRequest
	videoReqs     []provider.VideoRequest
	operationGets []string
	downloads     []string

	generate func(call int, req provider.Request) (provider.Response, error)
	speech   func(call int, req provider.SpeechRequest) (provider.SpeechResponse, error)
	image    func(call int, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error)
	start    func(req provider.VideoRequest) (provider.Operation, error)
	getOp    func(call int, name string) (provider.Operation, error)
	download func(uri string) ([]byte, string, error)
}

func (p *fakeProvider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	call := len(p.requests) - 1
	fn := p.generate
	p.mu.Unlock()
	if fn == nil {
		return provider.Response{}, fmt.Errorf("fakeProvider.Generate not configured")
	}
	return fn(call, req)
}

func (p *fakeProvider) GenerateSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResponse, error) {
	p.mu.Lock()
	p.speechReqs = append(p.speechReqs, req)
	call := len(p.speechReqs) - 1
	fn := p.speech
	p.mu.Unlock()
	if fn == nil {
		return provider.SpeechResponse{}, fmt.Errorf("fakeProvider.GenerateSpeech not configured")
	}
	return fn(call, req)
}

func (p *fakeProvider) GenerateImage(ctx context.Context, req provider.GenerateImageRequest) (provider.GenerateImageResponse, error) {
	p.mu.Lock()
	p.imageReqs = append(p.imageReqs, req)
	call := len(p.imageReqs) - 1
	fn := p.image
	p.mu.Unlock()
	if fn == nil {
		return provider.GenerateImageResponse{}, fmt.Errorf("fakeProvider.GenerateImage not configured")
	}
	return fn(call, req)
}

func (p *fakeProvider) StartVideo(ctx context.Context, req provider.VideoRequest) (provider.Operation, error) {
	p.mu.Lock()
	p.videoReqs = append(p.videoReqs, req)
	fn := p.start
	p.mu.Unlock()
	if fn == nil {
		return provider.Operation{}, fmt.Errorf("fakeProvider.StartVideo not configured")
	}
	return fn(req)
}

func (p *fakeProvider) GetVideoOperation(ctx context.Context, name string, providerData any) (provider.Operation, error) {
	p.mu.Lock()
	p.operationGets = append(p.operationGets, name)
	call := len(p.operationGets) - 1
	fn := p.getOp
	p.mu.Unlock()
	if fn == nil {
		return provider.Operation{}, fmt.Errorf("fakeProvider.GetVideoOperation not configured")
	}
	return fn(call, name)
}

func (p *fakeProvider) DownloadVideo(ctx context.Context, uri string, providerData any) ([]byte, string, error) {
	p.mu.Lock()
	p.downloads = append(p.downloads, uri)
	fn := p.download
	p.mu.Unlock()
	if fn == nil {
		return nil, "", fmt.Errorf("fakeProvider.DownloadVideo not configured")
	}
	return fn(uri)
}

func (p *fakeProvider) Requests() []provider.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.Request(nil), p.requests...)
}

func (p *fakeProvider) SpeechRequests() []provider.SpeechRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.SpeechRequest(nil), p.speechReqs...)
}

func (p *fakeProvider) ImageRequests() []provider.GenerateImageRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.GenerateImageRequest(nil), p.imageReqs...)
}

func (p *fakeProvider) VideoRequests() []provider.VideoRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]provider.VideoRequest(nil), p.videoReqs...)
}

// textOnlyProvider supports plain generation only.
type textOnlyProvider struct{}

func (textOnlyProvider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	return provider.Response{}, nil
}

func registerFakeProvider(t *testing.T, fp provider.Provider) string {
	t.Helper()
	name := "fake_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	if err := provider.Register(name, fp); err != nil {
		t.Fatalf("register provider: %v", err)
	}
	return name
}

func fakeModel(t *testing.T, fp provider.Provider, name string) testModel {
	t.Helper()
	return testModel{provider: registerFakeProvider(t, fp), name: name}
}

func textResponse(s string) provider.Response {
	return provider.Response{Message: provider.Message{Role: provider.RoleModel, Content: []provider.ContentPart{provider.TextPart{Text: s}}}}
}

func rateLimited() error {
	return &provider.Error{Provider: "fake", Code: "RESOURCE_EXHAUSTED", Status: 429, Message: "quota exceeded", Retryable: true}
}

// sleepRecorder replaces the retry and poll timers and records each wait.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

func useFakeSleep(t *testing.T) *sleepRecorder {
	t.Helper()
	rec := &sleepRecorder{}
	prevRetry, prevPoll := retrySleep, pollSleep
	retrySleep, pollSleep = rec.sleep, rec.sleep
	t.Cleanup(func() { retrySleep, pollSleep = prevRetry, prevPoll })
	return rec
}
