package provider

import (
	"context"
	"fmt"
	"sync"
)

// Provider is the minimum a backend must implement: plain content generation.
// Speech, image and video support are optional interfaces checked at call time.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type Request struct {
	Model string

	System   string
	Messages []Message

	// ResponseMIMEType and ResponseSchema request structured (JSON) output.
	ResponseMIMEType string
	ResponseSchema   []byte

	EnableSearch   bool
	ThinkingBudget *int

	// ProviderData may carry provider-specific wiring (e.g. a client handle).
	// Providers must treat unknown types as an error.
	ProviderData any

	Temperature *float32
}

type Response struct {
	Message      Message
	Usage        Usage
	FinishReason FinishReason

	// Sources lists the web pages a search-grounded answer cites.
	Sources []Source
}

type Source struct {
	Title string
	URI   string
}

type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(name string, p Provider) error {
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if p == nil {
		return fmt.Errorf("provider %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}

	r.providers[name] = p
	return nil
}

func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

var defaultRegistry = NewRegistry()

func Register(name string, p Provider) error {
	return defaultRegistry.Register(name, p)
}

func Get(name string) (Provider, bool) {
	return defaultRegistry.Get(name)
}
