package studio

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bitop-dev/studio/internal/backoff"
	internalObject "github.com/bitop-dev/studio/internal/object"
	"github.com/bitop-dev/studio/internal/provider"
)

type GenerateObjectRequest struct {
	Model ModelRef

	// Prompt is sent as a single user message when Messages is empty.
	Prompt   string
	Messages []ChatTurn
	System   string

	// Schema is a JSON Schema document the result must satisfy.
	Schema json.RawMessage

	// MaxRetries bounds correction re-prompts after a non-conforming reply
	// (default 1).
	MaxRetries *int

	Retry   *RetryPolicy
	Timeout time.Duration
}

type GenerateObjectResponse[T any] struct {
	Object  T
	RawJSON json.RawMessage
	Usage   Usage
}

// GenerateObject asks the model for JSON matching req.Schema and decodes it
// into T.
func GenerateObject[T any](ctx context.Context, req GenerateObjectRequest) (*GenerateObjectResponse[T], error) {
	if len(req.Schema) == 0 {
		return nil, invalid("schema", "is required")
	}
	msgs := make([]provider.Message, 0, len(req.Messages)+1)
	for _, t := range req.Messages {
		msgs = append(msgs, provider.Message{Role: provider.Role(t.Role), Content: []provider.ContentPart{provider.TextPart{Text: t.Text}}})
	}
	if len(msgs) == 0 {
		if strings.TrimSpace(req.Prompt) == "" {
			return nil, invalid("prompt", "is required")
		}
		msgs = append(msgs, provider.UserText(req.Prompt))
	}

	p, err := providerForModel(req.Model)
	if err != nil {
		return nil, err
	}
	maxRetries := 1
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}

	policy, err := resolveRetry(req.Retry, NoRetry)
	if err != nil {
		return nil, err
	}

	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	out, err := internalObject.Generate[T](ctx, retryingProvider{p: p, policy: policy}, provider.Request{
		Model:        req.Model.Name(),
		System:       req.System,
		Messages:     msgs,
		ProviderData: providerData(req.Model),
	}, req.Schema, internalObject.Options{MaxRetries: maxRetries})
	if err != nil {
		var pe *provider.Error
		if errors.As(err, &pe) {
			return nil, mapProviderError(err)
		}
		return nil, err
	}
	return &GenerateObjectResponse[T]{Object: out.Object, RawJSON: out.Raw, Usage: Usage(out.Usage)}, nil
}

// retryingProvider runs every Generate call through a backoff policy.
type retryingProvider struct {
	p      provider.Provider
	policy backoff.Policy
}

func (r retryingProvider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	return backoff.Do(ctx, r.policy, func(ctx context.Context) (provider.Response, error) {
		return r.p.Generate(ctx, req)
	})
}
