package studio

import (
	"context"
	"fmt"

	"github.com/bitop-dev/studio/gemini"
	"github.com/bitop-dev/studio/internal/backoff"
	internalgemini "github.com/bitop-dev/studio/internal/gemini"
	"github.com/bitop-dev/studio/internal/provider"
)

func init() {
	if err := provider.Register(gemini.ProviderName, &internalgemini.Provider{}); err != nil {
		panic(err)
	}
}

func providerForModel(m ModelRef) (provider.Provider, error) {
	if m == nil {
		return nil, invalid("model", "is required")
	}
	name := m.Provider()
	if name == "" {
		return nil, fmt.Errorf("model provider is required")
	}
	if m.Name() == "" {
		return nil, invalid("model", "name is required")
	}
	p, ok := provider.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

type geminiClientModel interface {
	Client() *gemini.Client
}

func providerData(m ModelRef) any {
	v, ok := m.(geminiClientModel)
	if !ok || v.Client() == nil {
		return nil
	}
	return v.Client()
}

// withRetry runs op under the policy and maps the final error to the public
// error type.
func withRetry[T any](ctx context.Context, policy backoff.Policy, op func(context.Context) (T, error)) (T, error) {
	v, err := backoff.Do(ctx, policy, op)
	return v, mapProviderError(err)
}
