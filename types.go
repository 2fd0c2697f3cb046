package studio

import (
	"context"
	"time"

	"github.com/bitop-dev/studio/internal/history"
)

// ModelRef names a model and the provider serving it. Use the constructors on
// gemini.Client.
type ModelRef interface {
	Provider() string
	Name() string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// MediaStore turns generated audio and video into locally addressable
// handles. Callers own the returned handles and must release them.
type MediaStore interface {
	Publish(data []byte, mediaType string) (string, error)
}

type (
	ChatTurn     = history.Turn
	HistoryStore = history.Store
)

// NewMemoryHistory returns a HistoryStore kept in process memory.
func NewMemoryHistory() HistoryStore { return history.NewMemoryStore() }

func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
