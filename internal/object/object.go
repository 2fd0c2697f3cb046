// Package object generates schema-conforming JSON objects from a text model.
package object

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitop-dev/studio/internal/provider"
	"github.com/bitop-dev/studio/internal/schema"
)

type GenerateResult[T any] struct {
	Object T
	Raw    json.RawMessage

	LastResponse provider.Response
	Usage        provider.Usage
}

type Options struct {
	// MaxRetries is the number of correction re-prompts after an invalid
	// response.
	MaxRetries int
}

// Generate asks the model for JSON constrained by schemaJSON, validates the
// reply locally and re-prompts with the validation error when it does not
// conform.
func Generate[T any](ctx context.Context, p provider.Provider, req provider.Request, schemaJSON json.RawMessage, opts Options) (GenerateResult[T], error) {
	if len(schemaJSON) == 0 {
		return GenerateResult[T]{}, fmt.Errorf("schema is required")
	}
	if p == nil {
		return GenerateResult[T]{}, fmt.Errorf("provider is required")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	msgs := append([]provider.Message(nil), req.Messages...)
	base := req
	base.ResponseMIMEType = "application/json"
	base.ResponseSchema = schemaJSON
	if base.System == "" {
		base.System = jsonOnlyInstruction
	}

	var agg provider.Usage
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		callReq := base
		callReq.Messages = append([]provider.Message(nil), msgs...)

		resp, err := p.Generate(ctx, callReq)
		if err != nil {
			return GenerateResult[T]{}, err
		}
		agg = addUsage(agg, resp.Usage)

		raw := json.RawMessage(stripFences(resp.Message.Text()))
		obj, err := decode[T](schemaJSON, raw)
		if err == nil {
			return GenerateResult[T]{Object: obj, Raw: raw, LastResponse: resp, Usage: agg}, nil
		}
		lastErr = err
		msgs = append(msgs, resp.Message, provider.UserText(correctionPrompt(err, raw)))
	}
	return GenerateResult[T]{}, fmt.Errorf("invalid json: %w", lastErr)
}

func decode[T any](schemaJSON, raw json.RawMessage) (T, error) {
	var obj T
	if err := schema.Validate(schemaJSON, raw); err != nil {
		return obj, err
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return obj, err
	}
	return obj, nil
}

const jsonOnlyInstruction = "Return ONLY valid JSON matching the provided schema. Do not include backticks, markdown, or any extra text."

// stripFences removes a surrounding ``` or ```json block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func correctionPrompt(err error, raw json.RawMessage) string {
	const max = 4000
	s := string(raw)
	if len(s) > max {
		s = s[:max] + "…"
	}
	return fmt.Sprintf("The previous JSON was invalid or did not match the schema.\nError:\n%s\nPrevious JSON:\n%s\nReturn ONLY corrected JSON (no extra text).", err.Error(), s)
}

func addUsage(a, b provider.Usage) provider.Usage {
	return provider.Usage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}
