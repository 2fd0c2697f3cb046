package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bitop-dev/studio/internal/provider"
	publicgemini "github.com/bitop-dev/studio/gemini"
)

func (p *Provider) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	cfg, err := clientAndConfig(req.ProviderData)
	if err != nil {
		return provider.Response{}, configError(err)
	}

	payload, err := buildRequest(req)
	if err != nil {
		return provider.Response{}, &provider.Error{Provider: providerName, Code: "request_error", Message: err.Error(), Cause: err}
	}

	out, _, err := generateContent(ctx, cfg, req.Model, payload)
	if err != nil {
		return provider.Response{}, err
	}
	c, err := firstCandidate(out)
	if err != nil {
		return provider.Response{}, err
	}

	resp := provider.Response{
		Message:      fromContent(c.Content),
		FinishReason: provider.FinishReason(c.FinishReason),
		Sources:      webSources(c.GroundingMetadata),
	}
	if u := out.UsageMetadata; u != nil {
		resp.Usage = provider.Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return resp, nil
}

// webSources keeps the grounding chunks that point at a web page.
func webSources(gm *groundingMetadata) []provider.Source {
	if gm == nil {
		return nil
	}
	var out []provider.Source
	for _, ch := range gm.GroundingChunks {
		if ch.Web == nil || ch.Web.URI == "" {
			continue
		}
		out = append(out, provider.Source{Title: ch.Web.Title, URI: ch.Web.URI})
	}
	return out
}

func generateContent(ctx context.Context, cfg publicgemini.Config, model string, payload generateContentRequest) (generateContentResponse, []byte, error) {
	if model == "" {
		return generateContentResponse{}, nil, &provider.Error{Provider: providerName, Code: "request_error", Message: "model is required"}
	}
	raw, err := call(ctx, cfg, http.MethodPost, "models/"+url.PathEscape(model)+":generateContent", payload)
	if err != nil {
		return generateContentResponse{}, nil, err
	}
	var out generateContentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return generateContentResponse{}, raw, invalidResponse(err)
	}
	return out, raw, nil
}

func firstCandidate(out generateContentResponse) (candidate, error) {
	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return candidate{}, &provider.Error{
				Provider: providerName,
				Code:     "blocked",
				Message:  "prompt blocked: " + out.PromptFeedback.BlockReason,
			}
		}
		return candidate{}, &provider.Error{Provider: providerName, Code: "invalid_response", Message: "response has no candidates"}
	}
	return out.Candidates[0], nil
}

func buildRequest(req provider.Request) (generateContentRequest, error) {
	contents, err := toContents(req.Messages)
	if err != nil {
		return generateContentRequest{}, err
	}
	out := generateContentRequest{Contents: contents}
	if req.System != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if req.EnableSearch {
		out.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	gc := &generationConfig{
		ResponseMimeType: req.ResponseMIMEType,
		Temperature:      req.Temperature,
	}
	if len(req.ResponseSchema) > 0 {
		gc.ResponseJSONSchema = json.RawMessage(req.ResponseSchema)
		if gc.ResponseMimeType == "" {
			gc.ResponseMimeType = "application/json"
		}
	}
	if req.ThinkingBudget != nil {
		gc.ThinkingConfig = &thinkingConfig{ThinkingBudget: *req.ThinkingBudget}
	}
	if gc.ResponseMimeType != "" || gc.ResponseJSONSchema != nil || gc.ThinkingConfig != nil || gc.Temperature != nil {
		out.GenerationConfig = gc
	}
	return out, nil
}

func toContents(msgs []provider.Message) ([]content, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}
	out := make([]content, 0, len(msgs))
	for _, m := range msgs {
		role := string(m.Role)
		if role == "" {
			role = string(provider.RoleUser)
		}
		parts, err := toParts(m.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, content{Role: role, Parts: parts})
	}
	return out, nil
}

func toParts(in []provider.ContentPart) ([]part, error) {
	out := make([]part, 0, len(in))
	for _, p := range in {
		switch v := p.(type) {
		case provider.TextPart:
			out = append(out, part{Text: v.Text})
		case provider.InlineDataPart:
			if v.Data == "" {
				return nil, fmt.Errorf("inline data part is empty")
			}
			out = append(out, part{InlineData: &blob{MimeType: v.MediaType, Data: v.Data}})
		default:
			return nil, fmt.Errorf("unsupported content part type %T", p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("message has no content")
	}
	return out, nil
}

func fromContent(c content) provider.Message {
	msg := provider.Message{Role: provider.RoleModel}
	for _, p := range c.Parts {
		if p.Thought {
			continue
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			msg.Content = append(msg.Content, provider.InlineDataPart{MediaType: p.InlineData.MimeType, Data: p.InlineData.Data})
			continue
		}
		if p.Text != "" {
			msg.Content = append(msg.Content, provider.TextPart{Text: p.Text})
		}
	}
	return msg
}
