// Package gemini implements the provider interfaces over the Gemini REST API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bitop-dev/studio/internal/backoff"
	"github.com/bitop-dev/studio/internal/httpx"
	"github.com/bitop-dev/studio/internal/provider"
	publicgemini "github.com/bitop-dev/studio/gemini"
)

const providerName = publicgemini.ProviderName

type Provider struct{}

func clientAndConfig(providerData any) (publicgemini.Config, error) {
	c, ok := providerData.(*publicgemini.Client)
	if !ok || c == nil {
		return publicgemini.Config{}, fmt.Errorf("gemini provider requires a client-bound model ref")
	}
	cfg := c.Config()
	if cfg.APIKey == "" {
		return publicgemini.Config{}, fmt.Errorf("gemini API key is required")
	}
	return cfg, nil
}

func headers(cfg publicgemini.Config) http.Header {
	h := make(http.Header)
	h.Set("x-goog-api-key", cfg.APIKey)
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	return h
}

func configError(err error) error {
	return &provider.Error{Provider: providerName, Code: "config_error", Message: err.Error(), Cause: err}
}

// call sends one JSON request and returns the raw response body.
func call(ctx context.Context, cfg publicgemini.Config, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &provider.Error{Provider: providerName, Code: "marshal_error", Message: err.Error(), Cause: err}
		}
		body = b
	}

	resp, err := httpx.DoJSON(ctx, cfg.HTTPClient, method, cfg.Endpoint(path), body, headers(cfg))
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, httpx.ReadLimited(resp, 1<<20))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	return raw, nil
}

func networkError(err error) error {
	return classified(&provider.Error{Provider: providerName, Code: httpx.ClassifyNetworkErr(err), Message: err.Error(), Cause: err})
}

// classified marks e retryable exactly when the retrier would retry it.
func classified(e *provider.Error) *provider.Error {
	e.Retryable = backoff.Classify(e) == backoff.Transient
	return e
}

// decodeError maps a non-2xx response to a provider error. The API's status
// string (e.g. RESOURCE_EXHAUSTED) becomes the error code.
func decodeError(status int, body []byte) error {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
		code := er.Error.Status
		if code == "" {
			code = "http_error"
		}
		return classified(&provider.Error{
			Provider: providerName,
			Code:     code,
			Status:   status,
			Message:  er.Error.Message,
		})
	}
	return classified(&provider.Error{
		Provider: providerName,
		Code:     "http_error",
		Status:   status,
		Message:  strings.TrimSpace(string(body)),
	})
}

func invalidResponse(err error) error {
	return &provider.Error{Provider: providerName, Code: "decode_error", Message: err.Error(), Cause: err}
}

