package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Do sends a single HTTP request with a buffered body. Retrying is left to the
// caller; callers must close the returned response body.
func Do(ctx context.Context, client *http.Client, method, url string, body []byte, headers http.Header) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	req.Header = headers.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	return client.Do(req)
}

// DoJSON is Do with JSON content negotiation headers set when absent.
func DoJSON(ctx context.Context, client *http.Client, method, url string, body []byte, headers http.Header) (*http.Response, error) {
	h := headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if body != nil && h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "application/json")
	}
	return Do(ctx, client, method, url, body, h)
}

// ReadLimited reads at most n bytes of the body, for error payloads.
func ReadLimited(resp *http.Response, n int64) []byte {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, n))
	return b
}
