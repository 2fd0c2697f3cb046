package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// Input names one binary media source. The first non-empty field wins.
type Input struct {
	Bytes     []byte
	Base64    string // bare base64 or a data: URI
	URL       string
	MediaType string
}

var ErrNoInput = errors.New("media input is required (bytes, base64, data URI or URL)")

var dataURIPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// ParseDataURI splits a base64 data URI into its media type and payload.
func ParseDataURI(uri string) (mediaType, payload string, ok bool) {
	m := dataURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// DataURI formats data as a base64 data URI.
func DataURI(mediaType, b64 string) string {
	return "data:" + mediaType + ";base64," + b64
}

func ResolveInput(ctx context.Context, in Input) ([]byte, string, error) {
	if len(in.Bytes) > 0 {
		return in.Bytes, defaultString(in.MediaType, "application/octet-stream"), nil
	}
	if in.Base64 != "" {
		payload, mt := in.Base64, in.MediaType
		if uriType, p, ok := ParseDataURI(in.Base64); ok {
			payload = p
			mt = defaultString(mt, uriType)
		}
		b, err := DecodeBase64(payload)
		if err != nil {
			return nil, "", err
		}
		return b, defaultString(mt, "application/octet-stream"), nil
	}
	if in.URL != "" {
		return fetch(ctx, in.URL, in.MediaType)
	}
	return nil, "", ErrNoInput
}

func fetch(ctx context.Context, url, mediaType string) ([]byte, string, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(r)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("media url http status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mt := mediaType
	if mt == "" {
		mt = resp.Header.Get("Content-Type")
	}
	return b, defaultString(mt, "application/octet-stream"), nil
}

func defaultString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
