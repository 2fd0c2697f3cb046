// Package gemini configures access to the Gemini generative API.
//
// A Client is built once at startup and passed to operations through the
// model references it hands out. Reconfigure swaps the configuration for all
// subsequent calls made through the same Client; calls already in flight keep
// the configuration they started with.
package gemini

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const ProviderName = "gemini"

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultAPIVersion = "v1beta"

	DefaultTextModel   = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultVideoModel  = "veo-3.1-fast-generate-preview"
)

type Config struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Headers    map[string]string
	HTTPClient *http.Client

	// Timeout applies to each HTTP request when HTTPClient is not set.
	Timeout time.Duration
}

type Client struct {
	cfg atomic.Pointer[Config]
}

func NewClient(cfg Config) *Client {
	c := &Client{}
	c.Reconfigure(cfg)
	return c
}

// Reconfigure replaces the client's configuration.
func (c *Client) Reconfigure(cfg Config) {
	n := normalizeConfig(cfg)
	c.cfg.Store(&n)
}

func (c *Client) Config() Config {
	cfg := c.cfg.Load()
	if cfg == nil {
		return normalizeConfig(Config{})
	}
	out := *cfg
	if len(cfg.Headers) > 0 {
		out.Headers = make(map[string]string, len(cfg.Headers))
		for k, v := range cfg.Headers {
			out.Headers[k] = v
		}
	}
	return out
}

// Endpoint joins the base URL, API version and path.
func (cfg Config) Endpoint(path string) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.APIVersion, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) Text(modelName string) ModelRef {
	return c.model(modelName, DefaultTextModel)
}

func (c *Client) Speech(modelName string) ModelRef {
	return c.model(modelName, DefaultSpeechModel)
}

func (c *Client) Image(modelName string) ModelRef {
	return c.model(modelName, DefaultImageModel)
}

func (c *Client) Video(modelName string) ModelRef {
	return c.model(modelName, DefaultVideoModel)
}

func (c *Client) model(name, fallback string) ModelRef {
	if name == "" {
		name = fallback
	}
	return ModelRef{modelName: name, client: c}
}

type ModelRef struct {
	modelName string
	client    *Client
}

func (m ModelRef) Provider() string { return ProviderName }
func (m ModelRef) Name() string     { return m.modelName }

func (m ModelRef) Client() *Client { return m.client }

func normalizeConfig(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return cfg
}
