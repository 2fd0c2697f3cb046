// Package config loads studio settings from defaults, an optional YAML file
// and STUDIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "STUDIO"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Models   ModelsConfig   `mapstructure:"models"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Images   ImagesConfig   `mapstructure:"images"`
	Video    VideoConfig    `mapstructure:"video"`
	Media    MediaConfig    `mapstructure:"media"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ModelsConfig struct {
	Text   string `mapstructure:"text"`
	Speech string `mapstructure:"speech"`
	Image  string `mapstructure:"image"`
	Video  string `mapstructure:"video"`
}

type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// RetryConfig holds the retry policy for each family of remote call.
type RetryConfig struct {
	Images  RetryPolicy `mapstructure:"images"`
	Extract RetryPolicy `mapstructure:"extract"`
	Speech  RetryPolicy `mapstructure:"speech"`
	Text    RetryPolicy `mapstructure:"text"`
	Video   RetryPolicy `mapstructure:"video"`
}

type ImagesConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
	MaxParallel int           `mapstructure:"max_parallel"`
}

type VideoConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPolls     int           `mapstructure:"max_polls"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MediaConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<20)
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.api_version", "v1beta")
	v.SetDefault("gemini.timeout", 5*time.Minute)

	v.SetDefault("models.text", "gemini-2.5-flash")
	v.SetDefault("models.speech", "gemini-2.5-flash-preview-tts")
	v.SetDefault("models.image", "gemini-2.5-flash-image")
	v.SetDefault("models.video", "veo-3.1-fast-generate-preview")

	v.SetDefault("retry.images.max_attempts", 5)
	v.SetDefault("retry.images.base_delay", 5*time.Second)
	v.SetDefault("retry.extract.max_attempts", 3)
	v.SetDefault("retry.extract.base_delay", 5*time.Second)
	v.SetDefault("retry.speech.max_attempts", 1)
	v.SetDefault("retry.speech.base_delay", 4*time.Second)
	v.SetDefault("retry.text.max_attempts", 1)
	v.SetDefault("retry.text.base_delay", 4*time.Second)
	v.SetDefault("retry.video.max_attempts", 3)
	v.SetDefault("retry.video.base_delay", 4*time.Second)

	v.SetDefault("images.min_interval", 4*time.Second)
	v.SetDefault("images.max_parallel", 1)

	v.SetDefault("video.poll_interval", 5*time.Second)
	v.SetDefault("video.max_polls", 120)
	v.SetDefault("video.timeout", 15*time.Minute)

	v.SetDefault("media.max_bytes", 1<<30)

	v.SetDefault("database.path", "./data/studio.db")
	v.SetDefault("database.verbose", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment are used; a missing file at path is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The API key also comes from the variable names other Gemini tools use.
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	for name, p := range map[string]RetryPolicy{
		"images":  c.Retry.Images,
		"extract": c.Retry.Extract,
		"speech":  c.Retry.Speech,
		"text":    c.Retry.Text,
		"video":   c.Retry.Video,
	} {
		if p.MaxAttempts < 1 {
			return fmt.Errorf("retry.%s.max_attempts must be >= 1", name)
		}
		if p.MaxAttempts > 1 && p.BaseDelay <= 0 {
			return fmt.Errorf("retry.%s.base_delay must be > 0", name)
		}
	}
	if c.Images.MaxParallel <= 0 {
		c.Images.MaxParallel = 1
	}
	if c.Video.MaxPolls <= 0 {
		return fmt.Errorf("video.max_polls must be > 0")
	}
	if c.Gemini.APIKey == "" {
		slog.Warn("no Gemini API key configured; remote calls will fail")
	}
	return nil
}
