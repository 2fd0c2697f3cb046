package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Setenv("STUDIO_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearKeyEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 5, cfg.Retry.Images.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.Images.BaseDelay)
	assert.Equal(t, 3, cfg.Retry.Extract.MaxAttempts)
	assert.Equal(t, 1, cfg.Retry.Text.MaxAttempts)
	assert.Equal(t, 3, cfg.Retry.Video.MaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.Retry.Video.BaseDelay)
	assert.Equal(t, 4*time.Second, cfg.Images.MinInterval)
	assert.Equal(t, 5*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, "veo-3.1-fast-generate-preview", cfg.Models.Video)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("STUDIO_SERVER_PORT", "9090")
	t.Setenv("STUDIO_RETRY_TEXT_MAX_ATTEMPTS", "3")
	t.Setenv("STUDIO_VIDEO_POLL_INTERVAL", "2s")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Retry.Text.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Video.PollInterval)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("STUDIO_GEMINI_API_KEY", "prefixed")
	t.Setenv("API_KEY", "generic")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Gemini.APIKey)
}

func TestLoad_File(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\nimages:\n  max_parallel: 2\nlogging:\n  format: json\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Images.MaxParallel)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearKeyEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("STUDIO_SERVER_PORT", "70000")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_InvalidRetry(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("STUDIO_RETRY_IMAGES_MAX_ATTEMPTS", "0")
	_, err := Load("")
	assert.Error(t, err)
}
