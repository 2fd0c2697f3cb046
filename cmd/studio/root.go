package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/gemini"
	"github.com/bitop-dev/studio/internal/config"
	"github.com/bitop-dev/studio/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	jsonLogs  bool
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Creative suite backend for Gemini",
	Long: `Studio - speech, image, video and story generation on the Gemini API

Run "studio serve" for the HTTP API or use the one-shot commands to
generate a single asset from the terminal.

Features:
  • Single and multi-speaker speech, returned as WAV
  • Image generation, editing and merging
  • Image-to-video with long-running operation polling
  • Chat, translation, transcripts and story analysis`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "enable JSON formatted logs")
}

// loadConfig reads .env, the config file and the environment, then installs
// the process logger. Commands that need configuration call it first.
func loadConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if jsonLogs {
		cfg.Logging.Format = "json"
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	appConfig = cfg
	return nil
}

func newClient(cfg *config.Config) *gemini.Client {
	return gemini.NewClient(gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		BaseURL:    cfg.Gemini.BaseURL,
		APIVersion: cfg.Gemini.APIVersion,
		Timeout:    cfg.Gemini.Timeout,
	})
}

func retryOverride(p config.RetryPolicy) *studio.RetryPolicy {
	return &studio.RetryPolicy{MaxAttempts: p.MaxAttempts, BaseDelay: p.BaseDelay}
}
