package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bitop-dev/studio"
	"github.com/bitop-dev/studio/internal/api"
	"github.com/bitop-dev/studio/internal/database"
	"github.com/bitop-dev/studio/internal/history"
	"github.com/bitop-dev/studio/internal/images"
	"github.com/bitop-dev/studio/internal/media"
	"github.com/bitop-dev/studio/internal/metrics"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the studio HTTP API with the configured settings.

Example:
  studio serve
  studio serve --port 9090
  studio serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	cfg := appConfig
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	logger := slog.Default()

	if cfg.Gemini.APIKey == "" {
		logger.Warn("no Gemini API key configured; generation requests will fail until one is set")
	}
	client := newClient(cfg)

	m := metrics.New()
	store := media.NewStore(media.Options{MaxBytes: cfg.Media.MaxBytes, OnChange: m.ObserveMedia})
	defer store.Close()

	var (
		db   *database.DB
		hist studio.HistoryStore = studio.NewMemoryHistory()
	)
	if cfg.Database.Path != "" {
		var err error
		db, err = database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		gs, err := history.NewGormStore(db.DB)
		if err != nil {
			return fmt.Errorf("failed to migrate chat history: %w", err)
		}
		hist = gs
		logger.Info("chat history persisted", slog.String("path", cfg.Database.Path))
	}

	deps := &api.Dependencies{
		Models: api.Models{
			Text:   client.Text(cfg.Models.Text),
			Speech: client.Speech(cfg.Models.Speech),
			Image:  client.Image(cfg.Models.Image),
			Video:  client.Video(cfg.Models.Video),
		},
		Media:        store,
		History:      hist,
		DB:           db,
		Metrics:      m,
		ImageLimiter: images.NewLimiter(cfg.Images.MinInterval),
		Retry:        cfg.Retry,
		Images:       cfg.Images,
		Video:        cfg.Video,
		Version:      Version,
	}

	srv := api.NewServer(cfg.Server, deps, logger)
	if err := srv.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-stop:
		logger.Info("shutting down server")
	case runErr = <-serverErr:
		logger.Error("server stopped", slog.String("error", runErr.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server gracefully stopped")
	return runErr
}
