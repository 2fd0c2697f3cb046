// Package api serves the studio operations over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio/internal/config"
)

// Server represents the HTTP server
type Server struct {
	engine             *gin.Engine
	httpServer         *http.Server
	cfg                config.ServerConfig
	logger             *slog.Logger
	rateLimiters       *sync.Map
	cleanupInitialized sync.Once
	cleanupStop        chan struct{}

	dependencies *Dependencies
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps *Dependencies, logger *slog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	if deps == nil {
		deps = &Dependencies{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		engine:       engine,
		cfg:          cfg,
		logger:       logger,
		rateLimiters: &sync.Map{},
		cleanupStop:  make(chan struct{}),
		dependencies: deps,
		httpServer: &http.Server{
			Addr:           cfg.Addr(),
			Handler:        engine,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			IdleTimeout:    cfg.ReadTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
	}
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()
	RegisterRoutes(s.engine, s.dependencies, PerClientRateLimit(s.rateLimiters, s.cleanupStop, &s.cleanupInitialized, s.cfg.RateLimitRPS, s.cfg.RateLimitBurst))
	return nil
}

func (s *Server) setupMiddleware() {
	s.engine.Use(RequestLogger(s.logger))
	if s.dependencies.Metrics != nil {
		s.engine.Use(Metrics(s.dependencies.Metrics))
	}
	s.engine.Use(CORS())
	s.engine.Use(RequestSizeLimit(s.cfg.MaxBodyBytes))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.cleanupStop)
	return s.httpServer.Shutdown(ctx)
}
