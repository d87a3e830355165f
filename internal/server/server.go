// Package server exposes classification over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/storage"
)

// DefaultMaxUploadBytes bounds image uploads when not configured.
const DefaultMaxUploadBytes = 10 << 20

const shutdownTimeout = 10 * time.Second

// History is the read side of classification history.
type History interface {
	GetClassification(ctx context.Context, id string) (*model.ClassificationResult, error)
	ListClassifications(ctx context.Context, filter storage.HistoryFilter) ([]model.ClassificationResult, error)
	CategoryCounts(ctx context.Context) (map[model.Category]int, error)
}

// Config holds the collaborators and settings of a Server.
type Config struct {
	Engine *engine.Engine
	// History is optional; history routes answer 404 without it.
	History History
	// Metrics is optional; a fresh set is created when nil.
	Metrics *Metrics
	Logger  *slog.Logger
	// DatasetRoot enables /api/distribution and /data when set.
	DatasetRoot    string
	DatasetClasses []string
	// BinImageDir is served under /bins when set.
	BinImageDir    string
	MaxUploadBytes int64
}

// Server is the HTTP front end for an Engine.
type Server struct {
	engine         *engine.Engine
	history        History
	metrics        *Metrics
	logger         *slog.Logger
	router         *gin.Engine
	datasetRoot    string
	datasetClasses []string
	maxUploadBytes int64
}

// New builds the router. cfg.Engine is required.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("%w: engine is required", common.ErrMissingConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	s := &Server{
		engine:         cfg.Engine,
		history:        cfg.History,
		metrics:        metrics,
		logger:         logger,
		datasetRoot:    cfg.DatasetRoot,
		datasetClasses: cfg.DatasetClasses,
		maxUploadBytes: maxUpload,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors())
	router.MaxMultipartMemory = maxUpload

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/classify", s.classifyImage)
		api.POST("/resolve", s.resolveLabels)
		api.GET("/categories", s.listCategories)
		api.GET("/distribution", s.distribution)
		api.GET("/history", s.listHistory)
		api.GET("/history/stats", s.historyStats)
		api.GET("/history/:id", s.getHistory)
	}

	if cfg.DatasetRoot != "" {
		router.Static("/data", cfg.DatasetRoot)
	}
	if cfg.BinImageDir != "" {
		router.Static("/bins", cfg.BinImageDir)
	}

	s.router = router
	return s, nil
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}
