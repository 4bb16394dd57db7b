package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"writing_coach/internal/orchestrator"
	"writing_coach/internal/session"
)

const DefaultMaxTextBytes = 200000

type Option func(*Server)

func WithLogger(l *slog.Logger) Option          { return func(s *Server) { s.logger = l } }
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }
func WithMaxTextBytes(n int) Option             { return func(s *Server) { s.maxText = n } }

// Server exposes one-shot analysis and live sessions over HTTP.
type Server struct {
	runner   orchestrator.Runner
	sessions *session.Manager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	maxText  int
	router   *gin.Engine
}

func New(runner orchestrator.Runner, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{runner: runner, sessions: sessions, maxText: DefaultMaxTextBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.GET("/sessions", s.handleListSessions)
	v1.POST("/sessions", s.handleCreateSession)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
	v1.PUT("/sessions/:id/text", s.handleUpdateText)
	v1.POST("/sessions/:id/flush", s.handleFlush)
	v1.POST("/sessions/:id/apply", s.handleApply)
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("http request", "stage", "server",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(started))
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "stage", "server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
