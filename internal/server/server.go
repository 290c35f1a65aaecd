package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gkobilansky/sigcalc/internal/metrics"
	"github.com/gkobilansky/sigcalc/internal/report"
	"github.com/gkobilansky/sigcalc/internal/stats"
	"github.com/gkobilansky/sigcalc/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port int
	// AdminToken guards sample management. A random one is generated
	// when empty.
	AdminToken        string
	AllowedOrigins    []string
	Locale            report.Locale
	DefaultConfidence stats.ConfidenceLevel
	// TokenFile, when set, receives the admin token at startup so the
	// token command can show it later.
	TokenFile string
	// Quiet suppresses the startup banner.
	Quiet   bool
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

type Server struct {
	cfg       Config
	store     store.Store
	token     string
	router    chi.Router
	srv       *http.Server
	logger    *slog.Logger
	metrics   *metrics.Metrics
	startTime time.Time

	calculate func(stats.TestInput) stats.StatisticalResult
}

func New(s store.Store, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(false)
	}
	if cfg.Locale == "" {
		cfg.Locale = report.DefaultLocale
	}
	if !cfg.DefaultConfidence.Valid() {
		cfg.DefaultConfidence = stats.DefaultConfidence
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	token := cfg.AdminToken
	if token == "" {
		token = uuid.NewString()
	}

	srv := &Server{
		cfg:       cfg,
		store:     s,
		token:     token,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		startTime: time.Now(),
		calculate: stats.Calculate,
	}
	srv.setupRoutes()

	srv.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("HTTP server starting", "address", s.srv.Addr)

	if s.cfg.TokenFile != "" {
		if err := os.WriteFile(s.cfg.TokenFile, []byte(s.token), 0o600); err != nil {
			s.logger.Warn("failed to write token file", "path", s.cfg.TokenFile, "error", err)
		}
	}

	if !s.cfg.Quiet {
		fmt.Println()
		fmt.Printf("sigcalc running on http://localhost:%d\n", s.cfg.Port)
		fmt.Printf("Admin token: %s\n", s.token)
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop")
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}
