// Package server provides the HTTP REST API for job posting verification.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/config"
	"github.com/jonathan/job-verifier/internal/server/middleware"
	"github.com/jonathan/job-verifier/internal/server/ratelimit"
	"github.com/jonathan/job-verifier/internal/types"
)

// maxBodyBytes caps request bodies; a posting description is rarely over a few hundred KB.
const maxBodyBytes = 1 << 20

// Verifier runs the verification pipeline. *pipeline.Runner satisfies it.
type Verifier interface {
	ProcessJob(ctx context.Context, rawURL string) (*types.Result, error)
	ProcessPosting(ctx context.Context, p *types.Posting) (*types.Result, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	verifier    Verifier
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	cfg         config.ServerConfig
}

// New creates a new server instance
func New(verifier Verifier, cfg config.ServerConfig) (*Server, error) {
	if verifier == nil {
		return nil, eris.New("server: a verifier is required")
	}

	s := &Server{
		verifier: verifier,
		validate: validator.New(),
		cfg:      cfg,
	}
	if cfg.RateLimit {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig(cfg.VerifyPerHour))
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Router builds the route table and middleware stack.
func (s *Server) Router() http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger(zap.L()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	if s.rateLimiter != nil {
		r.Use(middleware.RateLimit(s.rateLimiter, s.rateLimitResponse))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/verify", s.handleVerify)
		r.Post("/verify/stream", s.handleVerifyStream)
		r.Post("/analyze", s.handleAnalyze)
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	<-errCh
	zap.L().Info("server: stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":    "rate_limit_exceeded",
		"message":  "Rate limit exceeded. Please try again later.",
		"limit":    info.Limit,
		"reset_at": info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds() + 0.5)
	}
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
