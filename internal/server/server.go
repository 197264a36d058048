// Package server provides the HTTP API for editing, previewing and exporting CVs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logger"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/jonathan/cv-builder/internal/visibility"
)

// CVService loads, saves and renders CV documents.
type CVService interface {
	Load(ctx context.Context, cvID uuid.UUID) (*builder.Result, error)
	Completion(ctx context.Context, cvID uuid.UUID) ([]types.SectionStatus, []*builder.SectionError, error)
	SaveSection(ctx context.Context, cvID uuid.UUID, section types.Section, doc *types.CV) error
	Preview(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts rendering.Options) (*builder.Preview, error)
	Export(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts export.Options) (*builder.Export, error)
	Snapshot(ctx context.Context, cvID uuid.UUID, overrides visibility.Overrides, opts export.Options) (*builder.Export, error)
}

// Library manages CV rows and the shared reference data.
type Library interface {
	CreateCV(ctx context.Context, title string) (uuid.UUID, error)
	ListCVs(ctx context.Context, limit int) ([]db.CVSummary, error)
	DeleteCV(ctx context.Context, cvID uuid.UUID) error
	ListCountries(ctx context.Context) ([]types.Country, error)
	ListSkills(ctx context.Context) ([]types.Skill, error)
	CreateSkill(ctx context.Context, s types.Skill) (*types.Skill, error)
	UpdateSkill(ctx context.Context, s types.Skill) (*types.Skill, error)
	DeleteSkill(ctx context.Context, id uuid.UUID) error
	ListCompanies(ctx context.Context) ([]types.Company, error)
	CreateCompany(ctx context.Context, c types.Company) (*types.Company, error)
	UpdateCompany(ctx context.Context, c types.Company) (*types.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cvs         CVService
	library     Library
	rateLimiter *ratelimit.Limiter
	exportOpts  export.Options
	log         *logger.Logger
}

// Config holds server configuration
type Config struct {
	Port         int
	RateLimit    *ratelimit.Config
	Export       export.Options
	WriteTimeout time.Duration
}

// New creates a new server instance
func New(cfg Config, cvs CVService, library Library, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Export.PageSize == "" {
		cfg.Export = export.DefaultOptions()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * export.DefaultTimeout
	}

	s := &Server{
		cvs:         cvs,
		library:     library,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		exportOpts:  cfg.Export,
		log:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// CV documents
	mux.HandleFunc("GET /cvs", s.handleListCVs)
	mux.HandleFunc("POST /cvs", s.handleCreateCV)
	mux.HandleFunc("GET /cvs/{id}", s.handleGetCV)
	mux.HandleFunc("DELETE /cvs/{id}", s.handleDeleteCV)
	mux.HandleFunc("GET /cvs/{id}/sections", s.handleListSections)
	mux.HandleFunc("PUT /cvs/{id}/sections/{section}", s.handleSaveSection)

	// Rendering and export
	mux.HandleFunc("GET /cvs/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /cvs/{id}/preview.jpg", s.handlePreviewImage)
	mux.HandleFunc("GET /cvs/{id}/export.pdf", s.handleExport)

	// Reference data
	mux.HandleFunc("GET /countries", s.handleListCountries)
	mux.HandleFunc("GET /skills", s.handleListSkills)
	mux.HandleFunc("POST /skills", s.handleCreateSkill)
	mux.HandleFunc("PUT /skills/{id}", s.handleUpdateSkill)
	mux.HandleFunc("DELETE /skills/{id}", s.handleDeleteSkill)
	mux.HandleFunc("GET /companies", s.handleListCompanies)
	mux.HandleFunc("POST /companies", s.handleCreateCompany)
	mux.HandleFunc("PUT /companies/{id}", s.handleUpdateCompany)
	mux.HandleFunc("DELETE /companies/{id}", s.handleDeleteCompany)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.WriteTimeout, // PDF export drives a headless browser
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Section-Errors")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start).String(),
		)
	})
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
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.log.Warn("rate limit exceeded",
		"client", clientID,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
