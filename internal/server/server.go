// Package server provides the HTTP API for interactive redaction and
// run-history queries.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/veildata/veil/internal/otel"
	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
)

const requestTimeout = 60 * time.Second

// Server holds the dependencies for the HTTP API.
type Server struct {
	router    *chi.Mux
	pipeline  *redact.Pipeline
	store     *report.Store
	apiKey    string
	limiter   *RateLimiter
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithStore enables the /v1/runs endpoint and per-request run recording.
func WithStore(s *report.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithAPIKey requires X-Veil-Key (or a Bearer token) on /v1 endpoints.
// An empty key leaves the API open.
func WithAPIKey(key string) Option {
	return func(srv *Server) { srv.apiKey = key }
}

// WithRateLimit enables token-bucket rate limiting: globalRPM across all
// clients, perClientRPM per remote address.
func WithRateLimit(globalRPM, perClientRPM int) Option {
	return func(srv *Server) { srv.limiter = NewRateLimiter(globalRPM, perClientRPM) }
}

// New creates the server and mounts its routes.
func New(pipeline *redact.Pipeline, opts ...Option) *Server {
	srv := &Server{
		pipeline:  pipeline,
		startTime: time.Now(),
	}
	for _, o := range opts {
		o(srv)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(otel.Middleware())

	r.Get("/healthz", srv.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(APIKeyMiddleware(srv.apiKey))
		r.Use(RateLimitMiddleware(srv.limiter))
		r.Post("/redact", srv.handleRedact)
		r.Get("/runs", srv.handleRuns)
	})

	srv.router = r
	return srv
}

// Handler returns the mounted router.
func (s *Server) Handler() http.Handler {
	return s.router
}
