// Package http adapts the invocation pipeline to an HTTP transport: one
// POST endpoint receives envelopes, runs them through the orchestrator, and
// returns codec-encoded results.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dexxiez/analog-nest-rpc/internal/logging"
	"github.com/dexxiez/analog-nest-rpc/pkg/codec"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Invoker is the server-side pipeline the adapter forwards calls to.
type Invoker interface {
	Invoke(ctx context.Context, target, action string, args []any, req *domain.RequestInfo) (any, error)
}

// Server handles the RPC endpoint.
type Server struct {
	invoker Invoker
	logger  *slog.Logger

	endpoint    string
	withMetrics bool
}

// Option configures the handler.
type Option func(*Server)

// WithEndpoint overrides the RPC endpoint path.
func WithEndpoint(path string) Option {
	return func(s *Server) {
		s.endpoint = path
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRoute exposes the Prometheus registry on /metrics.
func WithMetricsRoute() Option {
	return func(s *Server) {
		s.withMetrics = true
	}
}

// NewHandler creates the HTTP handler for the pipeline.
func NewHandler(invoker Invoker, opts ...Option) http.Handler {
	s := &Server{
		invoker:  invoker,
		logger:   logging.NewNop(),
		endpoint: domain.DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post(s.endpoint, s.handleInvoke)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.withMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("invoke: invalid request body", "error", err)
		return
	}
	if env.Controller == "" || env.Action == "" {
		http.Error(w, "controller and action are required", http.StatusBadRequest)
		return
	}

	args, err := codec.DecodeArgs(env.Data)
	if err != nil {
		http.Error(w, "invalid argument payload: "+err.Error(), http.StatusBadRequest)
		s.logger.Warn("invoke: undecodable arguments", "controller", env.Controller, "action", env.Action, "error", err)
		return
	}

	result, err := s.invoker.Invoke(r.Context(), env.Controller, env.Action, args, domain.RequestFromHTTP(r))
	if err != nil {
		s.writeError(w, env, err)
		return
	}

	out, err := codec.Encode(result)
	if err != nil {
		http.Error(w, "result not encodable", http.StatusInternalServerError)
		s.logger.Error("invoke: result failed encoding", "controller", env.Controller, "action", env.Action, "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		s.logger.Error("invoke: response write failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, env domain.Envelope, err error) {
	var (
		encErr  *domain.EncodingError
		bootErr *domain.BootstrapError
	)
	switch {
	case errors.Is(err, domain.ErrTargetNotFound), errors.Is(err, domain.ErrHandlerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case domain.IsUnauthorized(err):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.As(err, &encErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &bootErr):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		s.logger.Error("invoke: environment bootstrap failed", "error", err)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("invoke failed", "controller", env.Controller, "action", env.Action, "error", err)
	}
}
