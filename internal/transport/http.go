package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hmesh/presale-dashboard/internal/mcp"
)

// ErrApplication is the JSON-RPC code for domain errors; the error data
// carries the stable code and recovery hint.
const ErrApplication = -32000

// RPCHandler handles JSON-RPC method dispatch.
type RPCHandler interface {
	Handle(ctx context.Context, id mcp.Identity, method string, params json.RawMessage) (any, error)
}

// Options configures the HTTP server routes.
type Options struct {
	// Auth guards POST /rpc when set.
	Auth func(http.Handler) http.Handler
	// MCP serves the streamable MCP endpoint when set.
	MCP http.Handler
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler RPCHandler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{handler: handler, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Use(IdentityMiddleware)
		r.Post("/rpc", srv.handleRPC)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		if errors.Is(err, ErrParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), IdentityFromContext(r.Context()), req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, req Request, err error) {
	switch {
	case errors.Is(err, mcp.ErrUnknownMethod):
		WriteError(w, req.ID, ErrMethodNotFound, "method not found", nil)
	case errors.Is(err, mcp.ErrInvalidParams):
		WriteError(w, req.ID, ErrInvalidParams, "invalid params", mcp.MapError(err))
	default:
		if apiErr := mcp.MapError(err); apiErr != nil {
			WriteError(w, req.ID, ErrApplication, apiErr.Message, apiErr)
			return
		}
		s.logger.Error("rpc request failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
	}
}
