// ABOUTME: Stateless HTTP JSON API over the auth service and store
// ABOUTME: Every guarded route re-authorizes from scratch, no server-side session state

package api

import (
	"log/slog"
	"net/http"

	"github.com/tamelab/tame/internal/auth"
	"github.com/tamelab/tame/internal/config"
	"github.com/tamelab/tame/internal/obs"
	"github.com/tamelab/tame/internal/store"
)

// Server exposes the stateless access mode over HTTP.
type Server struct {
	store  store.Store
	svc    *auth.Service
	cfg    *config.Config
	logger *slog.Logger
}

// NewServer creates the API server. The config controls rate limiting and
// the metrics endpoint.
func NewServer(st store.Store, svc *auth.Service, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:  st,
		svc:    svc,
		cfg:    cfg,
		logger: logger.With("component", "api"),
	}
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Unauthenticated surface.
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Metrics.Path, obs.Handler())
	}

	login := http.Handler(http.HandlerFunc(s.handleLogin))
	if s.cfg.RateLimit.LoginPerMinute > 0 {
		login = RateLimit(login, s.cfg.RateLimit, s.logger)
	}
	mux.Handle("POST /v1/login", login)

	// Token-bearing but context-free surface: these operate on the caller's
	// identity, not on a context, so they resolve the token directly.
	mux.HandleFunc("POST /v1/logout", s.handleLogout)
	mux.HandleFunc("GET /v1/me", s.handleMe)
	mux.HandleFunc("GET /v1/contexts", s.handleListContexts)
	mux.HandleFunc("POST /v1/contexts", s.handleCreateContext)
	mux.HandleFunc("DELETE /v1/contexts/{id}", s.handleDeleteContext)

	// Context-guarded surface: the middleware re-authorizes each request
	// against the context named in the request header.
	guard := auth.Middleware(s.svc, func(d auth.Decision) {
		obs.RecordDecision(d.IsGranted(), string(d.Reason()))
	})
	mux.Handle("POST /v1/messages", guard(http.HandlerFunc(s.handleAppendMessage)))
	mux.Handle("GET /v1/messages", guard(http.HandlerFunc(s.handleListMessages)))

	return obs.Instrument(s.logRequests(mux))
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
