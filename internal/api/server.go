// Package api exposes the account and map endpoints over HTTP/JSON and
// serves the embedded web client for every other GET.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locationShare/internal/auth"
	"locationShare/internal/authz"
	"locationShare/internal/config"
	"locationShare/internal/logging"
	"locationShare/internal/mapview"
	"locationShare/internal/service"
	"locationShare/internal/web"
)

// Pinger reports whether the credential store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Accounts *service.Accounts
	Sessions *auth.SessionManager
	Enforcer *authz.Enforcer
	History  mapview.History
	DB       Pinger
}

// Server holds the handlers and their dependencies.
type Server struct {
	Deps
	cfg config.HTTPConfig
}

// NewServer returns a server; History defaults to the demo dataset.
func NewServer(cfg config.HTTPConfig, deps Deps) *Server {
	if deps.Accounts == nil || deps.Sessions == nil || deps.Enforcer == nil {
		panic("api: accounts, sessions and enforcer are required")
	}
	if deps.History == nil {
		deps.History = mapview.DemoHistory()
	}
	return &Server{Deps: deps, cfg: cfg}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(s.cfg.AllowedOrigins()))
	r.Use(s.Sessions.Authenticate)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/admin-exists", s.handleAdminExists)
		r.Post("/init", s.handleInit)
		r.With(loginLimiter(s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)).Post("/login", s.handleLogin)
		r.Get("/me", s.handleMe)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(authorize(s.Enforcer))
			r.Post("/users", s.handleCreateUser)
			r.Get("/users", s.handleListUsers)
			r.Get("/locations", s.handleLocations)
			r.Get("/markers", s.handleMarkers)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		})
	})

	r.Get("/*", web.Handler().ServeHTTP)
	return r
}

// StartHTTP starts serving h on addr and returns a shutdown function.
func StartHTTP(addr string, h http.Handler) (func(context.Context) error, error) {
	if addr == "" {
		addr = ":3000"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("http server stopped")
		}
	}()
	logging.Info().Str("address", lis.Addr().String()).Msg("http server listening")

	return func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	}, nil
}
