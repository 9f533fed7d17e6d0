package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"locationShare/internal/auth"
	"locationShare/internal/authz"
	"locationShare/internal/logging"
)

// requestID attaches an X-Request-ID to the request, its response and the
// logging context. An incoming header is kept.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
			r.Header.Set(chimiddleware.RequestIDHeader, id)
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := logging.ContextWithRequestID(r.Context(), id)
		chimiddleware.RequestID(next).ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs each request and records its metrics.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := routePattern(r)
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("http request")
	})
}

// routePattern keeps metric cardinality bounded by labelling with the
// matched chi pattern instead of the raw path.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// authorize rejects requests whose session role may not call the route.
// Requests without a session are rejected the same way.
func authorize(e *authz.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := auth.RequirePrincipal(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ok, err := e.Allow(p.Role, r.URL.Path, r.Method)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("authorization check failed")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !ok {
				logging.Ctx(r.Context()).Warn().Str("user", p.Username).Str("role", string(p.Role)).
					Str("path", r.URL.Path).Msg("access denied")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loginLimiter throttles login attempts per client IP. A limit of zero
// disables it.
func loginLimiter(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

// corsHandler allows the configured origins to call the API with cookies.
// With no origins configured it is a no-op.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", chimiddleware.RequestIDHeader},
		ExposedHeaders:   []string{chimiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
