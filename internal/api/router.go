package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/breachwatch/breachwatch/internal/auth"
	"github.com/breachwatch/breachwatch/internal/metrics"
	"github.com/breachwatch/breachwatch/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Pinger is the database liveness probe used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Users      UserGetter
	Issuer     Inviter
	Links      InviteLinker
	Summarizer StatusSummarizer
	Recorder   ExposureRecorder

	Metrics *metrics.Metrics
	Limiter *ratelimit.Limiter
	DB      Pinger

	AdminToken     string
	APIKey         string
	AllowedOrigins []string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(slogRequestLogger)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// Handlers.
	var onInvite func()
	if deps.Metrics != nil {
		onInvite = deps.Metrics.IncInviteIssued
	}
	invites := newInviteHandler(deps.Issuer, onInvite)
	users := newUserHandler(deps.Users, deps.Links, deps.Summarizer)
	exposed := newExposedHandler(deps.Recorder)

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		if err := deps.DB.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "degraded",
				"database": "error",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"database": "connected",
		})
	})

	// Well-known manifest.
	r.Get("/.well-known/breachwatch.json", WellKnownHandler)

	// Live metrics summary.
	if deps.Metrics != nil {
		r.Get("/metrics", deps.Metrics.Handler())
	}

	// Admin routes (operator secret).
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(auth.HeaderGuard(auth.AdminTokenHeader, deps.AdminToken, guardHook(deps.Metrics, "admin")))

		ar.Post("/invite", invites.AdminInvite)
		ar.Get("/user/{userID}", users.GetInviteLink)
	})

	// System-to-system routes (account service secret).
	r.Route("/api", func(ar chi.Router) {
		ar.Use(auth.HeaderGuard(auth.APIKeyHeader, deps.APIKey, guardHook(deps.Metrics, "api")))

		ar.Post("/invite", invites.SystemInvite)
		ar.Get("/user/{userID}/details", users.GetDetails)
	})

	// Exposure reporting (unauthenticated, rate limited per client IP).
	r.Route("/exposed", func(er chi.Router) {
		if deps.Limiter != nil {
			var onReject []func()
			if deps.Metrics != nil {
				onReject = append(onReject, deps.Metrics.IncRateLimitRejection)
			}
			er.Use(ratelimit.Middleware(deps.Limiter, onReject...))
		}

		er.Post("/", exposed.Report)
	})

	return r
}

// guardHook returns the metrics callback for a named guard, or nil when
// metrics are not wired.
func guardHook(m *metrics.Metrics, guard string) func(ok bool) {
	if m == nil {
		return nil
	}
	return m.GuardResultHook(guard)
}

// metricsMiddleware records request counts and latencies against the chi
// route pattern, so path parameters do not explode label cardinality.
func metricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(ww.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}
