package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "crmcore/internal/audit/handler"
	notificationhandler "crmcore/internal/notification/handler"
	"crmcore/internal/platform/metrics"
	"crmcore/internal/platform/middleware"
)

// NewRouter wires the public surface: notification read-state for any
// authenticated user, the audit trail for admins, plus health and metrics.
// The CRM's own CRUD endpoints live in a different service.
func NewRouter(
	notifications *notificationhandler.Handler,
	auditTrail *audithandler.Handler,
	validator middleware.JWTValidator,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		notifications.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.RequireRole("admin"))
		auditTrail.Register(r)
	})

	// Service-to-service routes: the CRM's domain services report mutations
	// and dispatch notifications here after their own writes commit.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.RequireRole("service"))
		notifications.RegisterInternal(r)
		auditTrail.RegisterInternal(r)
	})

	return r
}
