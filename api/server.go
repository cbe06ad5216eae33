/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through the handler's logrus logger
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counter and latency histogram
  5. CORS:       Cross-origin requests for the web frontend

ROUTE GROUPS:
  /healthz                   Liveness + database ping
  /metrics                   Prometheus exposition
  /api/properties/*          Properties (with their units)
  /api/units/*               Units
  /api/tenants/*             Tenants, monthly ledger, tenant summary
  /api/payments/*            Payments
  /api/payment-summaries     Per-tenant summaries with search and status filter
  /api/dashboard             Payment totals by status and due month
  /api/import                Bulk import of raw exported rows
  /api/reminders/*           Reminder settings and manual runs
  /api/demo/load             Demo data (resets the database)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins of nil or ["*"] allows any origin without credentials.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: h.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", h.ListProperties)
			r.Post("/", h.CreateProperty)
			r.Get("/{id}", h.GetProperty)
			r.Delete("/{id}", h.DeleteProperty)
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/", h.ListUnits)
			r.Post("/", h.CreateUnit)
			r.Delete("/{id}", h.DeleteUnit)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Get("/{id}", h.GetTenant)
			r.Put("/{id}", h.UpdateTenant)
			r.Delete("/{id}", h.DeleteTenant)
			r.Get("/{id}/ledger", h.GetTenantLedger)
			r.Get("/{id}/summary", h.GetTenantSummary)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Get("/payment-summaries", h.ListPaymentSummaries)
		r.Get("/dashboard", h.GetDashboard)
		r.Post("/import", h.Import)

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", h.ListReminders)
			r.Post("/", h.SaveReminder)
			r.Post("/run", h.RunRemindersNow)
		})

		r.Post("/demo/load", h.LoadDemo)
	})

	return r
}
