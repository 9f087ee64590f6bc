package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/handler"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Health     handler.HealthHandler
	Auth       handler.AuthHandler
	Docs       handler.DocsHandler
	Discounts  handler.DiscountHandler
	Reference  handler.ReferenceHandler
	Directory  handler.DirectoryHandler
	Orders     handler.OrderHandler
	Invoices   handler.InvoiceHandler
	Activity   handler.ActivityLogHandler
	InvoiceDir string
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(logger *slog.Logger, authn Authenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	h.Health.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	h.Docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(authn))
		h.Auth.RegisterProtectedRoutes(pr)
		// seller-level (seller/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleSeller))
			h.Reference.RegisterRoutes(sr)
			h.Orders.RegisterRoutes(sr)
		})
		// admin only
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			h.Discounts.RegisterRoutes(ar)
			h.Directory.RegisterRoutes(ar)
			h.Invoices.RegisterRoutes(ar)
			h.Activity.RegisterRoutes(ar)
			if h.InvoiceDir != "" {
				ar.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(h.InvoiceDir))))
			}
		})
	})

	return r
}
