package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/middleware"
)

// RouterDeps holds the handlers and per-route quotas mounted by NewRouter.
// Nil quotas leave the route unlimited.
type RouterDeps struct {
	Logger      *slog.Logger
	CORS        config.CORSConfig
	Health      *HealthHandler
	Invoices    *InvoiceHandler
	Nearby      *NearbyHandler
	Catalog     *CatalogHandler
	UploadQuota middleware.Middleware
	NearbyQuota middleware.Middleware
}

// NewRouter builds the public HTTP API.
func NewRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.CORS(d.CORS))

	r.Get("/live", d.Health.Live)
	r.Get("/ready", d.Health.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", d.Health.Health)

		r.Group(func(r chi.Router) {
			r.Use(orPass(d.UploadQuota))
			r.Post("/upload-xml", d.Invoices.Upload)
			r.Post("/invoices", d.Invoices.Upload)
		})

		r.Group(func(r chi.Router) {
			r.Use(orPass(d.NearbyQuota))
			r.Get("/stores/nearby", d.Nearby.Nearby)
			r.Get("/test/nearby", d.Nearby.Nearby)
		})

		r.Get("/products/search", d.Catalog.Search)
		r.Get("/products/{identifier}", d.Catalog.Detail)
		r.Get("/stats", d.Catalog.Stats)
	})

	return r
}

func orPass(mw middleware.Middleware) middleware.Middleware {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
