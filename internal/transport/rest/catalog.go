package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
)

type catalogReader interface {
	Search(ctx context.Context, in catalog.SearchInput) ([]domain.ProductSummary, error)
	Detail(ctx context.Context, identifier string) (*catalog.ProductDetail, error)
	Stats(ctx context.Context) (*domain.CatalogStats, error)
}

// CatalogHandler serves product search, product detail and catalog stats.
type CatalogHandler struct {
	svc catalogReader
	log *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(svc catalogReader, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: logger.With("handler", "catalog")}
}

// Search handles GET /api/products/search?q=&lat=&lng=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := catalog.SearchInput{Query: q.Get("q")}

	var errs []domain.FieldError
	if raw := q.Get("lat"); raw != "" {
		v, ok := parseFloat(raw)
		if !ok {
			errs = append(errs, domain.FieldError{Field: "lat", Message: "must be a number"})
		}
		in.Lat = &v
	}
	if raw := q.Get("lng"); raw != "" {
		v, ok := parseFloat(raw)
		if !ok {
			errs = append(errs, domain.FieldError{Field: "lng", Message: "must be a number"})
		}
		in.Lng = &v
	}
	if len(errs) > 0 {
		writeError(w, http.StatusBadRequest, validationMessage(domain.NewValidationErrors(errs)))
		return
	}

	products, err := h.svc.Search(r.Context(), in)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Detail handles GET /api/products/{identifier}.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Detail(r.Context(), chi.URLParam(r, "identifier"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Stats handles GET /api/stats.
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
