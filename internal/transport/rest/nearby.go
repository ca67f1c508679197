package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

type nearbyFinder interface {
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.NearbyStore, bool, error)
}

// NearbyHandler answers proximity queries over geocoded stores.
type NearbyHandler struct {
	svc           nearbyFinder
	defaultRadius float64
	log           *slog.Logger
}

// NewNearbyHandler creates a NearbyHandler. defaultRadiusKm applies when the
// request has no radius parameter.
func NewNearbyHandler(svc nearbyFinder, defaultRadiusKm float64, logger *slog.Logger) *NearbyHandler {
	return &NearbyHandler{svc: svc, defaultRadius: defaultRadiusKm, log: logger.With("handler", "nearby")}
}

type nearbyQuery struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radio_km"`
	Cached bool    `json:"cached"`
}

type nearbyResponse struct {
	Status  string               `json:"status"`
	Query   nearbyQuery          `json:"busqueda"`
	Results []domain.NearbyStore `json:"resultados"`
}

// Nearby handles GET /api/stores/nearby?lat=&lng=&radius=.
func (h *NearbyHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var errs []domain.FieldError
	lat, ok := parseFloat(q.Get("lat"))
	if !ok {
		errs = append(errs, domain.FieldError{Field: "lat", Message: "must be a number"})
	}
	lng, ok := parseFloat(q.Get("lng"))
	if !ok {
		errs = append(errs, domain.FieldError{Field: "lng", Message: "must be a number"})
	}
	radius := h.defaultRadius
	if raw := q.Get("radius"); raw != "" {
		if radius, ok = parseFloat(raw); !ok {
			errs = append(errs, domain.FieldError{Field: "radius", Message: "must be a number"})
		}
	}
	if len(errs) > 0 {
		writeError(w, http.StatusBadRequest, validationMessage(domain.NewValidationErrors(errs)))
		return
	}

	stores, cached, err := h.svc.FindNearby(r.Context(), lat, lng, radius)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nearbyResponse{
		Status:  "success",
		Query:   nearbyQuery{Lat: lat, Lng: lng, Radius: radius, Cached: cached},
		Results: stores,
	})
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
