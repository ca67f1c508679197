package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
	"github.com/heartmarshall/pricewatch-backend/internal/service/ingest"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/middleware"
)

func testRouter(t *testing.T, nearbyQuota middleware.Middleware) http.Handler {
	t.Helper()
	log := discardLogger()

	cat := &catalogReaderMock{
		SearchFunc: func(context.Context, catalog.SearchInput) ([]domain.ProductSummary, error) {
			return []domain.ProductSummary{}, nil
		},
		DetailFunc: func(_ context.Context, id string) (*catalog.ProductDetail, error) {
			return &catalog.ProductDetail{Product: &domain.Product{CanonicalName: id}, Prices: []domain.PricePoint{}}, nil
		},
		StatsFunc: func(context.Context) (*domain.CatalogStats, error) {
			return &domain.CatalogStats{}, nil
		},
	}
	near := &nearbyFinderMock{FindNearbyFunc: func(context.Context, float64, float64, float64) ([]domain.NearbyStore, bool, error) {
		return []domain.NearbyStore{}, false, nil
	}}
	inv := &invoiceIngesterMock{IngestFunc: func(context.Context, []byte) (*ingest.Result, error) {
		return &ingest.Result{Establishment: "PALI"}, nil
	}}

	return NewRouter(RouterDeps{
		Logger:      log,
		CORS:        config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST"},
		Health:      NewHealthHandler(&dbPingerMock{}, "test", Backends{}),
		Invoices:    NewInvoiceHandler(inv, 5<<20, log),
		Nearby:      NewNearbyHandler(near, 5, log),
		Catalog:     NewCatalogHandler(cat, log),
		NearbyQuota: nearbyQuota,
	})
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	h := testRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/stats", http.StatusOK},
		{http.MethodGet, "/api/products/search?q=leche", http.StatusOK},
		{http.MethodGet, "/api/products/123", http.StatusOK},
		{http.MethodGet, "/api/stores/nearby?lat=9.9&lng=-84.1", http.StatusOK},
		{http.MethodGet, "/api/test/nearby?lat=9.9&lng=-84.1", http.StatusOK},
		{http.MethodPost, "/api/upload-xml", http.StatusBadRequest},
		{http.MethodPost, "/api/invoices", http.StatusBadRequest},
		{http.MethodGet, "/api/upload-xml", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader), "%s %s", tt.method, tt.path)
	}
}

func TestRouter_NearbyQuotaOnlyGuardsNearby(t *testing.T) {
	t.Parallel()

	q := middleware.NewQuota(1, time.Hour, time.Minute)
	t.Cleanup(q.Stop)
	h := testRouter(t, q.Middleware)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("/api/stores/nearby?lat=9.9&lng=-84.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("/api/test/nearby?lat=9.9&lng=-84.1"))
	assert.Equal(t, http.StatusOK, do("/api/stats"))
}

func TestRouter_RealIPKeysQuota(t *testing.T) {
	t.Parallel()

	q := middleware.NewQuota(1, time.Hour, time.Minute)
	t.Cleanup(q.Stop)
	h := testRouter(t, q.Middleware)

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/stores/nearby?lat=9.9&lng=-84.1", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1"))
	assert.Equal(t, http.StatusOK, do("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1"))
}
