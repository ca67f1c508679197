package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSearch_PassesQueryAndLocation(t *testing.T) {
	t.Parallel()

	var got catalog.SearchInput
	price := decimal.RequireFromString("1250.50")
	svc := &catalogReaderMock{SearchFunc: func(_ context.Context, in catalog.SearchInput) ([]domain.ProductSummary, error) {
		got = in
		return []domain.ProductSummary{{
			ID: 4, Name: "ARROZ TIO PELON 99%", MinPrice: &price, MaxPrice: &price, StoreCount: 1,
			Stores: []domain.StorePrice{{Store: "AUTOMERCADO", Price: price, DaysOld: 2}},
		}}, nil
	}}
	h := NewCatalogHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/products/search?q=arroz&lat=9.93&lng=-84.08", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "arroz", got.Query)
	require.NotNil(t, got.Lat)
	require.NotNil(t, got.Lng)
	assert.Equal(t, 9.93, *got.Lat)
	assert.Equal(t, -84.08, *got.Lng)
	assert.JSONEq(t, `[{
		"id": 4, "barcode": null, "name": "ARROZ TIO PELON 99%",
		"min_price": "1250.5", "max_price": "1250.5", "store_count": 1,
		"stores": [{"store": "AUTOMERCADO", "price": "1250.5", "days_old": 2}]
	}]`, rec.Body.String())
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		err   error
		want  int
	}{
		{"bad lat", "?q=arroz&lat=north&lng=-84", nil, http.StatusBadRequest},
		{"empty query", "?q=", domain.NewValidationError("q", "is required"), http.StatusBadRequest},
		{"storage", "?q=arroz", errors.New("timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &catalogReaderMock{SearchFunc: func(context.Context, catalog.SearchInput) ([]domain.ProductSummary, error) {
				return nil, tt.err
			}}
			h := NewCatalogHandler(svc, discardLogger())

			rec := httptest.NewRecorder()
			h.Search(rec, httptest.NewRequest(http.MethodGet, "/api/products/search"+tt.query, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDetail(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := &catalogReaderMock{DetailFunc: func(_ context.Context, identifier string) (*catalog.ProductDetail, error) {
		if identifier != "7441029500012" {
			return nil, domain.ErrNotFound
		}
		return &catalog.ProductDetail{
			Product: &domain.Product{ID: 9, CanonicalName: "LECHE DOS PINOS 1L"},
			Prices:  []domain.PricePoint{{Price: decimal.NewFromInt(1100), Store: "PALI", IssuedAt: issued}},
		}, nil
	}}
	h := NewCatalogHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/7441029500012", nil), "identifier", "7441029500012")
	h.Detail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body, "product")
	prices, ok := body["prices"].([]any)
	require.True(t, ok)
	assert.Len(t, prices, 1)

	rec = httptest.NewRecorder()
	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/404", nil), "identifier", "404")
	h.Detail(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Producto no encontrado", decodeBody(t, rec)["error"])
}

func TestStats(t *testing.T) {
	t.Parallel()

	svc := &catalogReaderMock{StatsFunc: func(context.Context) (*domain.CatalogStats, error) {
		return &domain.CatalogStats{TotalReceipts: 3, TotalProducts: 40, TotalStores: 2, TotalPrices: 55}, nil
	}}
	h := NewCatalogHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_receipts":3,"total_products":40,"total_stores":2,"total_prices":55}`, rec.Body.String())
}
