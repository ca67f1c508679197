//go:build e2e

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const e2eTicket = `<?xml version="1.0" encoding="utf-8"?>
<TiqueteElectronico>
  <Clave>%s</Clave>
  <FechaEmision>2024-02-10T18:05:00-06:00</FechaEmision>
  <Emisor><NombreComercial>%s</NombreComercial></Emisor>
  <DetalleServicio>
    <LineaDetalle>
      <Codigo><Codigo>%s</Codigo></Codigo>
      <Cantidad>1</Cantidad>
      <Detalle>CAFE BRITT MOLIDO 340G</Detalle>
      <PrecioUnitario>4250</PrecioUnitario>
    </LineaDetalle>
  </DetalleServicio>
  <ResumenFactura><TotalComprobante>4250</TotalComprobante></ResumenFactura>
</TiqueteElectronico>`

type testServer struct {
	URL    string
	Client *http.Client
}

func e2eConfig() *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,OPTIONS",
			AllowedHeaders: "Content-Type",
		},
		Ingest: config.IngestConfig{MaxUploadBytes: 1 << 20, DailyQuota: 100},
		Matching: config.MatchingConfig{
			FuzzyMergeThreshold: 92,
			GrayAreaThreshold:   65,
			AdjudicationTimeout: time.Second,
		},
		Adjudicator: config.AdjudicatorConfig{Provider: config.ProviderNone},
		Geocoding:   config.GeocodingConfig{Country: "Costa Rica", QueueSize: 10, TaskTimeout: time.Second},
		Nearby: config.NearbyConfig{
			CacheTTL:        time.Minute,
			CacheSize:       16,
			MaxResults:      50,
			DefaultRadiusKm: 5,
			HourlyQuota:     100,
		},
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := e2eConfig()

	c, err := buildComponents(context.Background(), cfg, pool, logger)
	require.NoError(t, err)

	uploadQuota := middleware.NewQuota(cfg.Ingest.DailyQuota, 24*time.Hour, time.Minute)
	nearbyQuota := middleware.NewQuota(cfg.Nearby.HourlyQuota, time.Hour, time.Minute)
	t.Cleanup(uploadQuota.Stop)
	t.Cleanup(nearbyQuota.Stop)

	srv := httptest.NewServer(newRouter(cfg, c, logger, uploadQuota, nearbyQuota))
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, Client: srv.Client()}
}

func (ts *testServer) getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	resp, err := ts.Client.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (ts *testServer) upload(t *testing.T, xml string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("factura", "factura.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := ts.Client.Post(ts.URL+"/api/upload-xml", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func uniqueKey() string {
	return "5060" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func uniqueBarcode() string {
	return fmt.Sprintf("744%010d", time.Now().UnixNano()%10_000_000_000)
}

// ---------------------------------------------------------------------------
// Health endpoints
// ---------------------------------------------------------------------------

func TestE2E_HealthEndpoints(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/live", "/ready", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			status, body := ts.getJSON(t, path)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "ok", body["status"])
		})
	}

	_, body := ts.getJSON(t, "/ready")
	components, ok := body["components"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disabled", components["geocoding"].(map[string]any)["status"])
	assert.Equal(t, "disabled", components["adjudicator"].(map[string]any)["status"])
}

// ---------------------------------------------------------------------------
// Upload, search, detail
// ---------------------------------------------------------------------------

func TestE2E_UploadThenQuery(t *testing.T) {
	ts := setupTestServer(t)

	store := testhelper.UniqueName("Super E2E")
	barcode := uniqueBarcode()
	xml := fmt.Sprintf(e2eTicket, uniqueKey(), store, barcode)

	status, body := ts.upload(t, xml)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, store, body["establishment"])
	assert.Contains(t, body["message"], "1 productos")

	// Same receipt again is rejected.
	status, body = ts.upload(t, xml)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Este recibo ya ha sido procesado anteriormente.", body["error"])

	t.Run("search by barcode", func(t *testing.T) {
		resp, err := ts.Client.Get(ts.URL + "/api/products/search?q=" + barcode)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var products []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
		require.Len(t, products, 1)
		assert.Equal(t, barcode, products[0]["barcode"])
		assert.Equal(t, "4250", products[0]["min_price"])

		stores, ok := products[0]["stores"].([]any)
		require.True(t, ok)
		require.Len(t, stores, 1)
		assert.Equal(t, store, stores[0].(map[string]any)["store"])
	})

	t.Run("detail by barcode", func(t *testing.T) {
		status, body := ts.getJSON(t, "/api/products/"+barcode)
		require.Equal(t, http.StatusOK, status)

		prices, ok := body["prices"].([]any)
		require.True(t, ok)
		require.Len(t, prices, 1)
		assert.Equal(t, store, prices[0].(map[string]any)["store"])
	})

	t.Run("detail unknown", func(t *testing.T) {
		status, body := ts.getJSON(t, "/api/products/0000000000000")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Producto no encontrado", body["error"])
	})

	t.Run("stats", func(t *testing.T) {
		status, body := ts.getJSON(t, "/api/stats")
		require.Equal(t, http.StatusOK, status)
		assert.GreaterOrEqual(t, body["total_receipts"], float64(1))
		assert.GreaterOrEqual(t, body["total_prices"], float64(1))
	})
}

func TestE2E_UploadInvalidDocument(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.upload(t, "<FacturaElectronica><Clave>")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

// ---------------------------------------------------------------------------
// Nearby
// ---------------------------------------------------------------------------

func TestE2E_Nearby(t *testing.T) {
	ts := setupTestServer(t)
	pool := testhelper.SetupTestDB(t)

	// A point far from anything else the suite seeds.
	lat, lng := 10.6350, -85.4377
	name := testhelper.UniqueName("Liberia Store")
	testhelper.SeedStore(t, pool, name, testhelper.Ptr(lat+0.001), testhelper.Ptr(lng))

	status, body := ts.getJSON(t, fmt.Sprintf("/api/stores/nearby?lat=%f&lng=%f&radius=1", lat, lng))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	search, ok := body["busqueda"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, search["cached"])

	results, ok := body["resultados"].([]any)
	require.True(t, ok)
	var found bool
	for _, r := range results {
		if r.(map[string]any)["nombre"] == name {
			found = true
		}
	}
	assert.True(t, found, "seeded store not in results")

	// Second identical query is served from the cache.
	_, body = ts.getJSON(t, fmt.Sprintf("/api/stores/nearby?lat=%f&lng=%f&radius=1", lat, lng))
	assert.Equal(t, true, body["busqueda"].(map[string]any)["cached"])
}

func TestE2E_NearbyRejectsBadCoordinates(t *testing.T) {
	ts := setupTestServer(t)

	status, body := ts.getJSON(t, "/api/stores/nearby?lat=abc&lng=-84")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}
