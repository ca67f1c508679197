package rest

import (
	"context"
	"io"
	"log/slog"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
	"github.com/heartmarshall/pricewatch-backend/internal/service/ingest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type invoiceIngesterMock struct {
	IngestFunc func(ctx context.Context, raw []byte) (*ingest.Result, error)
}

func (m *invoiceIngesterMock) Ingest(ctx context.Context, raw []byte) (*ingest.Result, error) {
	return m.IngestFunc(ctx, raw)
}

type nearbyFinderMock struct {
	FindNearbyFunc func(ctx context.Context, lat, lng, radiusKm float64) ([]domain.NearbyStore, bool, error)
}

func (m *nearbyFinderMock) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.NearbyStore, bool, error) {
	return m.FindNearbyFunc(ctx, lat, lng, radiusKm)
}

type catalogReaderMock struct {
	SearchFunc func(ctx context.Context, in catalog.SearchInput) ([]domain.ProductSummary, error)
	DetailFunc func(ctx context.Context, identifier string) (*catalog.ProductDetail, error)
	StatsFunc  func(ctx context.Context) (*domain.CatalogStats, error)
}

func (m *catalogReaderMock) Search(ctx context.Context, in catalog.SearchInput) ([]domain.ProductSummary, error) {
	return m.SearchFunc(ctx, in)
}

func (m *catalogReaderMock) Detail(ctx context.Context, identifier string) (*catalog.ProductDetail, error) {
	return m.DetailFunc(ctx, identifier)
}

func (m *catalogReaderMock) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return m.StatsFunc(ctx)
}
