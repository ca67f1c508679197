package ingest

import (
	"context"
	"sync"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
)

type documentParserMock struct {
	ParseFunc func(raw []byte) (*domain.InvoiceDocument, error)
}

func (m *documentParserMock) Parse(raw []byte) (*domain.InvoiceDocument, error) {
	return m.ParseFunc(raw)
}

type receiptRepoMock struct {
	ExistsByUniqueKeyFunc func(ctx context.Context, key string) (bool, error)
	CreateFunc            func(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error)
}

func (m *receiptRepoMock) ExistsByUniqueKey(ctx context.Context, key string) (bool, error) {
	return m.ExistsByUniqueKeyFunc(ctx, key)
}

func (m *receiptRepoMock) Create(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error) {
	return m.CreateFunc(ctx, r)
}

type productRepoMock struct {
	UpsertByBarcodeFunc       func(ctx context.Context, barcode, name string) (int64, error)
	FindBarcodelessByNameFunc func(ctx context.Context, name string) (*domain.Product, error)
	ListBarcodelessFunc       func(ctx context.Context) ([]domain.CatalogEntry, error)
	CreateFunc                func(ctx context.Context, barcode *string, name string) (*domain.Product, error)
}

func (m *productRepoMock) UpsertByBarcode(ctx context.Context, barcode, name string) (int64, error) {
	return m.UpsertByBarcodeFunc(ctx, barcode, name)
}

func (m *productRepoMock) FindBarcodelessByName(ctx context.Context, name string) (*domain.Product, error) {
	return m.FindBarcodelessByNameFunc(ctx, name)
}

func (m *productRepoMock) ListBarcodeless(ctx context.Context) ([]domain.CatalogEntry, error) {
	return m.ListBarcodelessFunc(ctx)
}

func (m *productRepoMock) Create(ctx context.Context, barcode *string, name string) (*domain.Product, error) {
	return m.CreateFunc(ctx, barcode, name)
}

type priceRepoMock struct {
	BulkInsertFunc func(ctx context.Context, receiptID int64, prices []domain.NewPrice) (int64, error)
}

func (m *priceRepoMock) BulkInsert(ctx context.Context, receiptID int64, prices []domain.NewPrice) (int64, error) {
	return m.BulkInsertFunc(ctx, receiptID, prices)
}

type identityResolverMock struct {
	ResolveFunc func(ctx context.Context, candidate string, catalog []domain.CatalogEntry) domain.MatchResult
}

func (m *identityResolverMock) Resolve(ctx context.Context, candidate string, catalog []domain.CatalogEntry) domain.MatchResult {
	return m.ResolveFunc(ctx, candidate, catalog)
}

type nameBeautifierMock struct {
	BeautifyFunc func(ctx context.Context, raw string, hint matching.NameHint) string
}

func (m *nameBeautifierMock) Beautify(ctx context.Context, raw string, hint matching.NameHint) string {
	return m.BeautifyFunc(ctx, raw, hint)
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTxFunc(ctx, fn)
}

type geocodeQueueMock struct {
	mu    sync.Mutex
	names []string
	full  bool
}

func (m *geocodeQueueMock) Enqueue(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.full {
		return false
	}
	m.names = append(m.names, name)
	return true
}

func (m *geocodeQueueMock) enqueued() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}
