// Package ingest turns uploaded invoice documents into receipts, products and
// price observations inside a single transaction.
package ingest

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
)

type documentParser interface {
	Parse(raw []byte) (*domain.InvoiceDocument, error)
}

type receiptRepo interface {
	ExistsByUniqueKey(ctx context.Context, key string) (bool, error)
	Create(ctx context.Context, r *domain.Receipt) (*domain.Receipt, error)
}

type productRepo interface {
	UpsertByBarcode(ctx context.Context, barcode, name string) (int64, error)
	FindBarcodelessByName(ctx context.Context, name string) (*domain.Product, error)
	ListBarcodeless(ctx context.Context) ([]domain.CatalogEntry, error)
	Create(ctx context.Context, barcode *string, name string) (*domain.Product, error)
}

type priceRepo interface {
	BulkInsert(ctx context.Context, receiptID int64, prices []domain.NewPrice) (int64, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, candidate string, catalog []domain.CatalogEntry) domain.MatchResult
}

type nameBeautifier interface {
	Beautify(ctx context.Context, raw string, hint matching.NameHint) string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type geocodeQueue interface {
	Enqueue(establishment string) bool
}

// Result summarizes one successful ingestion.
type Result struct {
	ReceiptID     int64
	PriceCount    int64
	Establishment string
	NewProducts   int
	Merged        int
	Skipped       int
	// Collapsed counts items that resolved to a product already priced
	// earlier in the same document.
	Collapsed int
}

// Service ingests invoice documents.
type Service struct {
	parser     documentParser
	receipts   receiptRepo
	products   productRepo
	prices     priceRepo
	resolver   identityResolver
	beautifier nameBeautifier
	tx         txManager
	geo        geocodeQueue
	log        *slog.Logger
}

// NewService creates a new ingest service. beautifier and geo may be nil:
// names are then stored as printed and no geocoding is scheduled.
func NewService(
	log *slog.Logger,
	parser documentParser,
	receipts receiptRepo,
	products productRepo,
	prices priceRepo,
	resolver identityResolver,
	beautifier nameBeautifier,
	tx txManager,
	geo geocodeQueue,
) *Service {
	return &Service{
		parser:     parser,
		receipts:   receipts,
		products:   products,
		prices:     prices,
		resolver:   resolver,
		beautifier: beautifier,
		tx:         tx,
		geo:        geo,
		log:        log.With("service", "ingest"),
	}
}
