// Package catalog serves product search and runs catalog maintenance jobs.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type productRepo interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Product, error)
	Search(ctx context.Context, q string, limit uint64) ([]domain.Product, error)
	ListBarcodeless(ctx context.Context) ([]domain.CatalogEntry, error)
	ListAll(ctx context.Context) ([]domain.CatalogEntry, error)
	UpdateName(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type priceRepo interface {
	History(ctx context.Context, productID int64, limit int) ([]domain.PricePoint, error)
	LatestByProducts(ctx context.Context, productIDs []int64) ([]domain.LatestPrice, error)
	ReassignProduct(ctx context.Context, fromID, toID int64) (int64, error)
}

type statsRepo interface {
	Stats(ctx context.Context) (*domain.CatalogStats, error)
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

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

const (
	searchLimit  = 20
	historyLimit = 500
)

// Service implements catalog reads and maintenance.
type Service struct {
	products   productRepo
	prices     priceRepo
	stats      statsRepo
	resolver   identityResolver
	beautifier nameBeautifier
	tx         txManager
	now        func() time.Time
	log        *slog.Logger
}

// NewService creates a catalog service. resolver and beautifier are only
// needed by the maintenance jobs and may be nil for read-only use.
func NewService(
	log *slog.Logger,
	products productRepo,
	prices priceRepo,
	stats statsRepo,
	resolver identityResolver,
	beautifier nameBeautifier,
	tx txManager,
) *Service {
	return &Service{
		products:   products,
		prices:     prices,
		stats:      stats,
		resolver:   resolver,
		beautifier: beautifier,
		tx:         tx,
		now:        time.Now,
		log:        log.With("service", "catalog"),
	}
}
