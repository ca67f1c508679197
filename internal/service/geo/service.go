// Package geo geocodes establishments and answers proximity queries over
// the located stores.
package geo

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

type placeLookup interface {
	SearchText(ctx context.Context, query string) (*domain.Place, error)
}

type storeRepo interface {
	GetByName(ctx context.Context, name string) (*domain.StoreLocation, error)
	Upsert(ctx context.Context, loc domain.StoreLocation) (*domain.StoreLocation, error)
	ListLocated(ctx context.Context) ([]domain.StoreLocation, error)
}

type issuerLister interface {
	ListIssuerNames(ctx context.Context) ([]string, error)
}

// Config controls lookups, batch pacing and the proximity cache.
type Config struct {
	Country    string
	BatchDelay time.Duration
	CacheTTL   time.Duration
	CacheSize  int
	MaxResults int
}

// Service resolves store names to coordinates and finds nearby stores.
type Service struct {
	lookup   placeLookup
	stores   storeRepo
	receipts issuerLister
	cfg      Config
	cache    *expirable.LRU[string, []domain.NearbyStore]
	log      *slog.Logger
}

// NewService creates a geo service. lookup may be nil when no Places API key
// is configured; enrichment is then a logged no-op.
func NewService(log *slog.Logger, lookup placeLookup, stores storeRepo, receipts issuerLister, cfg Config) *Service {
	if cfg.Country == "" {
		cfg.Country = "Costa Rica"
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	return &Service{
		lookup:   lookup,
		stores:   stores,
		receipts: receipts,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, []domain.NearbyStore](cfg.CacheSize, nil, cfg.CacheTTL),
		log:      log.With("service", "geo"),
	}
}
