package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/llm"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/places"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	catalogrepo "github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/catalog"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/price"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/product"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/receipt"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/store"
	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/invoice"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
	"github.com/heartmarshall/pricewatch-backend/internal/service/catalog"
	"github.com/heartmarshall/pricewatch-backend/internal/service/geo"
	"github.com/heartmarshall/pricewatch-backend/internal/service/ingest"
)

// Components are the wired services shared by the HTTP server and the
// maintenance CLI.
type Components struct {
	Pool    *pgxpool.Pool
	Ingest  *ingest.Service
	Catalog *catalog.Service
	Geo     *geo.Service
	Worker  *geo.Worker

	// GeocodingEnabled is false when no Places API key is configured.
	GeocodingEnabled bool
}

// placeLookup and nameBeautifier mirror service dependencies so an
// unconfigured backend stays a nil interface rather than a typed nil.
type (
	placeLookup interface {
		SearchText(ctx context.Context, query string) (*domain.Place, error)
	}
	nameBeautifier interface {
		Beautify(ctx context.Context, raw string, hint matching.NameHint) string
	}
)

// NewComponents connects to the database and builds every service. Call
// Close when done.
func NewComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	c, err := buildComponents(ctx, cfg, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

func buildComponents(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Components, error) {
	gen, err := newGenerator(cfg.Adjudicator, logger)
	if err != nil {
		return nil, err
	}

	var lookup placeLookup
	if cfg.Geocoding.Enabled() {
		client, err := places.NewClient(ctx, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("create places client: %w", err)
		}
		lookup = client
	} else {
		logger.WarnContext(ctx, "geocoding disabled: no places api key configured")
	}

	// Repositories
	txm := postgres.NewTxManager(pool)
	receipts := receipt.New(pool)
	products := product.New(pool)
	prices := price.New(pool)
	stores := store.New(pool)
	stats := catalogrepo.New(pool)

	// Identity resolution
	var (
		adjudicator matching.Adjudicator
		beautifier  nameBeautifier
	)
	if gen != nil {
		adjudicator = matching.NewPromptAdjudicator(gen)
		beautifier = matching.NewBeautifier(logger, gen, cfg.Adjudicator.Timeout)
	}
	resolver := matching.NewResolver(logger, adjudicator, matching.Config{
		FuzzyMergeThreshold: cfg.Matching.FuzzyMergeThreshold,
		GrayAreaThreshold:   cfg.Matching.GrayAreaThreshold,
		AdjudicationTimeout: cfg.Matching.AdjudicationTimeout,
	})

	// Services
	geoSvc := geo.NewService(logger, lookup, stores, receipts, geo.Config{
		Country:    cfg.Geocoding.Country,
		BatchDelay: cfg.Geocoding.BatchDelay,
		CacheTTL:   cfg.Nearby.CacheTTL,
		CacheSize:  cfg.Nearby.CacheSize,
		MaxResults: cfg.Nearby.MaxResults,
	})
	worker := geo.NewWorker(logger, geoSvc, cfg.Geocoding.QueueSize, cfg.Geocoding.TaskTimeout)

	ingestNames := beautifier
	if !cfg.Ingest.BeautifyNames {
		ingestNames = nil
	}
	ingestSvc := ingest.NewService(logger, invoice.NewParser(logger), receipts, products, prices,
		resolver, ingestNames, txm, worker)
	catalogSvc := catalog.NewService(logger, products, prices, stats, resolver, beautifier, txm)

	return &Components{
		Pool:             pool,
		Ingest:           ingestSvc,
		Catalog:          catalogSvc,
		Geo:              geoSvc,
		Worker:           worker,
		GeocodingEnabled: lookup != nil,
	}, nil
}

// Close releases the database pool.
func (c *Components) Close() {
	c.Pool.Close()
}

// newGenerator returns the configured text-generation backend, or nil when
// adjudication is disabled.
func newGenerator(cfg config.AdjudicatorConfig, logger *slog.Logger) (matching.Generator, error) {
	switch cfg.Provider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderOllama:
		return llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.Timeout, logger), nil
	case config.ProviderAnthropic:
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown adjudicator provider %q", cfg.Provider)
	}
}
