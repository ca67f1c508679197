// Package catalog implements aggregate read queries over the catalog tables.
package catalog

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Repo provides catalog-wide read queries.
type Repo struct {
	db postgres.DB
}

// New creates a new catalog repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

const statsSQL = `
SELECT
    (SELECT count(*) FROM receipts)                      AS total_receipts,
    (SELECT count(*) FROM products)                      AS total_products,
    (SELECT count(DISTINCT issuer_name) FROM receipts)   AS total_stores,
    (SELECT count(*) FROM price_observations)            AS total_prices`

// Stats returns row counts for the dashboard.
func (r *Repo) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	var s domain.CatalogStats
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &s, statsSQL); err != nil {
		return nil, postgres.MapError(err, "catalog", "stats")
	}
	return &s, nil
}
