// Package price implements the PriceObservation repository using PostgreSQL.
package price

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Repo provides price observation persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new price repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// BulkInsert records all prices for one receipt with a single multi-row
// INSERT and returns the number of rows written.
func (r *Repo) BulkInsert(ctx context.Context, receiptID int64, prices []domain.NewPrice) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	insert := postgres.Builder().
		Insert("price_observations").
		Columns("product_id", "receipt_id", "price")
	for _, p := range prices {
		insert = insert.Values(p.ProductID, receiptID, p.Price)
	}

	sql, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build price insert: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "prices for receipt", receiptID)
	}
	return tag.RowsAffected(), nil
}

// ReassignProduct moves every observation of fromID to toID.
func (r *Repo) ReassignProduct(ctx context.Context, fromID, toID int64) (int64, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx,
		`UPDATE price_observations SET product_id = $1 WHERE product_id = $2`, toID, fromID)
	if err != nil {
		return 0, postgres.MapError(err, "prices of product", fromID)
	}
	return tag.RowsAffected(), nil
}

const historySQL = `
SELECT po.price, r.issuer_name AS store, r.issued_at
FROM price_observations po
JOIN receipts r ON r.id = po.receipt_id
WHERE po.product_id = $1
ORDER BY r.issued_at DESC, po.id DESC
LIMIT $2`

// History returns the newest limit observations of a product.
func (r *Repo) History(ctx context.Context, productID int64, limit int) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &points, historySQL, productID, limit); err != nil {
		return nil, postgres.MapError(err, "price history", productID)
	}
	if points == nil {
		points = []domain.PricePoint{}
	}
	return points, nil
}

// latestSQL keeps, per product and store, the observation from the most
// recent receipt.
const latestSQL = `
SELECT DISTINCT ON (po.product_id, r.issuer_name)
    po.product_id, r.issuer_name AS store, po.price, r.issued_at,
    sl.latitude, sl.longitude
FROM price_observations po
JOIN receipts r ON r.id = po.receipt_id
LEFT JOIN store_locations sl ON sl.name = r.issuer_name
WHERE po.product_id = ANY($1)
ORDER BY po.product_id, r.issuer_name, r.issued_at DESC, po.id DESC`

// LatestByProducts returns the latest price of each product at each store.
func (r *Repo) LatestByProducts(ctx context.Context, productIDs []int64) ([]domain.LatestPrice, error) {
	if len(productIDs) == 0 {
		return []domain.LatestPrice{}, nil
	}

	var rows []domain.LatestPrice
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, latestSQL, productIDs); err != nil {
		return nil, postgres.MapError(err, "latest prices", len(productIDs))
	}
	if rows == nil {
		rows = []domain.LatestPrice{}
	}
	return rows, nil
}
