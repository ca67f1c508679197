// Package receipt implements the Receipt repository using PostgreSQL.
package receipt

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Repo provides receipt persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new receipt repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ExistsByUniqueKey reports whether a receipt with key was already ingested.
func (r *Repo) ExistsByUniqueKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM receipts WHERE unique_key = $1)`, key).
		Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "receipt", key)
	}
	return exists, nil
}

// Create inserts a receipt. A unique-key collision, including one lost to a
// concurrent ingestion, returns domain.ErrDuplicateReceipt.
func (r *Repo) Create(ctx context.Context, rc *domain.Receipt) (*domain.Receipt, error) {
	sql, args, err := postgres.Builder().
		Insert("receipts").
		Columns("unique_key", "issuer_name", "issued_at", "total").
		Values(rc.UniqueKey, rc.IssuerName, rc.IssuedAt, rc.Total).
		Suffix("RETURNING id, unique_key, issuer_name, issued_at, total, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build receipt insert: %w", err)
	}

	var created domain.Receipt
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &created, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, fmt.Errorf("receipt %s: %w", rc.UniqueKey, domain.ErrDuplicateReceipt)
		}
		return nil, postgres.MapError(err, "receipt", rc.UniqueKey)
	}
	return &created, nil
}

// ListIssuerNames returns every distinct issuer name, sorted.
func (r *Repo) ListIssuerNames(ctx context.Context) ([]string, error) {
	var names []string
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &names,
		`SELECT DISTINCT issuer_name FROM receipts ORDER BY issuer_name`)
	if err != nil {
		return nil, postgres.MapError(err, "receipt issuers", "all")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
