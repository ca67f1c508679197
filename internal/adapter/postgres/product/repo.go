// Package product implements the Product repository using PostgreSQL.
package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

var productColumns = []string{"id", "barcode", "name", "created_at"}

// Repo provides product persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new product repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a product by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "product", id)
}

// GetByBarcode returns the product with the given barcode.
func (r *Repo) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"barcode": barcode}, "product barcode", barcode)
}

// GetByIdentifier resolves a numeric id first and falls back to a barcode
// lookup, so all-digit barcodes still work.
func (r *Repo) GetByIdentifier(ctx context.Context, identifier string) (*domain.Product, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		pred := squirrel.Or{squirrel.Eq{"id": id}, squirrel.Eq{"barcode": identifier}}
		return r.getOne(ctx, pred, "product", identifier)
	}
	return r.GetByBarcode(ctx, identifier)
}

// FindBarcodelessByName returns the barcode-less product whose name matches
// exactly (case-sensitive). Returns domain.ErrNotFound when there is none.
func (r *Repo) FindBarcodelessByName(ctx context.Context, name string) (*domain.Product, error) {
	pred := squirrel.And{squirrel.Eq{"barcode": nil}, squirrel.Eq{"name": name}}
	return r.getOne(ctx, pred, "product name", name)
}

// ListBarcodeless returns the identity-resolution catalog: every barcode-less
// product in creation order.
func (r *Repo) ListBarcodeless(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.listEntries(ctx, squirrel.Eq{"barcode": nil})
}

// ListAll returns id and name of every product in creation order.
func (r *Repo) ListAll(ctx context.Context) ([]domain.CatalogEntry, error) {
	return r.listEntries(ctx, nil)
}

// Search returns up to limit products whose name contains q (case-insensitive)
// or whose barcode equals q.
func (r *Repo) Search(ctx context.Context, q string, limit uint64) ([]domain.Product, error) {
	query := postgres.Builder().
		Select(productColumns...).
		From("products").
		Where(squirrel.Or{
			squirrel.ILike{"name": "%" + escapeLike(q) + "%"},
			squirrel.Eq{"barcode": q},
		}).
		OrderBy("name", "id").
		Limit(limit)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product search: %w", err)
	}

	var products []domain.Product
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &products, sql, args...); err != nil {
		return nil, postgres.MapError(err, "product search", q)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// UpsertByBarcode returns the id of the product with barcode, inserting it
// with name when absent. Concurrent inserts of the same barcode converge on
// one row.
func (r *Repo) UpsertByBarcode(ctx context.Context, barcode, name string) (int64, error) {
	const sql = `
INSERT INTO products (barcode, name)
VALUES ($1, $2)
ON CONFLICT (barcode) DO UPDATE SET barcode = EXCLUDED.barcode
RETURNING id`

	var id int64
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, barcode, name).Scan(&id); err != nil {
		return 0, postgres.MapError(err, "product barcode", barcode)
	}
	return id, nil
}

// Create inserts a product. A nil barcode creates a name-identified product.
func (r *Repo) Create(ctx context.Context, barcode *string, name string) (*domain.Product, error) {
	sql, args, err := postgres.Builder().
		Insert("products").
		Columns("barcode", "name").
		Values(barcode, name).
		Suffix("RETURNING id, barcode, name, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product insert: %w", err)
	}

	var p domain.Product
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &p, sql, args...); err != nil {
		return nil, postgres.MapError(err, "product", name)
	}
	return &p, nil
}

// UpdateName sets a product's canonical name.
func (r *Repo) UpdateName(ctx context.Context, id int64, name string) error {
	sql, args, err := postgres.Builder().
		Update("products").
		Set("name", name).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build product update: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "product", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a product. Its price observations are removed by cascade,
// so callers merging products reassign them first.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "product", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) getOne(ctx context.Context, pred squirrel.Sqlizer, entity string, key any) (*domain.Product, error) {
	sql, args, err := postgres.Builder().
		Select(productColumns...).
		From("products").
		Where(pred).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product select: %w", err)
	}

	var p domain.Product
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &p, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, key)
	}
	return &p, nil
}

func (r *Repo) listEntries(ctx context.Context, pred squirrel.Sqlizer) ([]domain.CatalogEntry, error) {
	query := postgres.Builder().Select("id", "name").From("products").OrderBy("id")
	if pred != nil {
		query = query.Where(pred)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product list: %w", err)
	}

	var entries []domain.CatalogEntry
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &entries, sql, args...); err != nil {
		return nil, postgres.MapError(err, "product catalog", "all")
	}
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}
	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
