package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueName returns prefix with a random suffix. Tests share one database,
// so names that must not collide go through it.
func UniqueName(prefix string) string {
	return prefix + " " + uniqueSuffix()
}

// SeedProduct inserts a product. An empty barcode stores NULL.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, barcode, name string) domain.Product {
	t.Helper()

	p := domain.Product{CanonicalName: name}
	if barcode != "" {
		p.Barcode = &barcode
	}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (barcode, name) VALUES ($1, $2) RETURNING id, created_at`,
		p.Barcode, p.CanonicalName,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedProduct: %v", err)
	}
	return p
}

// SeedReceipt inserts a receipt with a random unique key.
func SeedReceipt(t *testing.T, pool *pgxpool.Pool, issuer string, issuedAt time.Time) domain.Receipt {
	t.Helper()

	r := domain.Receipt{
		UniqueKey:  "test-" + uuid.NewString(),
		IssuerName: issuer,
		IssuedAt:   issuedAt.UTC().Truncate(time.Microsecond),
		Total:      decimal.Zero,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO receipts (unique_key, issuer_name, issued_at, total) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		r.UniqueKey, r.IssuerName, r.IssuedAt, r.Total,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedReceipt: %v", err)
	}
	return r
}

// SeedPrice inserts one price observation.
func SeedPrice(t *testing.T, pool *pgxpool.Pool, productID, receiptID int64, price string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO price_observations (product_id, receipt_id, price) VALUES ($1, $2, $3)`,
		productID, receiptID, decimal.RequireFromString(price),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedPrice: %v", err)
	}
}

// SeedStore inserts a store location; nil coordinates leave it un-geocoded.
func SeedStore(t *testing.T, pool *pgxpool.Pool, name string, lat, lng *float64) domain.StoreLocation {
	t.Helper()

	s := domain.StoreLocation{Name: name, Latitude: lat, Longitude: lng}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO store_locations (name, latitude, longitude) VALUES ($1, $2, $3) RETURNING id`,
		s.Name, s.Latitude, s.Longitude,
	).Scan(&s.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedStore: %v", err)
	}
	return s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
