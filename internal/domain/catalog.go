package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a canonical catalog entry. Barcode is nil for products that are
// identified by name only.
type Product struct {
	ID            int64     `json:"id"            db:"id"`
	Barcode       *string   `json:"barcode"       db:"barcode"`
	CanonicalName string    `json:"name"          db:"name"`
	CreatedAt     time.Time `json:"created_at"    db:"created_at"`
}

// CatalogEntry is the minimal projection of a barcode-less product used by
// identity resolution.
type CatalogEntry struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Receipt is a persisted, already-ingested invoice.
type Receipt struct {
	ID         int64           `db:"id"`
	UniqueKey  string          `db:"unique_key"`
	IssuedAt   time.Time       `db:"issued_at"`
	IssuerName string          `db:"issuer_name"`
	Total      decimal.Decimal `db:"total"`
	CreatedAt  time.Time       `db:"created_at"`
}

// PriceObservation links a product to the receipt it was seen on.
type PriceObservation struct {
	ID         int64
	ProductID  int64
	ReceiptID  int64
	Price      decimal.Decimal
	ObservedAt time.Time
}

// NewPrice is the write model for a price observation; observed_at is set by
// the database.
type NewPrice struct {
	ProductID int64
	Price     decimal.Decimal
}

// PricePoint is one entry of a product's price history.
type PricePoint struct {
	Price    decimal.Decimal `json:"price"     db:"price"`
	Store    string          `json:"store"     db:"store"`
	IssuedAt time.Time       `json:"issued_at" db:"issued_at"`
}

// LatestPrice is the most recent observation of a product at one store, with
// the store's coordinates when it has been geocoded.
type LatestPrice struct {
	ProductID int64           `db:"product_id"`
	Store     string          `db:"store"`
	Price     decimal.Decimal `db:"price"`
	IssuedAt  time.Time       `db:"issued_at"`
	Latitude  *float64        `db:"latitude"`
	Longitude *float64        `db:"longitude"`
}

// StorePrice is the latest observed price of a product at one store.
type StorePrice struct {
	Store      string          `json:"store"`
	Price      decimal.Decimal `json:"price"`
	DaysOld    int             `json:"days_old"`
	DistanceKm *float64        `json:"distance_km,omitempty"`
}

// ProductSummary is one product search hit with its per-store breakdown.
type ProductSummary struct {
	ID         int64            `json:"id"`
	Barcode    *string          `json:"barcode"`
	Name       string           `json:"name"`
	MinPrice   *decimal.Decimal `json:"min_price"`
	MaxPrice   *decimal.Decimal `json:"max_price"`
	StoreCount int              `json:"store_count"`
	Stores     []StorePrice     `json:"stores"`
}

// CatalogStats holds aggregate row counts.
type CatalogStats struct {
	TotalReceipts int64 `json:"total_receipts" db:"total_receipts"`
	TotalProducts int64 `json:"total_products" db:"total_products"`
	TotalStores   int64 `json:"total_stores"   db:"total_stores"`
	TotalPrices   int64 `json:"total_prices"   db:"total_prices"`
}
