package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDocument is the normalized in-memory form of an electronic invoice.
// It is produced once by the parser and is read-only afterwards.
type InvoiceDocument struct {
	// UniqueKey is the document's Clave, or a SHA-256 hex digest of the raw
	// bytes when the Clave is absent. Never empty.
	UniqueKey  string
	IssuerName string
	IssuedAt   time.Time
	Total      decimal.Decimal
	LineItems  []LineItem
}

// LineItem is one purchased product entry within a document.
type LineItem struct {
	Barcode       string // empty means no barcode
	RawName       string
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
	UnitOfMeasure string
}

// HasBarcode reports whether the item carries a product code.
func (li LineItem) HasBarcode() bool { return li.Barcode != "" }

// IsPersistable reports whether the item has both a name and a price.
// A zero unit price is treated as a missing price.
func (li LineItem) IsPersistable() bool {
	return li.RawName != "" && li.UnitPrice.IsPositive()
}

// DedupKey identifies textually identical items within one document:
// the barcode when present, otherwise the raw name.
func (li LineItem) DedupKey() string {
	if li.HasBarcode() {
		return "barcode:" + li.Barcode
	}
	return "name:" + li.RawName
}
