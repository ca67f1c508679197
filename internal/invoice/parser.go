// Package invoice parses Costa Rican electronic invoices (FacturaElectronica
// and TiqueteElectronico XML) into domain.InvoiceDocument values.
package invoice

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Recognized root elements.
const (
	KindInvoice = "FacturaElectronica"
	KindTicket  = "TiqueteElectronico"
)

const unknownIssuer = "Desconocido"

// Documents without an offset are issued in Costa Rica (UTC-6, no DST).
var issuerZone = time.FixedZone("UTC-6", -6*60*60)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parser turns raw invoice bytes into a domain.InvoiceDocument.
type Parser struct {
	log *slog.Logger
	now func() time.Time
}

// NewParser creates a Parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		log: logger.With("component", "invoice_parser"),
		now: time.Now,
	}
}

// Parse decodes raw into an InvoiceDocument. Any structural problem yields an
// error wrapping domain.ErrInvalidDocument and a nil document; partial results
// are never returned.
func (p *Parser) Parse(raw []byte) (*domain.InvoiceDocument, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, domain.NewInvalidDocumentError("empty document")
	}

	var doc xmlDocument
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charsetReader
	if err := dec.Decode(&doc); err != nil {
		p.log.Warn("malformed invoice xml", slog.String("error", err.Error()))
		return nil, domain.NewInvalidDocumentError("malformed xml: %v", err)
	}

	kind, ok := documentKind(doc.XMLName.Local)
	if !ok {
		p.log.Warn("unrecognized invoice root", slog.String("root", doc.XMLName.Local))
		return nil, domain.NewInvalidDocumentError("unexpected root element %q", doc.XMLName.Local)
	}

	issuedAt, err := p.parseIssuedAt(doc.FechaEmision)
	if err != nil {
		return nil, err
	}

	total, err := parseDecimal("TotalComprobante", doc.ResumenFactura.TotalComprobante, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, domain.NewInvalidDocumentError("negative total %s", total)
	}

	items, err := p.parseLines(doc.LineaDetalle)
	if err != nil {
		return nil, err
	}

	result := &domain.InvoiceDocument{
		UniqueKey:  uniqueKey(doc.Clave, raw),
		IssuerName: issuerName(doc.Emisor),
		IssuedAt:   issuedAt,
		Total:      total,
		LineItems:  items,
	}

	p.log.Info("invoice parsed",
		slog.String("kind", kind),
		slog.String("unique_key", result.UniqueKey),
		slog.String("issuer", result.IssuerName),
		slog.Time("issued_at", result.IssuedAt),
		slog.String("total", result.Total.String()),
		slog.Int("lines", len(result.LineItems)),
	)

	return result, nil
}

func (p *Parser) parseLines(lines []xmlLine) ([]domain.LineItem, error) {
	if len(lines) == 0 {
		p.log.Warn("invoice has no detail lines")
		return []domain.LineItem{}, nil
	}

	items := make([]domain.LineItem, 0, len(lines))
	for i, line := range lines {
		price, err := parseDecimal("PrecioUnitario", line.PrecioUnitario, decimal.Zero)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if price.IsNegative() {
			return nil, domain.NewInvalidDocumentError("line %d: negative unit price %s", i+1, price)
		}
		qty, err := parseDecimal("Cantidad", line.Cantidad, decimal.NewFromInt(1))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		item := domain.LineItem{
			Barcode:       firstCode(line.Codigo),
			RawName:       strings.TrimSpace(line.Detalle),
			UnitPrice:     price,
			Quantity:      qty,
			UnitOfMeasure: strings.TrimSpace(line.UnidadMedida),
		}
		p.log.Debug("invoice line",
			slog.Int("line", i+1),
			slog.String("name", item.RawName),
			slog.String("barcode", item.Barcode),
			slog.String("quantity", item.Quantity.String()),
			slog.String("unit", item.UnitOfMeasure),
			slog.String("price", item.UnitPrice.String()),
		)
		items = append(items, item)
	}
	return items, nil
}

func (p *Parser) parseIssuedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		p.log.Warn("invoice without FechaEmision, using current time")
		return p.now().UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, issuerZone); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewInvalidDocumentError("unparseable FechaEmision %q", raw)
}

func documentKind(root string) (string, bool) {
	switch {
	case strings.Contains(root, KindInvoice):
		return KindInvoice, true
	case strings.Contains(root, KindTicket):
		return KindTicket, true
	}
	return "", false
}

// issuerName prefers the trade name over the legal name so that branches of
// one company stay distinct, and appends address detail when present.
func issuerName(e xmlIssuer) string {
	legal := strings.TrimSpace(e.Nombre)
	trade := strings.TrimSpace(e.NombreComercial)

	var name string
	switch {
	case trade != "" && legal != "" && trade != legal:
		name = fmt.Sprintf("%s (%s)", trade, legal)
	case trade != "":
		name = trade
	case legal != "":
		name = legal
	default:
		name = unknownIssuer
	}

	if e.Ubicacion != nil {
		if detail := strings.TrimSpace(e.Ubicacion.OtrasSenas); detail != "" {
			name += " - " + detail
		}
	}
	return name
}

// uniqueKey returns the document Clave or, when it is missing, a content
// hash so that byte-identical documents stay idempotent.
func uniqueKey(clave string, raw []byte) string {
	if k := strings.TrimSpace(clave); k != "" {
		return k
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// firstCode returns the first code entry's value; later entries are ignored.
func firstCode(codes []xmlCode) string {
	if len(codes) == 0 {
		return ""
	}
	return strings.TrimSpace(codes[0].Codigo)
}

func parseDecimal(field, raw string, def decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewInvalidDocumentError("%s: not a number %q", field, raw)
	}
	return d, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
