package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
)

type resolveOutcome int

const (
	outcomeExisting resolveOutcome = iota
	outcomeMerged
	outcomeCreated
)

// resolveProduct returns the product id for item, creating the product when
// nothing in the catalog matches.
func (s *Service) resolveProduct(ctx context.Context, item domain.LineItem) (int64, resolveOutcome, error) {
	if item.HasBarcode() {
		id, err := s.products.UpsertByBarcode(ctx, item.Barcode, item.RawName)
		return id, outcomeExisting, err
	}

	if p, err := s.findByName(ctx, item.RawName); err != nil || p != nil {
		return productID(p), outcomeExisting, err
	}

	name := item.RawName
	if s.beautifier != nil {
		name = s.beautifier.Beautify(ctx, item.RawName, matching.NameHint{
			Quantity: item.Quantity.String(),
			Unit:     item.UnitOfMeasure,
		})
		if name != item.RawName {
			if p, err := s.findByName(ctx, name); err != nil || p != nil {
				return productID(p), outcomeExisting, err
			}
		}
	}

	catalog, err := s.products.ListBarcodeless(ctx)
	if err != nil {
		return 0, 0, err
	}

	match := s.resolver.Resolve(ctx, name, catalog)
	if match.IsMerge() {
		s.log.DebugContext(ctx, "product merged",
			slog.String("name", name),
			slog.Int64("target_id", match.TargetID),
			slog.String("method", string(match.Method)),
			slog.Int("confidence", match.Confidence),
		)
		return match.TargetID, outcomeMerged, nil
	}

	created, err := s.products.Create(ctx, nil, name)
	if err != nil {
		return 0, 0, err
	}
	s.log.DebugContext(ctx, "product created",
		slog.Int64("product_id", created.ID),
		slog.String("name", name),
		slog.String("method", string(match.Method)),
		slog.Int("confidence", match.Confidence),
	)
	return created.ID, outcomeCreated, nil
}

// findByName returns nil, nil when no barcode-less product has exactly name.
func (s *Service) findByName(ctx context.Context, name string) (*domain.Product, error) {
	p, err := s.products.FindBarcodelessByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func productID(p *domain.Product) int64 {
	if p == nil {
		return 0
	}
	return p.ID
}
