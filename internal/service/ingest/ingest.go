package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// Ingest parses raw and records it atomically. It fails with
// domain.ErrInvalidDocument, domain.ErrDuplicateReceipt or an error matching
// domain.ErrPersistence; in every failure case nothing is written.
func (s *Service) Ingest(ctx context.Context, raw []byte) (*Result, error) {
	start := time.Now()

	doc, err := s.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	items, skipped := uniqueItems(doc.LineItems)
	res := &Result{Establishment: doc.IssuerName, Skipped: skipped}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.receipts.ExistsByUniqueKey(txCtx, doc.UniqueKey)
		if err != nil {
			return fmt.Errorf("check receipt: %w", err)
		}
		if exists {
			return fmt.Errorf("receipt %s: %w", doc.UniqueKey, domain.ErrDuplicateReceipt)
		}

		receipt, err := s.receipts.Create(txCtx, &domain.Receipt{
			UniqueKey:  doc.UniqueKey,
			IssuerName: doc.IssuerName,
			IssuedAt:   doc.IssuedAt,
			Total:      doc.Total,
		})
		if err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		res.ReceiptID = receipt.ID

		prices := make([]domain.NewPrice, 0, len(items))
		priced := make(map[int64]struct{}, len(items))
		for _, item := range items {
			id, outcome, err := s.resolveProduct(txCtx, item)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", item.RawName, err)
			}
			// One price per product and receipt; the first item wins.
			if _, dup := priced[id]; dup {
				res.Collapsed++
				s.log.DebugContext(txCtx, "item resolved to an already priced product",
					slog.String("name", item.RawName),
					slog.Int64("product_id", id),
				)
				continue
			}
			priced[id] = struct{}{}
			switch outcome {
			case outcomeCreated:
				res.NewProducts++
			case outcomeMerged:
				res.Merged++
			}
			prices = append(prices, domain.NewPrice{ProductID: id, Price: item.UnitPrice})
		}

		n, err := s.prices.BulkInsert(txCtx, receipt.ID, prices)
		if err != nil {
			return fmt.Errorf("insert prices: %w", err)
		}
		res.PriceCount = n
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, doc, err)
	}

	s.log.InfoContext(ctx, "invoice ingested",
		slog.Int64("receipt_id", res.ReceiptID),
		slog.String("unique_key", doc.UniqueKey),
		slog.String("establishment", res.Establishment),
		slog.Int64("prices", res.PriceCount),
		slog.Int("new_products", res.NewProducts),
		slog.Int("merged", res.Merged),
		slog.Int("skipped", res.Skipped),
		slog.Int("collapsed", res.Collapsed),
		slog.Duration("took", time.Since(start)),
	)

	if s.geo != nil && !s.geo.Enqueue(doc.IssuerName) {
		s.log.WarnContext(ctx, "geocoding queue full, establishment not scheduled",
			slog.String("establishment", doc.IssuerName))
	}

	return res, nil
}

// classify keeps user-visible errors as they are and wraps everything else
// as a persistence failure.
func (s *Service) classify(ctx context.Context, doc *domain.InvoiceDocument, err error) error {
	if errors.Is(err, domain.ErrDuplicateReceipt) {
		s.log.InfoContext(ctx, "duplicate invoice ignored", slog.String("unique_key", doc.UniqueKey))
		return err
	}

	s.log.ErrorContext(ctx, "invoice ingestion rolled back",
		slog.String("unique_key", doc.UniqueKey),
		slog.String("error", err.Error()),
	)
	return domain.NewPersistenceError("ingest invoice", err)
}

// uniqueItems drops items without a name or price and collapses repeats of
// the same barcode (or, without one, the same raw name). The first
// occurrence wins.
func uniqueItems(items []domain.LineItem) ([]domain.LineItem, int) {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.LineItem, 0, len(items))
	skipped := 0
	for _, item := range items {
		if !item.IsPersistable() {
			skipped++
			continue
		}
		key := item.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out, skipped
}
