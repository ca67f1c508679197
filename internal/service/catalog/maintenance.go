package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
	"github.com/heartmarshall/pricewatch-backend/internal/matching"
)

// ---------------------------------------------------------------------------
// Deduplication
// ---------------------------------------------------------------------------

// Merge folds the price history of Drop into Keep.
type Merge struct {
	KeepID     int64
	KeepName   string
	DropID     int64
	DropName   string
	Method     domain.MatchMethod
	Confidence int
}

// DedupeReport describes a deduplication run.
type DedupeReport struct {
	Scanned int
	Unique  int
	Merges  []Merge
	Applied int
	Failed  int
}

// Dedupe finds barcode-less products that denote the same item. Products are
// visited in creation order and each is compared only with the products
// already kept, so the oldest name survives. With apply set, each merge
// moves prices to the kept product and deletes the other in its own
// transaction; a failed merge is logged and skipped.
func (s *Service) Dedupe(ctx context.Context, apply bool) (*DedupeReport, error) {
	if s.resolver == nil {
		return nil, errors.New("dedupe: no resolver configured")
	}

	products, err := s.products.ListBarcodeless(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &DedupeReport{Scanned: len(products)}
	kept := make([]domain.CatalogEntry, 0, len(products))
	names := make(map[int64]string, len(products))

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		match := s.resolver.Resolve(ctx, p.Name, kept)
		if !match.IsMerge() {
			kept = append(kept, p)
			names[p.ID] = p.Name
			continue
		}

		m := Merge{
			KeepID:     match.TargetID,
			KeepName:   names[match.TargetID],
			DropID:     p.ID,
			DropName:   p.Name,
			Method:     match.Method,
			Confidence: match.Confidence,
		}
		report.Merges = append(report.Merges, m)
		s.log.InfoContext(ctx, "merge suggested",
			slog.Int64("keep_id", m.KeepID),
			slog.String("keep", m.KeepName),
			slog.Int64("drop_id", m.DropID),
			slog.String("drop", m.DropName),
			slog.String("method", string(m.Method)),
			slog.Int("confidence", m.Confidence),
		)
	}
	report.Unique = len(kept)

	if apply {
		for _, m := range report.Merges {
			if err := s.applyMerge(ctx, m); err != nil {
				report.Failed++
				s.log.ErrorContext(ctx, "merge failed",
					slog.Int64("drop_id", m.DropID),
					slog.Int64("keep_id", m.KeepID),
					slog.String("error", err.Error()),
				)
				continue
			}
			report.Applied++
		}
	}

	s.log.InfoContext(ctx, "dedupe finished",
		slog.Bool("apply", apply),
		slog.Int("scanned", report.Scanned),
		slog.Int("unique", report.Unique),
		slog.Int("merges", len(report.Merges)),
		slog.Int("applied", report.Applied),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) applyMerge(ctx context.Context, m Merge) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.prices.ReassignProduct(ctx, m.DropID, m.KeepID); err != nil {
			return fmt.Errorf("reassign prices: %w", err)
		}
		if err := s.products.Delete(ctx, m.DropID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// Renames
// ---------------------------------------------------------------------------

// Rename is one proposed name change.
type Rename struct {
	ID   int64
	From string
	To   string
}

// RenameReport describes a bulk rename run.
type RenameReport struct {
	Scanned int
	Changes []Rename
	Applied int
	Failed  int
}

// BeautifyNames rewrites every product name through the beautifier.
// Without apply nothing is written.
func (s *Service) BeautifyNames(ctx context.Context, apply bool) (*RenameReport, error) {
	if s.beautifier == nil {
		return nil, errors.New("beautify: no beautifier configured")
	}
	return s.renameAll(ctx, "beautify", apply, func(name string) string {
		return s.beautifier.Beautify(ctx, name, matching.NameHint{})
	})
}

// PurgeNames strips trailing register codes from every product name.
// Without apply nothing is written.
func (s *Service) PurgeNames(ctx context.Context, apply bool) (*RenameReport, error) {
	return s.renameAll(ctx, "purge", apply, matching.SanitizeName)
}

func (s *Service) renameAll(ctx context.Context, job string, apply bool, rewrite func(string) string) (*RenameReport, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := &RenameReport{Scanned: len(products)}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		to := rewrite(p.Name)
		if to == "" || to == p.Name {
			continue
		}
		r := Rename{ID: p.ID, From: p.Name, To: to}
		report.Changes = append(report.Changes, r)

		if !apply {
			continue
		}
		if err := s.products.UpdateName(ctx, r.ID, r.To); err != nil {
			report.Failed++
			s.log.ErrorContext(ctx, "rename failed",
				slog.String("job", job),
				slog.Int64("product_id", r.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Applied++
		s.log.DebugContext(ctx, "product renamed",
			slog.String("job", job),
			slog.Int64("product_id", r.ID),
			slog.String("from", r.From),
			slog.String("to", r.To),
		)
	}

	s.log.InfoContext(ctx, "rename finished",
		slog.String("job", job),
		slog.Bool("apply", apply),
		slog.Int("scanned", report.Scanned),
		slog.Int("changes", len(report.Changes)),
		slog.Int("applied", report.Applied),
		slog.Int("failed", report.Failed),
	)
	return report, nil
}

// RestoreReport describes a name restore run.
type RestoreReport struct {
	Restored int
	Skipped  int
}

// RestoreNames reads "id<TAB>name" lines and sets each product's name. Blank
// lines are ignored; malformed lines and unknown ids are skipped. All
// updates happen in one transaction.
func (s *Service) RestoreNames(ctx context.Context, r io.Reader) (*RestoreReport, error) {
	var rows []Rename
	report := &RestoreReport{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		idStr, name, ok := strings.Cut(line, "\t")
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if !ok || err != nil || strings.TrimSpace(name) == "" {
			report.Skipped++
			s.log.WarnContext(ctx, "malformed restore line", slog.Int("line", lineNo))
			continue
		}
		// Extra columns after the name are ignored.
		name, _, _ = strings.Cut(name, "\t")
		rows = append(rows, Rename{ID: id, To: name})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read restore file: %w", err)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, row := range rows {
			err := s.products.UpdateName(ctx, row.ID, row.To)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				report.Skipped++
			case err != nil:
				return fmt.Errorf("restore product %d: %w", row.ID, err)
			default:
				report.Restored++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "names restored",
		slog.Int("restored", report.Restored),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}
