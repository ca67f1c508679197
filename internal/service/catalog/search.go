package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// ProductDetail is a product with its price history, newest first.
type ProductDetail struct {
	Product *domain.Product     `json:"product"`
	Prices  []domain.PricePoint `json:"prices"`
}

// Search returns up to 20 products matching the query by name or barcode,
// each with the latest price at every store that sold it.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]domain.ProductSummary, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	products, err := s.products.Search(ctx, strings.TrimSpace(in.Query), searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if len(products) == 0 {
		return []domain.ProductSummary{}, nil
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	latest, err := s.prices.LatestByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("latest prices: %w", err)
	}

	byProduct := make(map[int64][]domain.LatestPrice, len(products))
	for _, lp := range latest {
		byProduct[lp.ProductID] = append(byProduct[lp.ProductID], lp)
	}

	now := s.now()
	out := make([]domain.ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, s.summarize(p, byProduct[p.ID], in, now))
	}
	return out, nil
}

func (s *Service) summarize(p domain.Product, latest []domain.LatestPrice, in SearchInput, now time.Time) domain.ProductSummary {
	sum := domain.ProductSummary{
		ID:         p.ID,
		Barcode:    p.Barcode,
		Name:       p.CanonicalName,
		StoreCount: len(latest),
		Stores:     make([]domain.StorePrice, 0, len(latest)),
	}

	var lo, hi decimal.Decimal
	for i, lp := range latest {
		if i == 0 || lp.Price.LessThan(lo) {
			lo = lp.Price
		}
		if i == 0 || lp.Price.GreaterThan(hi) {
			hi = lp.Price
		}

		sp := domain.StorePrice{
			Store:   lp.Store,
			Price:   lp.Price,
			DaysOld: daysBetween(lp.IssuedAt, now),
		}
		if in.hasLocation() && lp.Latitude != nil && lp.Longitude != nil {
			d := domain.HaversineKm(*in.Lat, *in.Lng, *lp.Latitude, *lp.Longitude)
			sp.DistanceKm = &d
		}
		sum.Stores = append(sum.Stores, sp)
	}
	if len(latest) > 0 {
		sum.MinPrice, sum.MaxPrice = &lo, &hi
	}

	slices.SortStableFunc(sum.Stores, compareStores)
	return sum
}

// compareStores puts stores with a known distance first, nearest first, and
// orders the rest by price.
func compareStores(a, b domain.StorePrice) int {
	switch {
	case a.DistanceKm != nil && b.DistanceKm != nil:
		if c := cmp.Compare(*a.DistanceKm, *b.DistanceKm); c != 0 {
			return c
		}
	case a.DistanceKm != nil:
		return -1
	case b.DistanceKm != nil:
		return 1
	}
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c
	}
	return strings.Compare(a.Store, b.Store)
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Detail returns a product by numeric id or barcode with its price history.
func (s *Service) Detail(ctx context.Context, identifier string) (*ProductDetail, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.NewValidationError("identifier", "required")
	}

	p, err := s.products.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	history, err := s.prices.History(ctx, p.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	return &ProductDetail{Product: p, Prices: history}, nil
}

// Stats returns aggregate catalog counts.
func (s *Service) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	st, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	return st, nil
}
