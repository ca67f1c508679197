package geo

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// DefaultRadiusKm is used when a proximity query does not name a radius.
const DefaultRadiusKm = 5.0

// FindNearby returns located stores within radiusKm of (lat, lng), nearest
// first. Queries whose coordinates round to the same hundredth of a degree
// share a cache entry; cached reports whether this answer came from it.
func (s *Service) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.NearbyStore, bool, error) {
	if err := validateQuery(lat, lng, radiusKm); err != nil {
		return nil, false, err
	}

	key := cacheKey(lat, lng, radiusKm)
	if hit, ok := s.cache.Get(key); ok {
		return slices.Clone(hit), true, nil
	}

	located, err := s.stores.ListLocated(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list located stores: %w", err)
	}

	result := make([]domain.NearbyStore, 0)
	for _, st := range located {
		if !st.HasCoordinates() {
			continue
		}
		d := domain.HaversineKm(lat, lng, *st.Latitude, *st.Longitude)
		if d <= radiusKm {
			result = append(result, domain.NearbyStore{StoreLocation: st, DistanceKm: d})
		}
	}
	slices.SortStableFunc(result, func(a, b domain.NearbyStore) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})
	if len(result) > s.cfg.MaxResults {
		result = result[:s.cfg.MaxResults]
	}

	s.cache.Add(key, slices.Clone(result))
	return result, false, nil
}

func cacheKey(lat, lng, radiusKm float64) string {
	return fmt.Sprintf("%.2f:%.2f:%g", gridCell(lat), gridCell(lng), radiusKm)
}

// gridCell rounds to two decimals. Negative zero is folded into zero so
// both sides of the equator and meridian share a cell.
func gridCell(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func validateQuery(lat, lng, radiusKm float64) error {
	var errs []domain.FieldError
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		errs = append(errs, domain.FieldError{Field: "lat", Message: "must be between -90 and 90"})
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		errs = append(errs, domain.FieldError{Field: "lng", Message: "must be between -180 and 180"})
	}
	if math.IsNaN(radiusKm) || radiusKm <= 0 || math.IsInf(radiusKm, 0) {
		errs = append(errs, domain.FieldError{Field: "radius", Message: "must be a positive number"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
