package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

// EnrichAndSync returns the location of the named establishment, looking it
// up and storing it when it is not yet known. A failed or empty lookup yields
// nil, nil; only storage errors are returned.
func (s *Service) EnrichAndSync(ctx context.Context, name string) (*domain.StoreLocation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	existing, err := s.stores.GetByName(ctx, name)
	switch {
	case err == nil && existing.HasCoordinates():
		return existing, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get store %q: %w", name, err)
	}

	if s.lookup == nil {
		s.log.WarnContext(ctx, "place lookup disabled, store not geocoded", slog.String("store", name))
		return nil, nil
	}

	place, err := s.lookup.SearchText(ctx, name+", "+s.cfg.Country)
	if err != nil {
		s.log.WarnContext(ctx, "geocoding failed",
			slog.String("store", name),
			slog.String("error", fmt.Errorf("%w: %w", domain.ErrGeocodingUnavailable, err).Error()),
		)
		return nil, nil
	}
	if place == nil {
		s.log.InfoContext(ctx, "no place found for store", slog.String("store", name))
		return nil, nil
	}

	loc, err := s.stores.Upsert(ctx, domain.StoreLocation{
		Name:             name,
		Latitude:         &place.Latitude,
		Longitude:        &place.Longitude,
		FormattedAddress: place.FormattedAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("save store %q: %w", name, err)
	}

	s.log.InfoContext(ctx, "store geocoded",
		slog.String("store", name),
		slog.String("address", place.FormattedAddress),
		slog.Float64("lat", place.Latitude),
		slog.Float64("lng", place.Longitude),
	)
	return loc, nil
}

// SyncStats summarizes a batch geocoding run.
type SyncStats struct {
	Processed int
	Located   int
	Failed    int
}

// SyncAll geocodes every establishment that appears on a receipt, one at a
// time, at most one lookup per configured batch delay. Storage errors on a
// single store are counted and the run continues; cancellation stops it.
func (s *Service) SyncAll(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	names, err := s.receipts.ListIssuerNames(ctx)
	if err != nil {
		return stats, fmt.Errorf("list issuers: %w", err)
	}
	s.log.InfoContext(ctx, "batch geocoding started", slog.Int("stores", len(names)))

	limit := rate.Inf
	if s.cfg.BatchDelay > 0 {
		limit = rate.Every(s.cfg.BatchDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for _, name := range names {
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}

		loc, err := s.EnrichAndSync(ctx, name)
		stats.Processed++
		switch {
		case err != nil:
			stats.Failed++
			s.log.ErrorContext(ctx, "geocode store", slog.String("store", name), slog.String("error", err.Error()))
		case loc != nil:
			stats.Located++
		}
	}

	s.log.InfoContext(ctx, "batch geocoding finished",
		slog.Int("processed", stats.Processed),
		slog.Int("located", stats.Located),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}
