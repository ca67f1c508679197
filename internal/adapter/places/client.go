// Package places looks up establishments with the Google Places API (New).
package places

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"

	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

var searchFields = []googleapi.Field{
	"places.displayName",
	"places.formattedAddress",
	"places.location",
}

// Client wraps the Places searchText method.
type Client struct {
	svc     *placesapi.Service
	timeout time.Duration
	log     *slog.Logger
}

// NewClient creates a Client authenticated with apiKey. Extra options are
// appended, which lets tests point the client at a local server.
func NewClient(ctx context.Context, apiKey string, timeout time.Duration, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("places: api key is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := placesapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("places: create service: %w", err)
	}
	return &Client{
		svc:     svc,
		timeout: timeout,
		log:     logger.With("adapter", "places"),
	}, nil
}

// SearchText returns the first place matching query, or nil when there is none.
// One attempt is made per call.
func (c *Client) SearchText(ctx context.Context, query string) (*domain.Place, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.svc.Places.SearchText(&placesapi.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:    query,
		LanguageCode: "es",
		RegionCode:   "CR",
	}).Fields(searchFields...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("places: search text %q: %w", query, err)
	}

	for _, p := range resp.Places {
		if p == nil || p.Location == nil {
			continue
		}
		place := &domain.Place{
			Latitude:         p.Location.Latitude,
			Longitude:        p.Location.Longitude,
			FormattedAddress: p.FormattedAddress,
		}
		if p.DisplayName != nil {
			place.DisplayName = p.DisplayName.Text
		}
		c.log.DebugContext(ctx, "place found",
			slog.String("query", query),
			slog.String("name", place.DisplayName),
			slog.Float64("lat", place.Latitude),
			slog.Float64("lng", place.Longitude),
		)
		return place, nil
	}

	c.log.DebugContext(ctx, "no place found", slog.String("query", query))
	return nil, nil
}
