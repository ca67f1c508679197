// Package store implements the StoreLocation repository using PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/domain"
)

var storeColumns = []string{"id", "name", "latitude", "longitude", "formatted_address"}

// Repo provides store location persistence backed by PostgreSQL.
type Repo struct {
	db postgres.DB
}

// New creates a new store repository.
func New(db postgres.DB) *Repo {
	return &Repo{db: db}
}

// GetByName returns the location row for an establishment name.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.StoreLocation, error) {
	sql, args, err := postgres.Builder().
		Select(storeColumns...).
		From("store_locations").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build store select: %w", err)
	}

	var s domain.StoreLocation
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &s, sql, args...); err != nil {
		return nil, postgres.MapError(err, "store", name)
	}
	return &s, nil
}

// Upsert stores the coordinates and address of an establishment, replacing
// any previous values for the same name.
func (r *Repo) Upsert(ctx context.Context, loc domain.StoreLocation) (*domain.StoreLocation, error) {
	sql, args, err := postgres.Builder().
		Insert("store_locations").
		Columns("name", "latitude", "longitude", "formatted_address").
		Values(loc.Name, loc.Latitude, loc.Longitude, loc.FormattedAddress).
		Suffix(`ON CONFLICT (name) DO UPDATE SET
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    formatted_address = EXCLUDED.formatted_address,
    updated_at = now()
RETURNING id, name, latitude, longitude, formatted_address`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build store upsert: %w", err)
	}

	var s domain.StoreLocation
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &s, sql, args...); err != nil {
		return nil, postgres.MapError(err, "store", loc.Name)
	}
	return &s, nil
}

// ListLocated returns every store that has coordinates.
func (r *Repo) ListLocated(ctx context.Context) ([]domain.StoreLocation, error) {
	sql, args, err := postgres.Builder().
		Select(storeColumns...).
		From("store_locations").
		Where(squirrel.NotEq{"latitude": nil, "longitude": nil}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build store list: %w", err)
	}

	var stores []domain.StoreLocation
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &stores, sql, args...); err != nil {
		return nil, postgres.MapError(err, "stores", "located")
	}
	if stores == nil {
		stores = []domain.StoreLocation{}
	}
	return stores, nil
}
