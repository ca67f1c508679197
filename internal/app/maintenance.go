package app

import (
	"context"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/cli"
)

// OpenMaintenance builds the runtime used by catalogctl commands. Unlike Run
// it never migrates on its own; that is the migrate command's job.
func OpenMaintenance(ctx context.Context, configPath string) (*cli.Runtime, func(), error) {
	load := config.Load
	if configPath != "" {
		load = func() (*config.Config, error) { return config.LoadFrom(configPath) }
	}
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(cfg.Log)

	c, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	rt := &cli.Runtime{
		Catalog: c.Catalog,
		Migrate: func(ctx context.Context) error {
			return postgres.Migrate(ctx, c.Pool, logger)
		},
	}
	if c.GeocodingEnabled {
		rt.Geo = c.Geo
	}
	return rt, c.Close, nil
}
