package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/config"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/middleware"
	"github.com/heartmarshall/pricewatch-backend/internal/transport/rest"
)

const quotaCleanupInterval = 10 * time.Minute

// Run is the server entry point. It loads configuration, connects to the
// database, optionally applies migrations, then serves the HTTP API and the
// geocoding worker until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("adjudicator", cfg.Adjudicator.Provider),
		slog.Bool("geocoding", cfg.Geocoding.Enabled()),
	)

	c, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, c.Pool, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	uploadQuota := middleware.NewQuota(cfg.Ingest.DailyQuota, 24*time.Hour, quotaCleanupInterval)
	defer uploadQuota.Stop()
	nearbyQuota := middleware.NewQuota(cfg.Nearby.HourlyQuota, time.Hour, quotaCleanupInterval)
	defer nearbyQuota.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newRouter(cfg, c, logger, uploadQuota, nearbyQuota),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Worker.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newRouter(cfg *config.Config, c *Components, logger *slog.Logger, uploadQuota, nearbyQuota *middleware.Quota) http.Handler {
	health := rest.NewHealthHandler(c.Pool, BuildVersion(), rest.Backends{
		Adjudicator: cfg.Adjudicator.Provider,
		Geocoding:   c.GeocodingEnabled,
	})
	return rest.NewRouter(rest.RouterDeps{
		Logger:      logger,
		CORS:        cfg.CORS,
		Health:      health,
		Invoices:    rest.NewInvoiceHandler(c.Ingest, cfg.Ingest.MaxUploadBytes, logger),
		Nearby:      rest.NewNearbyHandler(c.Geo, cfg.Nearby.DefaultRadiusKm, logger),
		Catalog:     rest.NewCatalogHandler(c.Catalog, logger),
		UploadQuota: uploadQuota.Middleware,
		NearbyQuota: nearbyQuota.Middleware,
	})
}
