package main

import (
	"context"
	"fmt"
	"io"

	"github.com/amaumene/cinesync/internal/api"
	"github.com/amaumene/cinesync/internal/auth"
	"github.com/amaumene/cinesync/internal/cache"
	"github.com/amaumene/cinesync/internal/catalog"
	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/amaumene/cinesync/internal/scheduler"
	"github.com/amaumene/cinesync/internal/telemetry"
	"github.com/amaumene/cinesync/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// App is the fully wired serve command
type App struct {
	Server    *api.Server
	Scheduler *scheduler.Scheduler
}

func provideDatabase(cfg *config.Config, logger *logrus.Logger) (*models.Database, func(), error) {
	db, err := models.NewDatabase(models.Driver(cfg.DatabaseDriver), cfg.DatabaseDSN, utils.NewQueryLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.WithField("driver", cfg.DatabaseDriver).Info("Database initialized")

	return db, func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}, nil
}

func provideCache(cfg *config.Config, logger *logrus.Logger) (cache.Cache, func(), error) {
	c, err := cache.New(context.Background(), cache.Backend(cfg.CacheBackend), cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	logger.WithField("backend", cfg.CacheBackend).Info("Cache initialized")

	return c, func() {
		if closer, ok := c.(io.Closer); ok {
			closer.Close()
		}
	}, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideTracerProvider(logger *logrus.Logger) (trace.TracerProvider, func()) {
	return telemetry.NewTracerProvider(logger)
}

func provideSyncController(fetcher controllers.PopularFetcher, store controllers.CatalogWriter, cfg *config.Config, m *metrics.Metrics, tp trace.TracerProvider, logger *logrus.Logger) *controllers.SyncController {
	return controllers.NewSyncController(fetcher, store, cfg.TMDBFetchTimeout, m, tp, logger)
}

func provideCatalog(db *models.Database, c cache.Cache, cfg *config.Config, m *metrics.Metrics, tp trace.TracerProvider, logger *logrus.Logger) *catalog.Service {
	return catalog.NewService(db, c, cfg.CacheTTL, m, tp, logger)
}

func provideTokens(cfg *config.Config) *auth.Tokens {
	return auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
}

func provideScheduler(syncer scheduler.Syncer, cfg *config.Config, logger *logrus.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(syncer, scheduler.Options{
		Credentials:    controllers.CredentialsFromConfig(cfg),
		Pages:          cfg.SyncPages,
		OnStartup:      cfg.SyncOnStartup,
		Schedule:       cfg.SyncSchedule,
		StartupRetries: cfg.SyncStartupRetries,
	}, logger)
}
