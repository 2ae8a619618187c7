//go:build wireinject

package main

import (
	"github.com/amaumene/cinesync/internal/api"
	"github.com/amaumene/cinesync/internal/auth"
	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/amaumene/cinesync/internal/scheduler"
	"github.com/amaumene/cinesync/internal/services/tmdb"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var storeSet = wire.NewSet(
	provideDatabase,
	wire.Bind(new(controllers.CatalogWriter), new(*models.Database)),
)

var metricsSet = wire.NewSet(
	provideRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	metrics.New,
)

var syncSet = wire.NewSet(
	tmdb.NewClient,
	wire.Bind(new(controllers.PopularFetcher), new(*tmdb.Client)),
	provideSyncController,
)

func initializeApp(cfg *config.Config, logger *logrus.Logger) (*App, func(), error) {
	wire.Build(
		storeSet,
		metricsSet,
		syncSet,
		provideTracerProvider,
		provideCache,
		provideCatalog,
		provideTokens,
		wire.Bind(new(controllers.TokenIssuer), new(*auth.Tokens)),
		controllers.NewRatingController,
		controllers.NewFavoriteController,
		controllers.NewUserController,
		wire.Struct(new(api.Deps), "*"),
		api.NewServer,
		wire.Bind(new(scheduler.Syncer), new(*controllers.SyncController)),
		provideScheduler,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

func initializeSync(cfg *config.Config, logger *logrus.Logger) (*controllers.SyncController, func(), error) {
	wire.Build(
		storeSet,
		metricsSet,
		syncSet,
		provideTracerProvider,
	)
	return nil, nil, nil
}

func initializeDatabase(cfg *config.Config, logger *logrus.Logger) (*models.Database, func(), error) {
	wire.Build(provideDatabase)
	return nil, nil, nil
}
