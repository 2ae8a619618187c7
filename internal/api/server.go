package api

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/cinesync/internal/api/handlers"
	"github.com/amaumene/cinesync/internal/api/middleware"
	"github.com/amaumene/cinesync/internal/auth"
	"github.com/amaumene/cinesync/internal/catalog"
	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/metrics"
	"github.com/amaumene/cinesync/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Deps groups what the routes need
type Deps struct {
	DB           *models.Database
	Catalog      *catalog.Service
	SyncCtrl     *controllers.SyncController
	RatingCtrl   *controllers.RatingController
	FavoriteCtrl *controllers.FavoriteController
	UserCtrl     *controllers.UserController
	Tokens       *auth.Tokens
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
}

// Server represents the HTTP server
type Server struct {
	app    *fiber.App
	port   string
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "cinesync",
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler:          handlers.ErrorHandler(logger),
	})

	s := &Server{
		app:    app,
		port:   cfg.ServerPort,
		logger: logger,
	}

	app.Use(recover.New())
	app.Use(middleware.Logging(logger, deps.Metrics))
	s.setupRoutes(cfg, deps)

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg *config.Config, deps Deps) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Get)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(deps.DB, s.logger)
	s.app.Get("/status", statusHandler.Get)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	requireAuth := middleware.RequireAuth(deps.Tokens, s.logger)
	v1 := s.app.Group("/api/v1")

	// Catalog
	moviesHandler := handlers.NewMoviesHandler(deps.Catalog, deps.SyncCtrl, controllers.CredentialsFromConfig(cfg), cfg.SyncPages, s.logger)
	v1.Get("/movies", moviesHandler.List)
	v1.Post("/movies/sync", requireAuth, moviesHandler.Sync)

	// Users
	usersHandler := handlers.NewUsersHandler(deps.UserCtrl, s.logger)
	v1.Post("/auth/register", usersHandler.Register)
	v1.Post("/auth/login", usersHandler.Login)
	v1.Get("/users/me", requireAuth, usersHandler.Me)

	// Ratings
	ratingsHandler := handlers.NewRatingsHandler(deps.RatingCtrl, s.logger)
	v1.Post("/ratings/rate", requireAuth, ratingsHandler.Rate)
	v1.Put("/ratings/:id", requireAuth, ratingsHandler.Update)
	v1.Delete("/ratings/:id", requireAuth, ratingsHandler.Delete)
	v1.Get("/ratings/movie/:movieId/user", requireAuth, ratingsHandler.UserRating)
	v1.Get("/ratings/movie/:movieId/average", ratingsHandler.Average)

	// Favorites
	favoritesHandler := handlers.NewFavoritesHandler(deps.FavoriteCtrl, s.logger)
	v1.Get("/favorites", requireAuth, favoritesHandler.List)
	v1.Post("/favorites/:movieId", requireAuth, favoritesHandler.Add)
	v1.Delete("/favorites/:movieId", requireAuth, favoritesHandler.Remove)
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server and blocks until ctx is done
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.port).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(":" + s.port); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
