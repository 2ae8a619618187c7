package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/controllers"
	"github.com/amaumene/cinesync/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cinesync",
		Short:         "Movie catalog mirrored from TMDB with user ratings and favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.PersistentFlags().String("log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().String("db-driver", "", "database driver: sqlite or postgres (overrides DB_DRIVER)")
	root.PersistentFlags().String("db-dsn", "", "database DSN (overrides DB_DSN)")
	bindFlag(root.PersistentFlags().Lookup("log-level"), "LOG_LEVEL")
	bindFlag(root.PersistentFlags().Lookup("db-driver"), "DB_DRIVER")
	bindFlag(root.PersistentFlags().Lookup("db-dsn"), "DB_DSN")

	root.AddCommand(newServeCommand(), newSyncCommand(), newMigrateCommand())
	return root
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background sync jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().String("port", "", "HTTP port (overrides SERVER_PORT)")
	bindFlag(cmd.Flags().Lookup("port"), "SERVER_PORT")
	return cmd
}

func newSyncCommand() *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one TMDB sync and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), pages)
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "number of popular pages to fetch (default SYNC_PAGES)")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

// bindFlag lets a flag override the matching environment key when it is set
func bindFlag(flag *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag.Name, err))
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := utils.NewLogger(cfg)
	return cfg, logger, nil
}

func runServe(parent context.Context) error {
	// 1. Load configuration
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	logger.Info("Starting cinesync")
	logger.WithFields(logrus.Fields{
		"database": cfg.DatabaseDriver,
		"cache":    cfg.CacheBackend,
	}).Info("Configuration loaded")

	if err := controllers.CheckCredentials(controllers.CredentialsFromConfig(cfg)); err != nil {
		logger.WithError(err).Warn("TMDB sync is disabled until credentials are configured")
	}

	// 2. Build the object graph
	app, cleanup, err := initializeApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	// 3. Start background sync jobs
	if err := app.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.Scheduler.Stop()

	// 4. Start HTTP server, stop on signal
	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("cinesync is running")
	if err := app.Server.Start(ctx); err != nil {
		return err
	}

	logger.Info("cinesync stopped")
	return nil
}

func runSync(parent context.Context, pages int) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if pages == 0 {
		pages = cfg.SyncPages
	}

	syncCtrl, cleanup, err := initializeSync(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(contextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := syncCtrl.SyncPopular(ctx, controllers.CredentialsFromConfig(cfg), pages)
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	return nil
}

func runMigrate() error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	// provideDatabase migrates on open
	_, cleanup, err := initializeDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.WithField("driver", cfg.DatabaseDriver).Info("Database schema is up to date")
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
