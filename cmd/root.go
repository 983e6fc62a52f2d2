package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-hub/internal/auth"
	"github.com/Shivanand-hulikatti/event-hub/internal/config"
	"github.com/Shivanand-hulikatti/event-hub/internal/database"
	"github.com/Shivanand-hulikatti/event-hub/internal/repository"
	"github.com/Shivanand-hulikatti/event-hub/internal/service"
	"github.com/Shivanand-hulikatti/event-hub/internal/store"
)

var (
	// Global flags
	logLevel  string
	logFormat string
	dataDir   string
	driver    string

	rootCmd = &cobra.Command{
		Use:   "eventhub",
		Short: "Event hub backend - events, participants, notifications and stats",
		Long: `eventhub serves a small event-management API: organizers create, update
and delete events, users join them, participants are notified when an event
changes, and aggregate statistics are computed on demand.

State lives in four collections (users, events, participants, notifications)
stored as JSON files in a data directory or as jsonb documents in PostgreSQL.`,
		SilenceUsage: true,
		// serve by default
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the JSON collections (default: ./data)")
	rootCmd.PersistentFlags().StringVar(&driver, "storage", "", "storage driver (file, postgres) (default: file)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is the wired service plus whatever must be released on exit.
type app struct {
	svc     *service.EventService
	tokens  *auth.Issuer
	backend store.Backend
	pool    *pgxpool.Pool
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// buildApp opens the configured backend and wires the repositories into
// the service.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		pg := store.NewPostgresBackend(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		a.pool = pool
		a.backend = pg
		logger.Info().Msg("connected to PostgreSQL")
	default:
		fb, err := store.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		a.backend = fb
		logger.Info().Str("data_dir", cfg.Storage.DataDir).Msg("using file storage")
	}

	a.tokens = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if a.tokens == nil {
		logger.Warn().Msg("JWT_SECRET not set; login will not issue tokens")
	}

	a.svc = service.NewEventService(service.Deps{
		Events:        repository.NewEventRepository(a.backend, logger),
		Participants:  repository.NewParticipantRepository(a.backend, logger),
		Notifications: repository.NewNotificationRepository(a.backend, logger),
		Users:         repository.NewUserRepository(a.backend, logger),
		Tokens:        a.tokens,
	}, logger)
	return a, nil
}
