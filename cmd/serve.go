package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-hub/internal/config"
	"github.com/Shivanand-hulikatti/event-hub/internal/handler"
	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server and block until SIGINT or SIGTERM.

Examples:
  # Start with default configuration (from env vars)
  eventhub serve

  # Keep collections in /var/lib/eventhub and listen on 9090
  eventhub serve --data-dir /var/lib/eventhub --port 9090

  # Store collections in PostgreSQL
  DATABASE_URL=postgres://... eventhub serve --storage postgres`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	// root serves by default, so it takes the same flag
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().IntVar(&serverPort, "port", 0, "server port (default: 3001)")
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Log)
	logger.Info().Str("version", Version).Msg("starting event hub")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Init(Version, a.backend.Name())

	router := handler.NewRouter(handler.NewEventHandler(a.svc), handler.RouterConfig{
		RateLimit: cfg.RateLimit,
		Tokens:    a.tokens,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}
