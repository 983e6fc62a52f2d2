package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/event-hub/internal/config"
	"github.com/Shivanand-hulikatti/event-hub/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print participation statistics from the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *service.EventService) error {
			return printJSON(cmd.OutOrStdout(), svc.ComputeStats(ctx))
		})
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Print the notification log from the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *service.EventService) error {
			return printJSON(cmd.OutOrStdout(), svc.ListNotifications(ctx))
		})
	},
}

func withService(ctx context.Context, fn func(context.Context, *service.EventService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	// keep stdout for the JSON output unless asked otherwise
	if logLevel == "" {
		cfg.Log.Level = "warn"
	}
	logger := config.NewLogger(cfg.Log)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a.svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
