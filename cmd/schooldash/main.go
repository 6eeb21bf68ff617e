// Command schooldash serves the school dashboard API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/schooldash/internal/app"
	"github.com/dmitrymomot/schooldash/internal/config"
	"github.com/dmitrymomot/schooldash/pkg/health"
	"github.com/dmitrymomot/schooldash/pkg/logger"
)

// Build information set via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "schooldash",
	Short:         "School and training management dashboard API",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

The store backend is chosen by STORE_DRIVER (memory, postgres, redis).
See internal/config for every environment variable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App, _ *slog.Logger) error {
			return a.Serve(ctx)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled fixture dataset into the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *slog.Logger) error {
			defer closeApp(ctx, a, log)

			n, err := a.Seed(ctx)
			if err != nil {
				return err
			}
			log.InfoContext(ctx, "fixtures loaded", slog.Int("documents", n))
			return nil
		})
	},
}

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the readiness checks of the configured store and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *slog.Logger) error {
			defer closeApp(ctx, a, log)

			if err := health.Run(ctx, a.Checks(), health.WithTimeout(checkTimeout), health.WithLogger(log)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Second, "timeout for all checks")

	rootCmd.AddCommand(serveCmd, seedCmd, checkCmd)
}

// withApp loads configuration, builds the logger and the app, and runs fn.
func withApp(ctx context.Context, fn func(context.Context, *app.App, *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, logger.RequestID)
	defer logger.Flush(2 * time.Second)(ctx)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "startup failed", slog.String("error", err.Error()))
		return err
	}

	return fn(ctx, a, log)
}

type closer interface {
	Close(ctx context.Context) error
}

// closeApp releases the app's backends and logs a failed shutdown.
func closeApp(ctx context.Context, a closer, log *slog.Logger) {
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		log.ErrorContext(ctx, "shutdown failed", slog.String("error", err.Error()))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
