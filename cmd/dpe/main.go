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

	"github.com/slice/discord-package-exporter/internal/api"
	"github.com/slice/discord-package-exporter/internal/config"
	"github.com/slice/discord-package-exporter/internal/export"
	"github.com/slice/discord-package-exporter/internal/hermes"
	"github.com/slice/discord-package-exporter/internal/importer"
	"github.com/slice/discord-package-exporter/internal/progress"
	"github.com/slice/discord-package-exporter/internal/store"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "dpe <package-path> <database-url>",
	Short: "Export the messages of a Discord data package into a database",
	Long: `Reads the messages/ directory of an unpacked Discord data package and
upserts every message into a "messages" table, one transaction per channel.

The database URL is a Postgres connection string, or sqlite:<path> (or a
path ending in .db) for an embedded SQLite file.

Environment:
  DPE_CONFIG       optional YAML config file
  DPE_LOG_LEVEL    debug, info, warn or error (default info)
  DPE_ON_CONFLICT  update-name (default) or ignore
  DPE_STATUS_PORT  serve /api/v1/import/status on this port (0 disables)
  NATS_URL         publish import events to NATS (empty disables)
  NATS_TOKEN       NATS auth token`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dpe %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	policy, err := store.ParseConflictPolicy(cfg.OnConflict)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pkg, err := export.Open(args[0])
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, args[1], policy)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database connected", "on_conflict", policy)

	tracker := &progress.Tracker{}
	reporter := progress.Multi{progress.New(os.Stdout, slog.Default()), tracker}

	// Left as a nil interface when NATS is not configured.
	var events importer.Publisher
	if cfg.NatsURL != "" {
		client, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return err
		}
		defer client.Close()
		events = client
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	runner := importer.NewRunner(pkg, db, reporter, events, slog.Default())

	if cfg.StatusPort > 0 {
		srv := api.NewServer(cfg.StatusPort, runner.RunID().String(), tracker)
		go func() {
			if err := srv.Start(); err != nil {
				slog.Error("status server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sum, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d messages from %d channels (%d rows stored) in %s\n",
		sum.Messages, sum.Channels, sum.StoredRows, sum.Duration.Round(time.Millisecond))
	fmt.Println("All done!")
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Stdout carries the progress line.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
