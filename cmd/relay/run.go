package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bridgehq/relay/pkg/config"
	"bridgehq/relay/pkg/proxy/handlers"
	"bridgehq/relay/pkg/server"
	"bridgehq/relay/pkg/telemetry/logging"
	"bridgehq/relay/pkg/telemetry/metrics"
	"bridgehq/relay/pkg/usage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

Examples:
  # Start with default config
  relay run

  # Start with custom config
  relay run --config /etc/relay/config.yaml

  # Override listen address
  relay run --listen 0.0.0.0:8080

  # Validate config without starting the server
  relay run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload configuration on file change")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	store, err := config.NewStore(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := store.Current()

	// Flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, nil); err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := metrics.New(cfg.Telemetry.Metrics)

	var usageStore *usage.Store
	if cfg.Usage.Enabled {
		usageStore, err = usage.Open(cfg.Usage.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open usage store: %w", err)
		}
		defer usageStore.Close()

		pruner := usage.NewPruner(usageStore, cfg.Usage.RetentionDays, cfg.Usage.PruneSchedule)
		if err := pruner.Start(ctx); err != nil {
			return err
		}
	}

	if runFlags.watch {
		go func() {
			if err := store.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("config watcher stopped", "error", err)
			}
		}()
	}

	h := handlers.New(store, m, usageStore)
	return server.New(store, h, m).Start(ctx)
}
