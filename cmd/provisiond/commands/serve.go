package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/logger"
	"github.com/meridianbank/provisiond/regions"
	"github.com/meridianbank/provisiond/scheduler"
)

// ServeCmd runs the provisioning daemon
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the provisioning daemon",
	Long: `Run the provisioning daemon in foreground mode.

The daemon will:
- Register the job catalog for every known region
- Tick the scheduler and execute due jobs
- Record an execution history row per run
- Run until interrupted (Ctrl+C) with graceful shutdown

Example:
  provisiond serve                 # Run with configured settings
  provisiond serve --workers 3     # Override provisioning concurrency`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			cfg.Provisioner.Workers = workers
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		factory := buildFactory(cfg, database)
		schedStore := scheduler.NewStore(database)
		execStore := scheduler.NewExecutionStore(database)

		registrar := scheduler.NewRegistrar(schedStore, regions.NewStore(database), cfg.Scheduler.DefaultRegion, logger.Logger)
		if err := registrar.Bootstrap(ctx); err != nil {
			return err
		}

		tickerCfg := scheduler.TickerConfig{
			Interval: time.Duration(cfg.Scheduler.TickerIntervalSeconds) * time.Second,
		}
		ticker := scheduler.NewTickerWithContext(ctx, schedStore, execStore, factory, tickerCfg, logger.Logger)
		if cfg.Scheduler.Enabled {
			ticker.Start()
		} else {
			logger.Logger.Warnw("Scheduler disabled in configuration, catalog registered but ticker idle")
		}

		fmt.Printf("provisiond started\n")
		fmt.Printf("  Database: %s\n", cfg.Database.Path)
		fmt.Printf("  Workers: %d\n", cfg.Provisioner.Workers)
		fmt.Printf("  Scheduler enabled: %t\n", cfg.Scheduler.Enabled)
		fmt.Printf("  Scheduler interval: %v\n", tickerCfg.Interval)
		fmt.Printf("\nPress Ctrl+C for graceful shutdown\n\n")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Printf("\nShutting down...\n")
		if cfg.Scheduler.Enabled {
			ticker.Stop()
		}
		cancel()

		fmt.Printf("provisiond stopped\n")
		return nil
	},
}

func init() {
	ServeCmd.Flags().Int("workers", 0, "Concurrent provisioning attempts per run (0 = use config)")
}
