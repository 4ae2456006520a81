package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianbank/provisiond/cmd/provisiond/commands"
	"github.com/meridianbank/provisiond/logger"
)

var rootCmd = &cobra.Command{
	Use:   "provisiond",
	Short: "provisiond - test account provisioning and quota orchestration",
	Long: `provisiond - scheduled provisioning of test financial accounts.

provisiond keeps pools of test deposit (DDA) and credit card (CCA) accounts
topped up to configured thresholds across environments, on recurring
schedules, with per-job kill switches.

Available commands:
  serve  - Run the provisioning daemon (scheduler + job execution)
  jobs   - Inspect and run provisioning jobs
  flags  - Manage job control flags (kill switches)
  db     - Database operations and statistics

Examples:
  provisiond serve                          # Run the daemon in foreground
  provisiond jobs run dda_threshold_p       # Run one job immediately
  provisiond flags ls                       # List job control flags
  provisiond flags set dda_mining_p off     # Disable a job
  provisiond db stats                       # Show account pool statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.FlagsCmd)
	rootCmd.AddCommand(commands.DbCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
