package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/errors"
)

// DbCmd groups database operations
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database operations and statistics",
	Long: `Database operations and statistics.

Examples:
  provisiond db stats       # Show account pool statistics
  provisiond db migrate     # Apply pending migrations`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show account pool statistics",
	RunE:  runDbStats,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// openDatabase migrates as part of opening
		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Printf("Database at %s is up to date\n", cfg.Database.Path)
		return nil
	},
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := openDatabase(cfg, "")
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	var totalAccounts, scheduledJobs, executions int
	if err := database.QueryRow(`SELECT COUNT(*) FROM reserved_accounts`).Scan(&totalAccounts); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if err := database.QueryRow(`SELECT COUNT(*) FROM scheduled_jobs`).Scan(&scheduledJobs); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to count scheduled jobs: %w", err)
	}
	if err := database.QueryRow(`SELECT COUNT(*) FROM job_executions`).Scan(&executions); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to count executions: %w", err)
	}

	fmt.Printf("Database Statistics\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:    %s\n", cfg.Database.Path)
	fmt.Printf("Total Accounts:   %d\n", totalAccounts)
	fmt.Printf("Scheduled Jobs:   %d\n", scheduledJobs)
	fmt.Printf("Executions:       %d\n", executions)
	fmt.Println()

	rows, err := database.Query(`
		SELECT product_code, region, source, status, COUNT(*)
		FROM reserved_accounts
		GROUP BY product_code, region, source, status
		ORDER BY region, product_code, source
	`)
	if err != nil {
		return fmt.Errorf("failed to query account pools: %w", err)
	}
	defer rows.Close()

	fmt.Printf("Account Pools:\n")
	fmt.Printf("%-8s %-8s %-8s %-8s %s\n", "PRODUCT", "REGION", "SOURCE", "STATUS", "COUNT")

	var hasPools bool
	for rows.Next() {
		var productCode, region, source, status string
		var count int
		if err := rows.Scan(&productCode, &region, &source, &status, &count); err != nil {
			return fmt.Errorf("failed to scan pool row: %w", err)
		}
		hasPools = true
		fmt.Printf("%-8s %-8s %-8s %-8s %d\n", productCode, region, source, status, count)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed reading pool rows: %w", err)
	}
	if !hasPools {
		fmt.Println("(no accounts provisioned yet)")
	}

	return nil
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbMigrateCmd)
}
