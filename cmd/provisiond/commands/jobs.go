package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/internal/util"
	"github.com/meridianbank/provisiond/job"
	"github.com/meridianbank/provisiond/scheduler"
)

// JobsCmd groups provisioning job operations
var JobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and run provisioning jobs",
	Long: `Inspect and run provisioning jobs.

Examples:
  provisiond jobs types                         # List known job types
  provisiond jobs ls                            # List scheduled jobs
  provisiond jobs run dda_threshold_p           # Run one job now
  provisiond jobs run cca_mining --count 5      # Run with explicit count
  provisiond jobs pause cca_mining              # Skip a job on future ticks
  provisiond jobs resume cca_mining             # Put a paused job back on schedule
  provisiond jobs history --limit 10            # Show recent executions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var jobsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List known job types",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		factory := buildFactory(cfg, database)
		for _, jobType := range factory.Types() {
			fmt.Println(jobType)
		}
		return nil
	},
}

var jobsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List scheduled jobs with their next run times",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		store := scheduler.NewStore(database)
		jobs, err := store.ListAll(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to list scheduled jobs")
		}

		if len(jobs) == 0 {
			fmt.Println("No scheduled jobs registered. Run 'provisiond serve' once to register the catalog.")
			return nil
		}

		fmt.Printf("%-28s %-6s %-8s %-12s %s\n", "JOB TYPE", "REGION", "STATE", "INTERVAL", "NEXT RUN")
		for _, s := range jobs {
			fmt.Printf("%-28s %-6s %-8s %-12s %s\n",
				s.JobType, s.Region, s.State,
				fmt.Sprintf("%ds", s.IntervalSeconds),
				s.NextRunAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <job-type>",
	Short: "Run one provisioning job immediately",
	Long: `Run one provisioning job immediately, outside the schedule.

The job control flag is still honored; a disabled job reports as skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobType := args[0]
		region, _ := cmd.Flags().GetString("region")
		count, _ := cmd.Flags().GetInt("count")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if region == "" {
			region = cfg.Scheduler.DefaultRegion
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		factory := buildFactory(cfg, database)
		runnable, err := factory.Create(jobType)
		if err != nil {
			return err
		}

		var countOverride *int
		if cmd.Flags().Changed("count") {
			countOverride = util.Ptr(count)
		}

		summary, err := runnable.Execute(context.Background(), region, countOverride)
		if err != nil {
			return errors.Wrapf(err, "job %s failed", jobType)
		}

		fmt.Printf("Job:       %s\n", jobType)
		fmt.Printf("Region:    %s\n", region)
		fmt.Printf("Status:    %s\n", summary.Status)
		fmt.Printf("Requested: %d\n", summary.Requested)
		fmt.Printf("Succeeded: %d\n", summary.Succeeded)
		fmt.Printf("Failed:    %d\n", summary.Failed)

		if summary.Status == job.StatusSkipped {
			fmt.Println("\nJob is disabled by its control flag. Enable with:")
			fmt.Printf("  provisiond flags set %s on --region %s\n", jobType, region)
		}
		return nil
	},
}

var jobsPauseCmd = &cobra.Command{
	Use:   "pause <job-type>",
	Short: "Pause a scheduled job",
	Long: `Pause a scheduled job so the ticker skips it.

The registration stays in place; resume restores the schedule.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScheduledJobState(cmd, args[0], scheduler.StatePaused)
	},
}

var jobsResumeCmd = &cobra.Command{
	Use:   "resume <job-type>",
	Short: "Resume a paused scheduled job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setScheduledJobState(cmd, args[0], scheduler.StateActive)
	},
}

func setScheduledJobState(cmd *cobra.Command, jobType, state string) error {
	region, _ := cmd.Flags().GetString("region")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if region == "" {
		region = cfg.Scheduler.DefaultRegion
	}

	database, err := openDatabase(cfg, "")
	if err != nil {
		return err
	}
	defer database.Close()

	store := scheduler.NewStore(database)
	jobs, err := store.ListAll(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to list scheduled jobs")
	}

	for _, s := range jobs {
		if s.JobType != jobType || s.Region != region {
			continue
		}
		if err := store.UpdateState(cmd.Context(), s.ID, state); err != nil {
			return errors.Wrapf(err, "failed to update job %s in %s", jobType, region)
		}
		fmt.Printf("Job %s in %s is now %s\n", jobType, region, state)
		return nil
	}
	return errors.Newf("no scheduled job %s in region %s, see 'provisiond jobs ls'", jobType, region)
}

var jobsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent job executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		execStore := scheduler.NewExecutionStore(database)
		executions, err := execStore.ListRecent(cmd.Context(), "", limit)
		if err != nil {
			return errors.Wrap(err, "failed to list executions")
		}

		if len(executions) == 0 {
			fmt.Println("No executions recorded yet.")
			return nil
		}

		fmt.Printf("%-28s %-6s %-10s %5s %5s %5s  %s\n", "JOB TYPE", "REGION", "STATUS", "REQ", "OK", "FAIL", "STARTED")
		for _, e := range executions {
			fmt.Printf("%-28s %-6s %-10s %5d %5d %5d  %s\n",
				e.JobType, e.Region, e.Status, e.Requested, e.Succeeded, e.Failed, e.StartedAt)
		}
		return nil
	},
}

func init() {
	jobsRunCmd.Flags().String("region", "", "Target region (default: configured default region)")
	jobsRunCmd.Flags().Int("count", 0, "Explicit provisioning count, bypassing threshold calculation")
	jobsPauseCmd.Flags().String("region", "", "Target region (default: configured default region)")
	jobsResumeCmd.Flags().String("region", "", "Target region (default: configured default region)")
	jobsHistoryCmd.Flags().Int("limit", 20, "Number of recent executions to show")

	JobsCmd.AddCommand(jobsTypesCmd)
	JobsCmd.AddCommand(jobsLsCmd)
	JobsCmd.AddCommand(jobsRunCmd)
	JobsCmd.AddCommand(jobsPauseCmd)
	JobsCmd.AddCommand(jobsResumeCmd)
	JobsCmd.AddCommand(jobsHistoryCmd)
}
