package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meridianbank/provisiond/config"
	"github.com/meridianbank/provisiond/errors"
	"github.com/meridianbank/provisiond/flags"
	"github.com/meridianbank/provisiond/logger"
)

// FlagsCmd manages job control flags
var FlagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Manage job control flags (kill switches)",
	Long: `Manage job control flags.

Every provisioning job checks its flag before running. A disabled flag
makes the job report as skipped with zero side effects. A region-specific
flag overrides the region-wide default.

Examples:
  provisiond flags ls                               # List all flags
  provisiond flags ls --region SIT2                 # Flags effective in SIT2
  provisiond flags set dda_mining_p off             # Disable everywhere
  provisiond flags set cca_sdg_b on --region UAT1   # Enable in one region`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var flagsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List job control flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, _ := cmd.Flags().GetString("region")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		gate := flags.NewGate(flags.NewStore(database), logger.Logger)
		list, err := gate.List(cmd.Context(), region)
		if err != nil {
			return errors.Wrap(err, "failed to list flags")
		}

		if len(list) == 0 {
			fmt.Println("No job control flags found.")
			return nil
		}

		fmt.Printf("%-24s %-8s %-8s %-12s %s\n", "JOB NAME", "REGION", "ENABLED", "UPDATED BY", "COMMENT")
		for _, f := range list {
			regionLabel := f.Region
			if regionLabel == flags.RegionAll {
				regionLabel = "(all)"
			}
			fmt.Printf("%-24s %-8s %-8t %-12s %s\n",
				f.JobName, regionLabel, f.Enabled, f.UpdatedBy, f.Comment)
		}
		return nil
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "set <job-name> <on|off>",
	Short: "Enable or disable a job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobName := args[0]

		var enabled bool
		switch args[1] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return errors.Newf("expected 'on' or 'off', got %q", args[1])
		}

		region, _ := cmd.Flags().GetString("region")
		comment, _ := cmd.Flags().GetString("comment")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()

		updatedBy := os.Getenv("USER")
		if updatedBy == "" {
			updatedBy = "operator"
		}

		gate := flags.NewGate(flags.NewStore(database), logger.Logger)
		if err := gate.SetEnabled(cmd.Context(), jobName, region, enabled, updatedBy, comment); err != nil {
			return errors.Wrapf(err, "failed to update flag %s", jobName)
		}

		scope := region
		if scope == "" {
			scope = "all regions"
		}
		fmt.Printf("Flag %s set to %s for %s\n", jobName, args[1], scope)
		return nil
	},
}

func init() {
	flagsLsCmd.Flags().String("region", "", "Show flags effective in one region (default: all rows)")
	flagsSetCmd.Flags().String("region", "", "Limit the flag to one region (default: region-wide)")
	flagsSetCmd.Flags().String("comment", "", "Reason for the change, stored with the flag")

	FlagsCmd.AddCommand(flagsLsCmd)
	FlagsCmd.AddCommand(flagsSetCmd)
}
