// ABOUTME: CLI command for deleting measurements.
// ABOUTME: Supports deletion by full ID or ID prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a measurement",
	Long: `Delete a measurement by its ID or ID prefix.

The ID prefix is shown in the first column of 'measure list' output.
If the prefix matches several measurements, nothing is deleted.

EXAMPLES:

  measure delete abc12345
  measure rm abc1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := repo.GetMeasurement(ctx, args[0])
		if err != nil {
			return fmt.Errorf("measurement not found: %s: %w", args[0], err)
		}

		if err := repo.DeleteMeasurement(ctx, m.ID.String()); err != nil {
			return fmt.Errorf("failed to delete measurement: %w", err)
		}

		color.Yellow("✗ Deleted %s", m.Type.Label)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n",
			color.New(color.Faint).Sprint(m.ID.String()[:8]),
			m.FormatWithUnit(cfg.IsMetric()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
