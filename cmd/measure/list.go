// ABOUTME: CLI command for listing measurements.
// ABOUTME: Supports filtering by type and limiting results.
package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/models"
	"github.com/spf13/cobra"
)

var (
	listType  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List measurements",
	Long: `List recent measurements, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  TYPE  VALUE  (COMMENT)  AGE

  The ID is an 8-character prefix you can use with delete and edit.

EXAMPLES:

  measure list                   # Last 20 measurements (all types)
  measure list --type waist      # Only waist entries
  measure list -t weight -n 50   # Last 50 weights`,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName := strings.ToUpper(listType)
		if typeName != "" {
			if _, err := catalog.ByName(typeName); err != nil {
				return fmt.Errorf("unknown measure type: %s", listType)
			}
		}

		ms, err := repo.ListMeasurements(cmd.Context(), typeName, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list measurements: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ms) == 0 {
			fmt.Fprintln(out, "No measurements found.")
			return nil
		}

		metric := cfg.IsMetric()
		faint := color.New(color.Faint)
		for _, m := range ms {
			fmt.Fprintln(out, formatListLine(m, metric, faint))
		}
		return nil
	},
}

func formatListLine(m *models.Measurement, metric bool, faint *color.Color) string {
	comment := ""
	if m.Comment != "" {
		comment = faint.Sprintf(" (%s)", truncate(m.Comment, 30))
	}
	return fmt.Sprintf("%s %s %s %s%s %s",
		faint.Sprint(m.ID.String()[:8]),
		faint.Sprint(m.Timestamp.Format("2006-01-02 15:04")),
		padRight(m.TypeName(), 10),
		m.FormatWithUnit(metric),
		comment,
		faint.Sprint(humanize.Time(m.Timestamp)))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by measure type")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}
