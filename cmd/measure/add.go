// ABOUTME: CLI command for adding measurements.
// ABOUTME: Defaults to WEIGHT and supports fast input from the previous entry.
package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/models"
	"github.com/spf13/cobra"
)

var (
	addAt       string
	addComment  string
	addImperial bool
)

var addCmd = &cobra.Command{
	Use:     "add [type] <value>",
	Aliases: []string{"a"},
	Short:   "Add a measurement",
	Long: `Add a measurement. The type defaults to WEIGHT.

Values are read in your configured unit system; --imperial reads lb/in for
this entry only. With fast_input enabled, 'measure add <type>' without a
value repeats the previous entry of that type.

EXAMPLES:

  measure add 82.5
  measure add weight 181.5 --imperial
  measure add waist 91 --at "2024-12-14 07:00"
  measure add bodyfat 21.3 --comment "scale at gym"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, raw := splitAddArgs(args)

		t, err := catalog.ByName(typeName)
		if err != nil {
			return err
		}

		metric := displayMetric(addImperial)
		m := models.NewMeasurement(t)
		if raw == "" {
			if !cfg.FastInput {
				return errors.New(models.Describe(models.ErrEmptyInput))
			}
			prev, err := repo.LatestMeasurement(cmd.Context(), t.Name)
			if err != nil {
				return fmt.Errorf("no previous %s to repeat: %w", t.Label, err)
			}
			m.SetValue(prev.Value(true), true)
		} else if err := m.ParseAndSetValue(raw, metric); err != nil {
			return fmt.Errorf("%s (%w)", models.Describe(err), err)
		}

		if addAt != "" {
			ts, err := parseTime(addAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", addAt)
			}
			m.WithTimestamp(ts)
		}
		if addComment != "" {
			m.WithComment(addComment)
		}

		if err := repo.CreateMeasurement(cmd.Context(), m); err != nil {
			return fmt.Errorf("failed to create measurement: %w", err)
		}

		color.Green("✓ Added %s", t.Label)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n",
			color.New(color.Faint).Sprint(m.ID.String()[:8]),
			m.FormatWithUnit(metric))
		return nil
	},
}

// splitAddArgs treats a lone numeric argument as a WEIGHT value.
func splitAddArgs(args []string) (typeName, raw string) {
	if len(args) == 2 {
		return strings.ToUpper(args[0]), args[1]
	}
	if looksNumeric(args[0]) {
		return models.TypeWeight, args[0]
	}
	return strings.ToUpper(args[0]), ""
}

func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

// displayMetric is the unit system for this invocation.
func displayMetric(forceImperial bool) bool {
	return cfg.IsMetric() && !forceImperial
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	addCmd.Flags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	addCmd.Flags().StringVarP(&addComment, "comment", "c", "", "comment for the measurement")
	addCmd.Flags().BoolVar(&addImperial, "imperial", false, "read the value as lb/in")
	rootCmd.AddCommand(addCmd)
}
