// ABOUTME: CLI command printing the BMI table for a height.
// ABOUTME: Lists each category with its BMI range and the matching weight range.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/stats"
	"github.com/spf13/cobra"
)

var bmiHeight string

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "Show the BMI table",
	Long: `Show the BMI categories with the weight range each spans at your height.

The height comes from --height (in your unit system), the configured height,
or the latest HEIGHT measurement, in that order. The current category is
marked when a weight has been recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		metric := cfg.IsMetric()
		heightType := catalog.MustByName(models.TypeHeight)

		height := heightType.Zero()
		switch {
		case bmiHeight != "":
			if err := height.ParseAndSetValue(bmiHeight, metric); err != nil {
				return fmt.Errorf("%s (%w)", models.Describe(err), err)
			}
		case cfg.HeightCM() > 0:
			height.SetValue(cfg.HeightCM(), true)
		default:
			h, err := repo.LatestMeasurement(ctx, models.TypeHeight)
			if err != nil {
				return errors.New("no height known: use --height or 'measure config set height <value>'")
			}
			height = h
		}

		var current float64
		if w, err := repo.LatestMeasurement(ctx, models.TypeWeight); err == nil {
			current = stats.BMI(w, height)
		} else if !errors.Is(err, models.ErrNoData) {
			return fmt.Errorf("failed to load latest weight: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMI table for %s\n\n", height.FormatWithUnit(metric))
		for _, row := range stats.Table(height) {
			marker := "  "
			if current > 0 && row.Contains(current) {
				marker = "→ "
			}
			weights := fmt.Sprintf("%s - %s", row.MinWeight.Format(metric), row.MaxWeight.FormatWithUnit(metric))
			switch {
			case row.Floor <= 0:
				weights = "< " + row.MaxWeight.FormatWithUnit(metric)
			case row.Ceiling >= 100:
				weights = "> " + row.MinWeight.FormatWithUnit(metric)
			}
			fmt.Fprintf(out, "%s%s %s %s\n", marker,
				categoryColor(row.Category).Sprint(padRight(row.Name, 12)),
				padRight(row.RangeText(), 10),
				weights)
		}
		if current > 0 {
			fmt.Fprintf(out, "\n%s %.1f\n", color.New(color.Faint).Sprint("Current BMI"), current)
		}
		return nil
	},
}

func init() {
	bmiCmd.Flags().StringVar(&bmiHeight, "height", "", "height in your unit system")
	rootCmd.AddCommand(bmiCmd)
}
