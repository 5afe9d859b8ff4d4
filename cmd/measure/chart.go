// ABOUTME: CLI command charting one measure type over a window of days.
// ABOUTME: Writes an SVG file with -o, otherwise prints a sparkline.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/chart"
	"github.com/harperreed/measure/internal/config"
	"github.com/spf13/cobra"
)

var (
	chartDays   int
	chartType   string
	chartOutput string
	chartWidth  int
	chartHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart a measure type",
	Long: `Chart the last --days days of a measure type.

Without --type the configured display field is charted. Choosing a type
with --type makes it the new display field.

EXAMPLES:

  measure chart                         # Sparkline of the display field, 30 days
  measure chart --type waist --days 90
  measure chart -o weight.svg           # SVG line chart with goal line`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := cfg.GetDisplayField()
		if chartType != "" {
			name = strings.ToUpper(chartType)
		}
		t, err := catalog.ByName(name)
		if err != nil {
			return err
		}
		if chartType != "" && name != cfg.GetDisplayField() {
			err := updateConfig(func(c *config.Config) error {
				c.SetDisplayField(name)
				return nil
			})
			if err != nil {
				return err
			}
			cfg.SetDisplayField(name)
		}

		metric := cfg.IsMetric()
		series, err := chart.Load(cmd.Context(), repo, t, time.Now(), chartDays, metric, cfg.GoalKG())
		if err != nil {
			return err
		}

		if chartOutput != "" {
			f, err := os.OpenFile(chartOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", chartOutput, err)
			}
			defer f.Close()
			opts := chart.Options{Width: chartWidth, Height: chartHeight, Title: t.Label}
			if err := chart.RenderSVG(f, series, opts); err != nil {
				return fmt.Errorf("failed to render chart: %w", err)
			}
			color.Green("✓ Wrote %s chart to %s", t.Label, chartOutput)
			return nil
		}

		out := cmd.OutOrStdout()
		if series.Empty() {
			fmt.Fprintf(out, "No %s measurements in the last %d days.\n", t.Label, chartDays)
			return nil
		}
		faint := color.New(color.Faint)
		unit := t.Unit.Label(metric)
		fmt.Fprintf(out, "%s %s\n", t.Label, faint.Sprintf("(%d days, %d-%d %s)", chartDays, series.Floor, series.Ceiling, unit))
		fmt.Fprintf(out, "%s %s %s\n",
			faint.Sprint(series.DateLabel(0, 1)),
			chart.Sparkline(series),
			faint.Sprint(series.DateLabel(1, 1)))
		return nil
	},
}

func init() {
	chartCmd.Flags().IntVarP(&chartDays, "days", "d", 30, "window in days")
	chartCmd.Flags().StringVarP(&chartType, "type", "t", "", "measure type (defaults to the display field)")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "write an SVG file")
	chartCmd.Flags().IntVar(&chartWidth, "width", 800, "SVG width")
	chartCmd.Flags().IntVar(&chartHeight, "height", 400, "SVG height")
	rootCmd.AddCommand(chartCmd)
}
