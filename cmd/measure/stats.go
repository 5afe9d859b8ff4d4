// ABOUTME: CLI command showing weight-loss statistics.
// ABOUTME: Prints BMI with category, loss, distance to goal, daily average and goal date.
package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/stats"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"s"},
	Short:   "Show progress statistics",
	Long: `Show weight-loss statistics computed from the first and latest weight.

  Start / Latest    first and most recent weight
  Loss              start minus latest (negative is a gain)
  To goal           latest minus the configured goal
  Daily average     loss divided by elapsed whole days
  Goal date         projected from the daily average
  BMI               with the configured height or the latest HEIGHT entry
  Waist/height      when waist tracking is enabled`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := stats.Load(cmd.Context(), repo, catalog, cfg)
		if errors.Is(err, models.ErrNoData) {
			fmt.Fprintln(cmd.OutOrStdout(), models.Describe(models.ErrNoData))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load statistics: %w", err)
		}
		printStats(cmd.OutOrStdout(), s, cfg.IsMetric(), cfg.GoalKG(), time.Now())
		return nil
	},
}

// printStats writes the statistics table. Goal rows appear only when goalKG is set.
func printStats(w io.Writer, s *stats.Statistics, metric bool, goalKG float64, now time.Time) {
	faint := color.New(color.Faint)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", faint.Sprint(padRight(label, 14)), value)
	}

	row("Start", fmt.Sprintf("%s %s", s.Start().FormatWithUnit(metric),
		faint.Sprintf("(%s)", humanize.Time(s.Start().Timestamp))))
	row("Latest", s.Latest().FormatWithUnit(metric))
	row("Loss", s.Loss().FormatWithUnit(metric))
	if goalKG > 0 {
		row("Goal", s.Goal().FormatWithUnit(metric))
		row("To goal", s.ToGoal().FormatWithUnit(metric))
	}
	row("Days", strconv.Itoa(s.ElapsedDays()))
	row("Daily average", s.AverageDailyLoss().FormatWithUnit(metric))
	if goalKG > 0 {
		if eta, ok := s.EstimatedGoalDate(now); ok {
			row("Goal date", fmt.Sprintf("%s %s", eta.Format("2006-01-02"),
				faint.Sprintf("(%s)", humanize.Time(eta))))
		} else {
			row("Goal date", faint.Sprint("not moving towards goal"))
		}
	}

	if bmi := s.CurrentBMI(); bmi > 0 {
		value := strconv.FormatFloat(bmi, 'f', 1, 64)
		if c, ok := stats.Classify(bmi); ok {
			value += " " + categoryColor(c).Sprint(c.Name)
		}
		row("BMI", value)
	} else {
		row("BMI", faint.Sprint("set a height: measure config set height <value>"))
	}

	if wthr, err := s.WaistToHeight(); err == nil {
		row("Waist/height", strconv.FormatFloat(wthr, 'f', 2, 64))
	}
}

// categoryColor renders a category in its hex color.
func categoryColor(c stats.Category) *color.Color {
	hex := strings.TrimPrefix(c.Color, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.New(color.Reset)
	}
	return color.RGB(int(v>>16&0xff), int(v>>8&0xff), int(v&0xff))
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
