// ABOUTME: CLI command for editing a stored measurement.
// ABOUTME: Changes value, steps it up or down, and replaces date or time separately.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/models"
	"github.com/spf13/cobra"
)

var (
	editValue    string
	editInc      int
	editDec      int
	editBig      bool
	editDate     string
	editTime     string
	editComment  string
	editImperial bool
)

var editCmd = &cobra.Command{
	Use:     "edit <id>",
	Aliases: []string{"e"},
	Short:   "Edit a measurement",
	Long: `Edit a measurement by its ID or ID prefix.

--inc and --dec step the value by the type's small step (or big step with
--big) as many times as given. --date and --time replace one part of the
timestamp and keep the other.

EXAMPLES:

  measure edit abc12345 --value 81.9
  measure edit abc1 --inc 2             # +0.2 kg on a weight
  measure edit abc1 --dec 1 --big       # -1 kg
  measure edit abc1 --date 2024-05-02 --time 07:15
  measure edit abc1 --comment ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := repo.GetMeasurement(ctx, args[0])
		if err != nil {
			return fmt.Errorf("measurement not found: %s: %w", args[0], err)
		}

		metric := displayMetric(editImperial)
		if err := applyEdit(cmd, m, metric); err != nil {
			return err
		}

		if err := repo.UpdateMeasurement(ctx, m); err != nil {
			return fmt.Errorf("failed to update measurement: %w", err)
		}

		color.Green("✓ Updated %s", m.Type.Label)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s\n",
			color.New(color.Faint).Sprint(m.ID.String()[:8]),
			color.New(color.Faint).Sprint(m.Timestamp.Format("2006-01-02 15:04")),
			m.FormatWithUnit(metric))
		return nil
	},
}

func applyEdit(cmd *cobra.Command, m *models.Measurement, metric bool) error {
	flags := cmd.Flags()
	if flags.Changed("value") {
		if err := m.ParseAndSetValue(editValue, metric); err != nil {
			return fmt.Errorf("%s (%w)", models.Describe(err), err)
		}
	}
	for i := 0; i < editInc; i++ {
		m.StepUp(metric, editBig)
	}
	for i := 0; i < editDec; i++ {
		m.StepDown(metric, editBig)
	}
	if v := m.Value(true); v < 0 {
		return fmt.Errorf("%s (%w)", models.Describe(models.ErrSubZero), models.ErrSubZero)
	} else if v > m.Type.MaxValue {
		return fmt.Errorf("%s (%w)", models.Describe(models.ErrTooLarge), models.ErrTooLarge)
	}

	if flags.Changed("date") {
		d, err := time.ParseInLocation("2006-01-02", editDate, time.Local)
		if err != nil {
			return fmt.Errorf("%w: %s", models.ErrDateParse, editDate)
		}
		m.UpdateDate(d.Year(), d.Month(), d.Day())
	}
	if flags.Changed("time") {
		t, err := time.Parse("15:04", editTime)
		if err != nil {
			return fmt.Errorf("%w: %s", models.ErrDateParse, editTime)
		}
		m.UpdateTime(t.Hour(), t.Minute())
	}
	if flags.Changed("comment") {
		m.Comment = editComment
	}
	return nil
}

func init() {
	editCmd.Flags().StringVar(&editValue, "value", "", "new value")
	editCmd.Flags().IntVar(&editInc, "inc", 0, "step the value up this many times")
	editCmd.Flags().IntVar(&editDec, "dec", 0, "step the value down this many times")
	editCmd.Flags().BoolVar(&editBig, "big", false, "use the big step for --inc/--dec")
	editCmd.Flags().StringVar(&editDate, "date", "", "new date (YYYY-MM-DD), keeps the time")
	editCmd.Flags().StringVar(&editTime, "time", "", "new time (HH:MM), keeps the date")
	editCmd.Flags().StringVarP(&editComment, "comment", "c", "", "new comment")
	editCmd.Flags().BoolVar(&editImperial, "imperial", false, "read --value and steps as lb/in")
	rootCmd.AddCommand(editCmd)
}
