// ABOUTME: CLI commands for measure types: list, set, import and export.
// ABOUTME: Custom types are persisted as tracking rows and merged into the catalog.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/config"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/units"
	"github.com/spf13/cobra"
)

var (
	typeUnit   string
	typeMax    float64
	typeSmall  float64
	typeBig    float64
	typeColor  string
	typeTrack  bool
	typeOutput string
)

var typesCmd = &cobra.Command{
	Use:     "types",
	Aliases: []string{"type", "t"},
	Short:   "Manage measure types",
	Long: `Manage the measure types you can record.

Built-in types are WEIGHT, BODYFAT, WAIST and HEIGHT. Custom types carry
their own unit (CM, KG or PERCENT), maximum and step sizes.

TOML FORMAT (types import / types export):

  [[type]]
  name = "NECK"
  unit = "CM"
  max = 80
  small_step = 0.5
  big_step = 2
  color = "#336699"
  enabled = true`,
}

var typesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List measure types",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		metric := cfg.IsMetric()
		faint := color.New(color.Faint)
		for _, t := range catalog.Types() {
			tracked := faint.Sprint("off")
			if cfg.IsEnabled(t.Name) {
				tracked = color.GreenString("on")
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				padRight(t.Name, 10),
				padRight(t.Unit.Label(metric), 4),
				faint.Sprintf("max %s, steps %g/%g", models.NewValue(t.Unit, t.MaxValue).FormatWithUnit(metric), t.SmallStep, t.BigStep),
				tracked)
		}
		return nil
	},
}

var typesSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a custom type",
	Long: `Create or update a measure type.

For built-in types only --max, --small, --big and --track apply; the unit
and color stay fixed.

EXAMPLES:

  measure types set neck --unit cm --max 80 --small 0.5 --big 2 --track
  measure types set waist --track=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := strings.ToUpper(args[0])
		flags := cmd.Flags()

		def := config.TypeDef{Name: name, Unit: typeUnit, Max: typeMax, SmallStep: typeSmall, BigStep: typeBig, Color: typeColor, Enabled: true}
		if existing, err := catalog.ByName(name); err == nil {
			def = config.TypeDef{
				Name:      name,
				Unit:      existing.Unit.String(),
				Max:       existing.MaxValue,
				SmallStep: existing.SmallStep,
				BigStep:   existing.BigStep,
				Color:     existing.Color,
				Enabled:   existing.Enabled,
			}
			if flags.Changed("unit") && !strings.EqualFold(typeUnit, def.Unit) {
				return fmt.Errorf("cannot change the unit of %s", name)
			}
			if flags.Changed("max") {
				def.Max = typeMax
			}
			if flags.Changed("small") {
				def.SmallStep = typeSmall
			}
			if flags.Changed("big") {
				def.BigStep = typeBig
			}
			if flags.Changed("color") {
				def.Color = typeColor
			}
		}
		if flags.Changed("track") {
			def.Enabled = typeTrack
		}

		row, err := def.Row()
		if err != nil {
			return err
		}
		saved, err := repo.SaveType(ctx, row)
		if err != nil {
			return fmt.Errorf("failed to save type: %w", err)
		}
		catalog.Load([]models.TypeRow{saved})

		if flags.Changed("track") {
			err := updateConfig(func(c *config.Config) error {
				c.SetEnabled(name, typeTrack)
				return nil
			})
			if err != nil {
				return err
			}
			cfg.SetEnabled(name, typeTrack)
		}

		color.Green("✓ Saved type %s", name)
		return nil
	},
}

var typesImportCmd = &cobra.Command{
	Use:   "import <file.toml>",
	Short: "Import custom types from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := config.LoadTypes(args[0])
		if err != nil {
			return fmt.Errorf("failed to read types: %w", err)
		}
		for _, row := range rows {
			if existing, err := catalog.ByName(row.Name); err == nil && existing.Unit != row.Unit {
				return fmt.Errorf("type %s already exists with unit %s", row.Name, existing.Unit)
			}
			saved, err := repo.SaveType(cmd.Context(), row)
			if err != nil {
				return fmt.Errorf("failed to save type %s: %w", row.Name, err)
			}
			catalog.Load([]models.TypeRow{saved})
		}
		color.Green("✓ Imported %d types", len(rows))
		return nil
	},
}

var typesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export custom types as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		builtin := make(map[string]bool)
		for _, t := range catalog.Builtins() {
			builtin[t.Name] = true
		}
		var rows []models.TypeRow
		for _, t := range catalog.Types() {
			if !builtin[t.Name] {
				rows = append(rows, t.Row())
			}
		}

		w := cmd.OutOrStdout()
		if typeOutput != "" {
			f, err := os.OpenFile(typeOutput, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", typeOutput, err)
			}
			defer f.Close()
			w = f
		}
		return config.WriteTypes(w, rows)
	},
}

func init() {
	typesSetCmd.Flags().StringVar(&typeUnit, "unit", string(units.LengthCM), "unit: CM, KG or PERCENT")
	typesSetCmd.Flags().Float64Var(&typeMax, "max", 0, "largest accepted value (metric)")
	typesSetCmd.Flags().Float64Var(&typeSmall, "small", 1, "small step")
	typesSetCmd.Flags().Float64Var(&typeBig, "big", 5, "big step")
	typesSetCmd.Flags().StringVar(&typeColor, "color", "", "chart color (#rrggbb)")
	typesSetCmd.Flags().BoolVar(&typeTrack, "track", true, "track this type")
	typesExportCmd.Flags().StringVarP(&typeOutput, "output", "o", "", "write to file instead of stdout")

	typesCmd.AddCommand(typesListCmd, typesSetCmd, typesImportCmd, typesExportCmd)
	rootCmd.AddCommand(typesCmd)
}
