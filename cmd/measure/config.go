// ABOUTME: CLI commands to show and change measure settings.
// ABOUTME: Settings live in a JSON file under XDG_CONFIG_HOME and never need the database.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or change settings",
	Annotations: map[string]string{noStorage: "true"},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the config file path and effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.New(color.Faint).Sprint(config.GetConfigPath()))
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save the config file.

KEYS:

  ` + strings.Join(config.Keys, "\n  ") + `

Goal and height are read in the current unit system, so set units first.

EXAMPLES:

  measure config set units imperial
  measure config set goal 165
  measure config set track_waist true
  measure config set backup.bucket my-backups`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := updateConfig(func(c *config.Config) error {
			return c.Set(args[0], args[1])
		})
		if err != nil {
			return err
		}
		color.Green("✓ Set %s = %s", strings.ToLower(args[0]), args[1])
		return nil
	},
}

// updateConfig applies fn to the config file as stored, without environment
// overrides, and saves it.
func updateConfig(fn func(*config.Config) error) error {
	fileCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := fn(fileCfg); err != nil {
		return err
	}
	if err := fileCfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
