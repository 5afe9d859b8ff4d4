// ABOUTME: Measure configuration management with backend selection.
// ABOUTME: Handles settings, user preferences, and the storage backend factory function.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/storage"
	"github.com/harperreed/measure/internal/units"
)

// Config stores measure tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "postgres".
	Backend string `json:"backend,omitempty" env:"MEASURE_BACKEND"`

	// DataDir is the root directory for data storage. SQLite puts measure.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/measure.
	DataDir string `json:"data_dir,omitempty" env:"MEASURE_DATA_DIR"`

	// PostgresDSN is used when Backend is "postgres".
	PostgresDSN string `json:"postgres_dsn,omitempty" env:"MEASURE_POSTGRES_DSN"`

	// Imperial switches display and input to lb/in.
	Imperial bool `json:"imperial,omitempty"`

	// Goal (kg) and Height (cm) are always stored metric.
	Goal   float64 `json:"goal_kg,omitempty"`
	Height float64 `json:"height_cm,omitempty"`

	// Tracking enables optional types by name. WEIGHT is always tracked.
	Tracking map[string]bool `json:"tracking,omitempty"`

	// FastInput makes add default to the previous value plus step when no value is given.
	FastInput bool `json:"fast_input,omitempty"`

	// DisplayField is the type shown by chart and stats by default.
	DisplayField string `json:"display_field,omitempty"`

	// TypesFile is a TOML file of custom measure types.
	TypesFile string `json:"types_file,omitempty" env:"MEASURE_TYPES_FILE"`

	Backup BackupConfig `json:"backup,omitempty"`
}

// BackupConfig points export uploads at an S3-compatible bucket.
type BackupConfig struct {
	Bucket       string `json:"bucket,omitempty" env:"MEASURE_BACKUP_BUCKET"`
	Prefix       string `json:"prefix,omitempty" env:"MEASURE_BACKUP_PREFIX"`
	Region       string `json:"region,omitempty" env:"MEASURE_BACKUP_REGION"`
	Endpoint     string `json:"endpoint,omitempty" env:"MEASURE_BACKUP_ENDPOINT"`
	PathStyle    bool   `json:"path_style,omitempty" env:"MEASURE_BACKUP_PATH_STYLE"`
	AgeRecipient string `json:"age_recipient,omitempty" env:"MEASURE_BACKUP_AGE_RECIPIENT"`
}

var _ models.Preferences = (*Config)(nil)

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// IsMetric reports whether values are shown and entered in metric units.
func (c *Config) IsMetric() bool {
	return !c.Imperial
}

// IsEnabled reports whether a type is tracked. WEIGHT always is.
func (c *Config) IsEnabled(typeName string) bool {
	if typeName == models.TypeWeight {
		return true
	}
	return c.Tracking[strings.ToUpper(typeName)]
}

// SetEnabled turns tracking for a type on or off.
func (c *Config) SetEnabled(typeName string, on bool) {
	if c.Tracking == nil {
		c.Tracking = make(map[string]bool)
	}
	c.Tracking[strings.ToUpper(typeName)] = on
}

func (c *Config) GoalKG() float64   { return c.Goal }
func (c *Config) HeightCM() float64 { return c.Height }

// GetDisplayField returns the displayed type, defaulting to WEIGHT.
func (c *Config) GetDisplayField() string {
	if c.DisplayField == "" {
		return models.TypeWeight
	}
	return c.DisplayField
}

// SetDisplayField records the type to display.
func (c *Config) SetDisplayField(typeName string) {
	c.DisplayField = strings.ToUpper(typeName)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage(ctx context.Context, catalog *models.Catalog, opts ...storage.Option) (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.Open(filepath.Join(c.GetDataDir(), "measure.db"), catalog, opts...)
	case "postgres":
		return storage.OpenPostgres(ctx, c.PostgresDSN, catalog, opts...)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// Keys lists the settings accepted by Set.
var Keys = []string{
	"backend", "data_dir", "postgres_dsn", "units", "goal", "height",
	"track_<type>", "fast_input", "display", "types_file",
	"backup.bucket", "backup.prefix", "backup.region", "backup.endpoint",
	"backup.path_style", "backup.age_recipient",
}

// Set updates one setting from its string form. Goal and height are read in
// the current unit system and stored metric.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "backend":
		if value != "sqlite" && value != "postgres" {
			return fmt.Errorf("backend must be sqlite or postgres, got %q", value)
		}
		c.Backend = value
	case "data_dir":
		c.DataDir = value
	case "postgres_dsn":
		c.PostgresDSN = value
	case "units":
		switch strings.ToLower(value) {
		case "metric":
			c.Imperial = false
		case "imperial":
			c.Imperial = true
		default:
			return fmt.Errorf("units must be metric or imperial, got %q", value)
		}
	case "goal":
		v, err := c.parseMeasure(value, units.MassKG)
		if err != nil {
			return fmt.Errorf("goal: %w", err)
		}
		c.Goal = v
	case "height":
		v, err := c.parseMeasure(value, units.LengthCM)
		if err != nil {
			return fmt.Errorf("height: %w", err)
		}
		c.Height = v
	case "fast_input":
		return setBool(&c.FastInput, value)
	case "display":
		c.SetDisplayField(value)
	case "types_file":
		c.TypesFile = value
	case "backup.bucket":
		c.Backup.Bucket = value
	case "backup.prefix":
		c.Backup.Prefix = value
	case "backup.region":
		c.Backup.Region = value
	case "backup.endpoint":
		c.Backup.Endpoint = value
	case "backup.path_style":
		return setBool(&c.Backup.PathStyle, value)
	case "backup.age_recipient":
		c.Backup.AgeRecipient = value
	default:
		if name, ok := strings.CutPrefix(key, "track_"); ok && name != "" {
			on, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.SetEnabled(name, on)
			return nil
		}
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func (c *Config) parseMeasure(raw string, u units.Unit) (float64, error) {
	v, err := units.ParseNumber(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, models.ErrSubZero
	}
	if c.Imperial {
		v = u.ToMetric(v)
	}
	return v, nil
}

func setBool(dst *bool, value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "measure", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides backend, paths and backup settings from MEASURE_*
// environment variables. Unset variables leave the file values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
