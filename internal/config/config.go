// Package config loads the tracker configuration from a YAML file with
// TRACKER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Tracker TrackerConfig `mapstructure:"tracker"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Output is a file path. The terminal UI owns stdout, so logs never go there.
	Output string `mapstructure:"output"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver    string        `mapstructure:"driver"`
	Path      string        `mapstructure:"path"`
	DSN       string        `mapstructure:"dsn"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxConns  int32         `mapstructure:"max_conns"`
}

// TrackerConfig holds encounter defaults.
type TrackerConfig struct {
	Locale     string        `mapstructure:"locale"`
	UndoWindow time.Duration `mapstructure:"undo_window"`
	// Seed pins the roll-off dice; 0 seeds from crypto/rand.
	Seed          int64  `mapstructure:"seed"`
	AutoGraveyard bool   `mapstructure:"auto_graveyard"`
	ShowHidden    bool   `mapstructure:"show_hidden"`
	Theme         string `mapstructure:"theme"`
	ExportDir     string `mapstructure:"export_dir"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "tracker.log")

	v.SetDefault("storage.driver", DriverBolt)
	v.SetDefault("storage.path", "tracker.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.key_prefix", "initiative-tracker")
	v.SetDefault("storage.timeout", time.Second)
	v.SetDefault("storage.max_conns", 4)

	v.SetDefault("tracker.locale", "und")
	v.SetDefault("tracker.undo_window", 5*time.Second)
	v.SetDefault("tracker.seed", 0)
	v.SetDefault("tracker.auto_graveyard", false)
	v.SetDefault("tracker.show_hidden", false)
	v.SetDefault("tracker.theme", "dark")
	v.SetDefault("tracker.export_dir", "exports")
}

// Load reads the config file at path. A missing file is not an error: the
// defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the tracker cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverBolt, DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver)
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Tracker.UndoWindow < 0 {
		return fmt.Errorf("tracker.undo_window must not be negative")
	}
	return nil
}

// ResolvePaths anchors relative file paths at dataDir.
func (c *Config) ResolvePaths(dataDir string) {
	if dataDir == "" {
		return
	}
	c.Storage.Path = resolve(dataDir, c.Storage.Path)
	c.Logging.Output = resolve(dataDir, c.Logging.Output)
	c.Tracker.ExportDir = resolve(dataDir, c.Tracker.ExportDir)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
