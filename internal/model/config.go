package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// StorageConfig selects where the store is persisted.
type StorageConfig struct {
	// Backend is "sqlite" (embedded database) or "file" (JSON document).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database or JSON file path. Empty means the default
	// location under the data directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage        StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display        DisplayConfig `mapstructure:"display" yaml:"display"`
	Logging        LoggingConfig `mapstructure:"logging" yaml:"logging"`
	SeedOnFirstRun bool          `mapstructure:"seed_on_first_run" yaml:"seed_on_first_run"`
}

// DefaultConfigPath returns ~/.config/twodo/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "twodo", "config.yaml")
}

// DefaultDataDir returns ~/.local/share/twodo.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "twodo")
}

// StoragePath resolves the configured storage path, falling back to the
// default file name for the backend inside the data directory.
func (c StorageConfig) StoragePath() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Backend == BackendFile {
		return filepath.Join(DefaultDataDir(), "todos.json")
	}
	return filepath.Join(DefaultDataDir(), "todos.db")
}

// LogPath resolves the log file path.
func (c LoggingConfig) LogPath() string {
	if c.File != "" {
		return c.File
	}
	return filepath.Join(DefaultDataDir(), "twodo.log")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Display: DisplayConfig{
			Theme: ThemeLight,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		SeedOnFirstRun: true,
	}
}

// LoadConfig reads configuration from the YAML file at path. Missing
// files yield the defaults. Any key can be overridden from the
// environment with the TWODO_ prefix, e.g. TWODO_STORAGE_BACKEND=file.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TWODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the list of keys known to AutomaticEnv.
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", "")
	v.SetDefault("display.theme", ThemeLight)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("seed_on_first_run", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Display.Theme != ThemeDark {
		cfg.Display.Theme = ThemeLight
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file at path, creating
// parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("logging", cfg.Logging)
	v.Set("seed_on_first_run", cfg.SeedOnFirstRun)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
