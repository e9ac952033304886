package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds persistent editor settings.
type Config struct {
	// GridSize is the snapping quantum in world units.
	GridSize float64 `yaml:"grid_size" default:"10" validate:"gt=0"`
	// CellWidth and CellHeight are the screen pixels one terminal cell stands for.
	CellWidth  float64 `yaml:"cell_width" default:"8" validate:"gt=0"`
	CellHeight float64 `yaml:"cell_height" default:"16" validate:"gt=0"`

	ExportFormat string `yaml:"export_format" default:"svg" validate:"oneof=png svg html dot"`
	DoubleClick  int    `yaml:"double_click_ms" default:"400" validate:"gt=0"`

	// WatchInterval is how often the open file is polled for outside
	// changes. Zero disables watching.
	WatchInterval time.Duration `yaml:"watch_interval" default:"1s" validate:"gte=0"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`

	LastDir string `yaml:"last_dir"`
}

var validate = validator.New()

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	var cfg Config
	_ = defaults.Set(&cfg)
	cfg.LastDir, _ = os.Getwd()
	return cfg
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pixedit.yaml"
	}
	return filepath.Join(home, ".pixedit.yaml")
}

// LogPath returns where the editor logs. The terminal belongs to the UI.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(os.TempDir(), "pixedit.log")
}

// DoubleClickWindow returns the maximum gap between the clicks of a double-click.
func (c Config) DoubleClickWindow() time.Duration {
	return time.Duration(c.DoubleClick) * time.Millisecond
}

// LoadConfig reads the config at path. A missing file yields the defaults.
// Defaults are applied before the file is decoded, so values set in the
// file (including zero values) win.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), errors.Wrap(err, "parse config file failed")
	}
	if err := validate.Struct(cfg); err != nil {
		return DefaultConfig(), errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	header := []byte("# pixedit configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}
