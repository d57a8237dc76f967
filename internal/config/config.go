// Package config loads the user configuration of the CLI from a YAML file,
// with environment variables as read-only overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type RasterConfig struct {
	// Interpolation used by rotate: "nearest" or "bilinear"
	Interpolation string `yaml:"interpolation"`

	// DefaultNodata is used by the CLI for inputs that declare no nodata value.
	// A nil value leaves such inputs without one.
	DefaultNodata *float64 `yaml:"default_nodata"`
}

type TilesConfig struct {
	MinZoom uint8 `yaml:"minzoom"`
	MaxZoom uint8 `yaml:"maxzoom"`
	Workers int   `yaml:"workers"`
}

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Raster  RasterConfig  `yaml:"raster"`
	Tiles   TilesConfig   `yaml:"tiles"`
}

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Raster:  RasterConfig{Interpolation: "nearest"},
		Tiles:   TilesConfig{MinZoom: 0, MaxZoom: 4, Workers: 4},
	}
}

// Env var names used as overrides.
const (
	EnvLogLevel      = "RXF_LOG_LEVEL"
	EnvLogFormat     = "RXF_LOG_FORMAT"
	EnvLogSource     = "RXF_LOG_SOURCE"
	EnvLogFile       = "RXF_LOG_FILE"
	EnvInterpolation = "RXF_INTERPOLATION"
	EnvDefaultNodata = "RXF_DEFAULT_NODATA"
	EnvWorkers       = "RXF_WORKERS"
)

// Path returns the per-user config file path
func Path() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rastertransform", "config.yaml"), nil
}

// Load reads the config file at path (or the per-user file if path is
// empty), applies defaults and merges environment overrides. A missing
// per-user file is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("could not parse config %q: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("could not read config %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges that YAML types cannot express
func (c Config) Validate() error {
	switch c.Raster.Interpolation {
	case "nearest", "bilinear":
	default:
		return fmt.Errorf("raster.interpolation must be nearest or bilinear, got %q", c.Raster.Interpolation)
	}
	if c.Tiles.MinZoom > c.Tiles.MaxZoom {
		return fmt.Errorf("tiles.minzoom (%v) must be <= tiles.maxzoom (%v)", c.Tiles.MinZoom, c.Tiles.MaxZoom)
	}
	if c.Tiles.Workers < 1 {
		return fmt.Errorf("tiles.workers must be >= 1, got %v", c.Tiles.Workers)
	}
	return nil
}

func mergeInto(dst *Config, src *Config) {
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}

	if v := strings.TrimSpace(src.Raster.Interpolation); v != "" {
		dst.Raster.Interpolation = strings.ToLower(v)
	}
	if src.Raster.DefaultNodata != nil {
		v := *src.Raster.DefaultNodata
		dst.Raster.DefaultNodata = &v
	}

	if src.Tiles.MinZoom != 0 {
		dst.Tiles.MinZoom = src.Tiles.MinZoom
	}
	if src.Tiles.MaxZoom != 0 {
		dst.Tiles.MaxZoom = src.Tiles.MaxZoom
	}
	if src.Tiles.Workers != 0 {
		dst.Tiles.Workers = src.Tiles.Workers
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInterpolation)); v != "" {
		cfg.Raster.Interpolation = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultNodata)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Raster.DefaultNodata = &f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tiles.Workers = n
		}
	}
}
