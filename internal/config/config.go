package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the chore board.
type Config struct {
	DatabasePath  string `yaml:"database_path"`
	ListenAddr    string `yaml:"listen_addr"`
	BacklightPath string `yaml:"backlight_path"`
	DisplayOnAt   string `yaml:"display_on_at"`
	DisplayOffAt  string `yaml:"display_off_at"`
	LogLevel      string `yaml:"log_level"`
}

// Load reads an optional YAML config file (CHOREBOARD_CONFIG, or
// choreboard.yaml in the working directory) and applies environment
// variable overrides with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabasePath: "choreboard.db",
		ListenAddr:   ":5000",
		DisplayOnAt:  "07:00",
		DisplayOffAt: "22:30",
		LogLevel:     "info",
	}

	path := strings.TrimSpace(os.Getenv("CHOREBOARD_CONFIG"))
	if path == "" {
		path = "choreboard.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	applyEnv(&cfg.DatabasePath, "DATABASE_PATH")
	applyEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	applyEnv(&cfg.BacklightPath, "BACKLIGHT_PATH")
	applyEnv(&cfg.DisplayOnAt, "DISPLAY_ON_AT")
	applyEnv(&cfg.DisplayOffAt, "DISPLAY_OFF_AT")
	applyEnv(&cfg.LogLevel, "LOG_LEVEL")

	if cfg.DatabasePath == "" {
		return cfg, fmt.Errorf("database path is required")
	}
	if cfg.ListenAddr == "" {
		return cfg, fmt.Errorf("listen address is required")
	}

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}
