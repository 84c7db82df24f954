package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvPath overrides the config file location.
const EnvPath = "WCA_CONFIG"

type Config struct {
	ExportRoot string `toml:"export_root"`
	DBPath     string `toml:"db_path"`
	LogLevel   string `toml:"log_level"`
	LogJSON    bool   `toml:"log_json"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfgPath := os.Getenv(EnvPath)
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".config", "wca", "config.toml")
	}
	return LoadFrom(cfgPath, home)
}

// LoadFrom reads cfgPath over the defaults. A missing file is not an error.
func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		ExportRoot: filepath.Join(home, "WhatsApp"),
		DBPath:     filepath.Join(home, ".config", "wca", "wca.db"),
		LogLevel:   "info",
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
