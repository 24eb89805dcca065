// Package config loads server settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds server settings.
type Config struct {
	Port          int    `yaml:"port"`
	DBPath        string `yaml:"db"`
	AdminPassword string `yaml:"adminPassword"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:          9000,
		DBPath:        "planpro.db",
		AdminPassword: "changeme",
	}
}

// Load merges, in increasing precedence: defaults, the YAML file at path
// (skipped when path is empty or the file is absent), and PLANPRO_*
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}
	if v := os.Getenv("PLANPRO_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PLANPRO_PORT: %w", err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("PLANPRO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PLANPRO_ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	return cfg, nil
}
