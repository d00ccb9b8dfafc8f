package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Defaults DefaultsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. URL may be empty, in
// which case reports are not persisted.
type DatabaseConfig struct {
	URL string
}

// DefaultsConfig holds default standardization knobs for the API and CLI.
type DefaultsConfig struct {
	CILevel float64
	Seed    int64
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server:   ServerConfig{Port: getEnv("PORT", "8080")},
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Defaults: DefaultsConfig{CILevel: 0.95, Seed: 1},
	}

	if v := os.Getenv("CI_LEVEL"); v != "" {
		level, err := strconv.ParseFloat(v, 64)
		if err != nil || level <= 0 || level >= 1 {
			return nil, fmt.Errorf("invalid CI_LEVEL %q: must be a float in (0,1)", v)
		}
		cfg.Defaults.CILevel = level
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED %q: %w", v, err)
		}
		cfg.Defaults.Seed = seed
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
