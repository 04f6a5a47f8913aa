package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads variables from the first readable .env file without
// overriding variables already present in the process environment.
func loadEnvFile() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", path)
		return
	}
}

// applyEnvOverrides overlays `env` tagged fields from the process environment.
// Unset variables leave the file values untouched.
func applyEnvOverrides(cfg *Config) error {
	targets := []any{&cfg.Site, &cfg.Content, &cfg.Cache, &cfg.Server, &cfg.Monitoring.Metrics, &cfg.Monitoring.Logging}
	for _, target := range targets {
		if err := env.Parse(target); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to parse environment overrides").Build()
		}
	}
	return nil
}
