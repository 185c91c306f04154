package config

import (
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Start from the built-in defaults
//  2. If a path is given, read the YAML file
//  3. Expand environment variables
//  4. Merge file values over the defaults
//  5. Validate the result
//
// An empty path means "defaults only"; a non-empty path must exist.
func Initialize(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	slog.Info("Configuration initialized",
		"config_path", path,
		"listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"gql_url", cfg.Upstream.GQLURL,
		"max_concurrent_analyses", cfg.Analysis.MaxConcurrent,
		"log_level", cfg.LogLevel)

	return cfg, nil
}

// loadFile reads one YAML file, expanding {{.ENV_VAR}} references before
// parsing.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, fmt.Errorf("%w: %s", ErrConfigNotFound, path))
		}
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return &cfg, nil
}
