package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file named by PF_CONFIG, if set
//  3. environment variables with the PF_ prefix (PF_DB_HOST, PF_WORKERS, ...)
func Load() (*Config, error) {
	cfg := New()

	k := koanf.New(".")

	if path := os.Getenv("PF_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// PF_REGRESSION_CONSTANT -> regression_constant; underscores are kept
	// to match the koanf tags on the struct.
	envProvider := env.Provider("PF_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "pf_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
