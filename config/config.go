// Package config holds process configuration for the park factor engine,
// layered from defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"runtime"
)

// Config contains everything the service needs to run.
type Config struct {
	// Port is the HTTP listen port for the ops surface.
	Port string `koanf:"port"`

	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`

	// Workers bounds the per-park computation pool.
	Workers int `koanf:"workers"`

	// RegressionConstant (K) controls shrinkage aggressiveness: the sample
	// size at which the raw factor and the neutral prior carry equal weight.
	RegressionConstant float64 `koanf:"regression_constant"`

	// ConfidenceSaturationGames (C) is the sample size at which the
	// reported confidence reaches 1.0.
	ConfidenceSaturationGames float64 `koanf:"confidence_saturation_games"`

	// MinGamesToReport is the floor below which a park is emitted as a
	// neutral record with zero confidence instead of omitted.
	MinGamesToReport int `koanf:"min_games_to_report"`

	// MinTeamGames is the minimum qualifying games behind a team's
	// offensive profile before the league average is substituted.
	MinTeamGames int `koanf:"min_team_games"`

	// ReportPath, when set, is where the post-refresh markdown summary is
	// written.
	ReportPath string `koanf:"report_path"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Port:                      "8082",
		DBHost:                    "localhost",
		DBPort:                    "5432",
		DBUser:                    "baseball_user",
		DBPassword:                "baseball_pass",
		DBName:                    "baseball_sim",
		Workers:                   runtime.NumCPU(),
		RegressionConstant:        20,
		ConfidenceSaturationGames: 50,
		MinGamesToReport:          3,
		MinTeamGames:              10,
	}
}

// DatabaseURL builds the postgres connection string.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Validate checks the statistical knobs. Zero values are legal (they disable
// the corresponding behavior); negatives are not.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.RegressionConstant < 0 {
		return fmt.Errorf("%w: regression_constant must not be negative", ErrInvalidConfig)
	}
	if c.ConfidenceSaturationGames < 0 {
		return fmt.Errorf("%w: confidence_saturation_games must not be negative", ErrInvalidConfig)
	}
	if c.MinGamesToReport < 0 {
		return fmt.Errorf("%w: min_games_to_report must not be negative", ErrInvalidConfig)
	}
	if c.MinTeamGames < 0 {
		return fmt.Errorf("%w: min_team_games must not be negative", ErrInvalidConfig)
	}
	return nil
}
