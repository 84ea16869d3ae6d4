package config

import "errors"

// Sentinel errors so callers can classify failures with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
