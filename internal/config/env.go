package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env is the bootstrap configuration read before the config file: where the
// file lives and where relative data paths are anchored.
type Env struct {
	ConfigPath string `env:"TRACKER_CONFIG" envDefault:"config/config.yaml"`
	DataDir    string `env:"TRACKER_DATA_DIR" envDefault:"."`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses the bootstrap environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
