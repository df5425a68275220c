package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names recognised by the CLI
const (
	// EnvConfig points at the HCL configuration file
	EnvConfig = "HOLDEM_RESOLVER_CONFIG"

	// EnvSeed overrides the random seed for deterministic runs
	EnvSeed = "HOLDEM_RESOLVER_SEED"
)

// Path returns the configuration file to load: the explicit path when set,
// then EnvConfig, then fallback.
func Path(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return fallback
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() error {
	if seedStr := os.Getenv(EnvSeed); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Seed = seed
		c.Resolver.Seed = seed
	}
	return nil
}

// LoadFromEnv resolves the configuration path, loads it, applies
// environment overrides and validates the result.
func LoadFromEnv(explicit, fallback string) (*Config, error) {
	cfg, err := Load(Path(explicit, fallback))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
