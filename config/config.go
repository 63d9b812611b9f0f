// Copyright (C) 2025 veil-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later


// Package config loads the VEIL runtime configuration from YAML or JSON
// files plus environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	Environment string         `yaml:"environment" json:"environment"`
	Chain       *ChainConfig   `yaml:"chain" json:"chain"`
	Store       *StoreConfig   `yaml:"store" json:"store"`
	Scanner     *ScannerConfig `yaml:"scanner" json:"scanner"`
	Logging     *LoggingConfig `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ChainConfig points the engine at a Solana cluster.
type ChainConfig struct {
	RPCEndpoint string `yaml:"rpc_endpoint" json:"rpc_endpoint"`
	// Registry is the Base58 account whose memo history carries the
	// announcements.
	Registry string `yaml:"registry" json:"registry"`
}

// StoreConfig selects the announcement store backend.
type StoreConfig struct {
	// Type is "memory" or "postgres".
	Type string `yaml:"type" json:"type"`
	DSN  string `yaml:"dsn" json:"dsn"`
}

// ScannerConfig tunes announcement scanning.
type ScannerConfig struct {
	Parallelism int `yaml:"parallelism" json:"parallelism"`
	BatchSize   int `yaml:"batch_size" json:"batch_size"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds a configuration from environment variables. A .env
// file in the working directory is read first when present.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: os.Getenv("VEIL_ENVIRONMENT"),
		Chain: &ChainConfig{
			RPCEndpoint: os.Getenv("VEIL_RPC_ENDPOINT"),
			Registry:    os.Getenv("VEIL_REGISTRY"),
		},
		Store: &StoreConfig{
			Type: os.Getenv("VEIL_STORE_TYPE"),
			DSN:  os.Getenv("VEIL_STORE_DSN"),
		},
		Logging: &LoggingConfig{
			Level: os.Getenv("VEIL_LOG_LEVEL"),
		},
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store type postgres requires a dsn")
		}
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	if c.Scanner.Parallelism < 1 {
		return fmt.Errorf("scanner parallelism must be positive")
	}
	if c.Scanner.BatchSize < 1 {
		return fmt.Errorf("scanner batch size must be positive")
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Chain == nil {
		cfg.Chain = &ChainConfig{}
	}
	if cfg.Chain.RPCEndpoint == "" {
		cfg.Chain.RPCEndpoint = "https://api.devnet.solana.com"
	}
	if cfg.Store == nil {
		cfg.Store = &StoreConfig{}
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Scanner == nil {
		cfg.Scanner = &ScannerConfig{}
	}
	if cfg.Scanner.Parallelism == 0 {
		cfg.Scanner.Parallelism = 4
	}
	if cfg.Scanner.BatchSize == 0 {
		cfg.Scanner.BatchSize = 256
	}
	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{Addr: ":9105"}
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9105"
	}
}
