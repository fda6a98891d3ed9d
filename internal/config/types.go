// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config types define the configuration structures used throughout
// humiocli. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for humiocli.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	Humio   HumioConfig   `yaml:"humio"`
	Search  SearchConfig  `yaml:"search"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Format  FormatConfig  `yaml:"format"`
	Logging LoggingConfig `yaml:"logging"`
}

// HumioConfig contains connection settings. Tokens are secrets and are only
// read from flags or the environment, never from the config file.
type HumioConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig holds defaults for the search command.
type SearchConfig struct {
	Repos     []string `yaml:"repos"`
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	Color     string   `yaml:"color"`
	Style     string   `yaml:"style"`
	OutFormat string   `yaml:"outformat"`
	Sort      string   `yaml:"sort"`
	Async     bool     `yaml:"async"`
}

// IngestConfig holds defaults for the ingest command.
type IngestConfig struct {
	Separator string `yaml:"separator"`
	SoftLimit int    `yaml:"soft_limit"`
	Encoding  string `yaml:"encoding"`
	StateDir  string `yaml:"state_dir"`
}

// FormatConfig holds defaults for the markup reformatter.
type FormatConfig struct {
	Style  string `yaml:"style"`
	Indent string `yaml:"indent"`
}

// LoggingConfig controls the structured logger. File logging is rotated.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns a Config with the defaults of the command line tool.
func DefaultConfig() *Config {
	return &Config{
		Humio: HumioConfig{
			Timeout: 5 * time.Minute,
		},
		Search: SearchConfig{
			Repos:     []string{"sandbox"},
			Start:     "@d",
			End:       "now",
			Color:     "auto",
			Style:     "paraiso-dark",
			OutFormat: "pretty",
			Sort:      "@timestamp",
			Async:     true,
		},
		Ingest: IngestConfig{
			Separator: "^.",
			SoftLimit: 1 << 20,
			StateDir:  "~/.config/humio/state",
		},
		Format: FormatConfig{
			Style:  "pretty",
			Indent: "    ",
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}
