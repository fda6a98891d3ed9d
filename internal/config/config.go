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

// Package config provides configuration management for humiocli with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. HUMIO_* environment variables, including those from ~/.config/humio/.env
//  3. Configuration file
//  4. Built-in defaults
//
// The file and defaults are handled by LoadConfig. Flags and environment
// variables are layered on top per command by a Resolver.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirseerhq/humiocli/internal/markup"
)

// LoadConfig loads configuration from the config file and the environment.
// If configPath is provided, it loads from that specific file. Otherwise, it
// searches standard locations:
//   - .humiocli.yaml (current directory)
//   - .humiocli.yml (current directory)
//   - ~/.config/humio/config.yaml
//   - ~/.config/humio/config.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		for _, path := range DefaultConfigPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Ingest.StateDir = expandPath(cfg.Ingest.StateDir)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return cfg, nil
}

// DefaultConfigPaths lists the config files LoadConfig looks for.
func DefaultConfigPaths() []string {
	dir := configDir()
	return []string{
		".humiocli.yaml",
		".humiocli.yml",
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}
}

func configDir() string {
	return filepath.Join(homeDir(), ".config", "humio")
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment overrides for settings that have no
// command-line flag. Flag-backed settings are resolved by a Resolver.
func applyEnvOverrides(cfg *Config) {
	if stateDir := os.Getenv(EnvPrefix + "_STATE_DIR"); stateDir != "" {
		cfg.Ingest.StateDir = stateDir
	}
	if timeout := os.Getenv(EnvPrefix + "_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Humio.Timeout = d
		}
	}
	if maxSize := os.Getenv(EnvPrefix + "_LOG_MAX_SIZE_MB"); maxSize != "" {
		if size, err := parsePositiveInt(maxSize); err == nil {
			cfg.Logging.MaxSizeMB = size
		}
	}
	if compress := os.Getenv(EnvPrefix + "_LOG_COMPRESS"); compress != "" {
		cfg.Logging.Compress = parseBool(compress)
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Validate checks if the configuration contains valid values. This should be
// called after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.Humio.BaseURL != "" {
		if err := ValidateBaseURL(c.Humio.BaseURL); err != nil {
			return err
		}
	}
	if c.Humio.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %s", c.Humio.Timeout)
	}
	if c.Ingest.SoftLimit <= 0 {
		return fmt.Errorf("ingest soft limit must be positive, got: %d", c.Ingest.SoftLimit)
	}
	if err := ValidateChoice("color", c.Search.Color, ColorModes); err != nil {
		return err
	}
	if err := ValidateChoice("outformat", c.Search.OutFormat, OutFormats); err != nil {
		return err
	}
	if err := ValidateChoice("log level", c.Logging.Level, LogLevels); err != nil {
		return err
	}
	if err := ValidateChoice("log format", c.Logging.Format, LogFormats); err != nil {
		return err
	}
	if _, err := markup.ParseStyle(c.Format.Style); err != nil {
		return err
	}
	return nil
}

// Allowed values for enumerated settings.
var (
	ColorModes = []string{"auto", "always", "never"}
	OutFormats = []string{"pretty", "raw", "ndjson", "or-values", "or-fields"}
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// ValidateChoice returns an error unless value is one of choices.
func ValidateChoice(name, value string, choices []string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (valid: %s)", name, value, strings.Join(choices, ", "))
}

// ValidateBaseURL checks that the Humio base URL is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: must be an absolute http or https URL, for example https://cloud.humio.com", raw)
	}
	return nil
}
