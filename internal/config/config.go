// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"payee-scan/internal/paths"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Country string `yaml:"country"`
		Mode    string `yaml:"mode"`
		Format  string `yaml:"format"`
		NoColor bool   `yaml:"no_color"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"defaults"`

	// Optional YAML file with country rule overrides
	RulesFile string `yaml:"rules_file"`

	// Extra scanner keywords, appended to the built-in lists
	Scanner ScannerConfig `yaml:"scanner"`

	Web struct {
		Port         string `yaml:"port"`
		MaxBodyBytes int64  `yaml:"max_body_bytes"`
	} `yaml:"web"`

	Batch struct {
		Workers   int    `yaml:"workers"`
		Separator string `yaml:"separator"`
	} `yaml:"batch"`

	// Profiles for different desks or corridors
	Profiles map[string]Profile `yaml:"profiles"`
}

// ScannerConfig holds keyword lists for the candidate scanner
type ScannerConfig struct {
	BankKeywords        []string `yaml:"bank_keywords"`
	GenericBankKeywords []string `yaml:"generic_bank_keywords"`
	CurrencyTokens      []string `yaml:"currency_tokens"`
	CodeKeywords        []string `yaml:"code_keywords"`
	LabelWords          []string `yaml:"label_words"`
}

// Profile represents a named set of defaults
type Profile struct {
	Country     string `yaml:"country"`
	Mode        string `yaml:"mode"`
	Format      string `yaml:"format"`
	NoColor     bool   `yaml:"no_color"`
	Debug       bool   `yaml:"debug"`
	RulesFile   string `yaml:"rules_file"`
	Description string `yaml:"description"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Country = "NE"
	config.Defaults.Mode = "phone"
	config.Defaults.Format = "text"
	config.Web.Port = "8080"
	config.Web.MaxBodyBytes = 64 << 10
	config.Batch.Workers = 4
	config.Batch.Separator = "---"

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	// A relative rules file is resolved against the config file's directory
	if config.RulesFile != "" {
		config.RulesFile = resolveRelative(cleanPath, config.RulesFile)
	}
	for name, profile := range config.Profiles {
		if profile.RulesFile != "" {
			profile.RulesFile = resolveRelative(cleanPath, profile.RulesFile)
			config.Profiles[name] = profile
		}
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the standard locations
func FindConfigFile() string {
	for _, candidate := range paths.ConfigSearchPaths() {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func resolveRelative(configPath, target string) string {
	target = paths.ExpandHome(target)
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(filepath.Dir(configPath), target)
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile copies the non-empty settings of the named profile over the
// defaults
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}

	if profile.Country != "" {
		c.Defaults.Country = profile.Country
	}
	if profile.Mode != "" {
		c.Defaults.Mode = profile.Mode
	}
	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.RulesFile != "" {
		c.RulesFile = profile.RulesFile
	}
	c.Defaults.NoColor = c.Defaults.NoColor || profile.NoColor
	c.Defaults.Debug = c.Defaults.Debug || profile.Debug
	return nil
}

// ValidateConfig validates the configuration values
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := paths.ValidatePath(config.RulesFile); err != nil {
		return fmt.Errorf("invalid rules file: %w", err)
	}
	for name, profile := range config.Profiles {
		if err := paths.ValidatePath(profile.RulesFile); err != nil {
			return fmt.Errorf("invalid rules file in profile '%s': %w", name, err)
		}
	}

	if config.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", config.Batch.Workers)
	}
	if strings.TrimSpace(config.Batch.Separator) == "" {
		return fmt.Errorf("batch.separator cannot be empty")
	}
	if config.Web.MaxBodyBytes <= 0 {
		return fmt.Errorf("web.max_body_bytes must be positive, got %d", config.Web.MaxBodyBytes)
	}

	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
// This is the shared helper used by both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		if os.Getenv("PAYEE_DEBUG") != "" {
			fmt.Fprintf(os.Stderr, "[DEBUG] Config: falling back to defaults: %v\n", err)
		}
		cfg, _ = LoadConfig("")
	}
	return cfg
}
