package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"repocheck/internal/logging"
	"repocheck/internal/runner"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "repocheck" // application name used for config directory

// Config holds user configuration for repocheck.
type Config struct {
	// RepoRoot is the monorepo the checks run against.
	RepoRoot string `yaml:"repo_root"`

	// CheckDir optionally points at a directory of markdown files defining
	// custom checks (YAML frontmatter + documentation body).
	CheckDir string `yaml:"check_dir,omitempty"`

	// Commands overrides the argv of builtin tool-backed checks, keyed by
	// check name (lint, typecheck, format).
	Commands map[string][]string `yaml:"commands,omitempty"`

	// Limits overrides the per-class concurrency ceilings. Zero fields keep
	// the defaults; REPOCHECK_*_LIMIT env vars override both.
	Limits LimitsConfig `yaml:"limits,omitempty"`

	Version  string `yaml:"version"`
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// LimitsConfig mirrors runner.Limits in the config file.
type LimitsConfig struct {
	CPU     int `yaml:"cpu,omitempty"`
	IO      int `yaml:"io,omitempty"`
	Browser int `yaml:"browser,omitempty"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location
// If no config exists, it returns an error indicating first run is needed
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, run 'repocheck init' first")
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults: the current
// directory as repo root and the builtin commands and limits.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return Config{
		RepoRoot: cwd,
		Version:  "1.0",
		InitTime: 0, // Will be set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restrictive permissions: the config may name internal tooling paths
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// RunnerLimits resolves the effective concurrency limits: built-in defaults,
// overridden by config file values, overridden by environment variables.
func (c *Config) RunnerLimits() runner.Limits {
	limits := runner.DefaultLimits()
	if c.Limits.CPU > 0 {
		limits.CPU = c.Limits.CPU
	}
	if c.Limits.IO > 0 {
		limits.IO = c.Limits.IO
	}
	if c.Limits.Browser > 0 {
		limits.Browser = c.Limits.Browser
	}

	env := runner.LimitsFromEnv()
	defaults := runner.DefaultLimits()
	if env.CPU != defaults.CPU {
		limits.CPU = env.CPU
	}
	if env.IO != defaults.IO {
		limits.IO = env.IO
	}
	if env.Browser != defaults.Browser {
		limits.Browser = env.Browser
	}

	return limits
}
