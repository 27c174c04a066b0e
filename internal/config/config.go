// Package config provides configuration management for mdt.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/mdtree/pkg/md"
)

// Footnote reference numbering modes.
const (
	FootnoteRefsEncounter = "encounter"
	FootnoteRefsName      = "name"
)

// ValidOutputFormats lists the values accepted for output_format.
var ValidOutputFormats = []string{"html", "json", "tree"}

// Config holds the mdt configuration.
type Config struct {
	OutputFormat   string `yaml:"output_format,omitempty"`
	Timeout        string `yaml:"timeout,omitempty"`
	UserAgent      string `yaml:"user_agent,omitempty"`
	MaxBodySize    string `yaml:"max_body_size,omitempty"`
	AutoHeadingIDs bool   `yaml:"auto_heading_ids,omitempty"`
	Alerts         bool   `yaml:"alerts,omitempty"`
	FootnoteRefs   string `yaml:"footnote_refs,omitempty"`
	Strict         bool   `yaml:"strict,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
	LogFormat      string `yaml:"log_format,omitempty"`
}

// Validate checks that every set field holds an accepted value.
func (c *Config) Validate() error {
	if c.OutputFormat != "" && !contains(ValidOutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output_format %q (valid: %s)", c.OutputFormat, strings.Join(ValidOutputFormats, ", "))
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
		}
	}
	if c.MaxBodySize != "" {
		n, err := humanize.ParseBytes(c.MaxBodySize)
		if err != nil {
			return fmt.Errorf("invalid max_body_size %q: %w", c.MaxBodySize, err)
		}
		if n == 0 {
			return fmt.Errorf("max_body_size must be positive, got %s", c.MaxBodySize)
		}
	}
	switch c.FootnoteRefs {
	case "", FootnoteRefsEncounter, FootnoteRefsName:
	default:
		return fmt.Errorf("invalid footnote_refs %q (valid: %s, %s)", c.FootnoteRefs, FootnoteRefsEncounter, FootnoteRefsName)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

// TimeoutDuration returns the fetch timeout, or zero for the client default.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// MaxBodyBytes returns the response size cap, or zero for the fetch default.
func (c *Config) MaxBodyBytes() int64 {
	n, err := humanize.ParseBytes(c.MaxBodySize)
	if err != nil || n > math.MaxInt64 {
		return 0
	}
	return int64(n)
}

// LexOptions returns the lexer settings selected by the config.
func (c *Config) LexOptions() md.LexOptions {
	return md.LexOptions{
		AutoHeadingIDs: c.AutoHeadingIDs,
		Alerts:         c.Alerts,
	}
}

// RenderOptions returns the renderer settings selected by the config.
func (c *Config) RenderOptions() md.Options {
	return md.Options{
		ResolveFootnoteRefs: c.FootnoteRefs == FootnoteRefsName,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: MDT_* → LOG_* (logging only) → existing config value
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("MDT_OUTPUT_FORMAT"); v != "" {
		c.OutputFormat = v
	}
	if v := os.Getenv("MDT_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("MDT_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("MDT_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
	if v := os.Getenv("MDT_FOOTNOTE_REFS"); v != "" {
		c.FootnoteRefs = v
	}
	if v := getEnvWithFallback("MDT_LOG_LEVEL", "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getEnvWithFallback("MDT_LOG_FORMAT", "LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	loadBoolFromEnv("MDT_AUTO_HEADING_IDS", &c.AutoHeadingIDs)
	loadBoolFromEnv("MDT_ALERTS", &c.Alerts)
	loadBoolFromEnv("MDT_STRICT", &c.Strict)
}

// loadBoolFromEnv sets *dst from a boolean env var. Unparseable values are ignored.
func loadBoolFromEnv(name string, dst *bool) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mdt", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mdt", "config.yml")
	}

	return filepath.Join(home, ".config", "mdt", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Resolve loads the config at path, or at DefaultConfigPath when path is
// empty, applies env overrides and validates the result.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
