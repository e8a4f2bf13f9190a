// Package config provides configuration loading and management for Semlix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semlix/iri"
)

// Config represents the complete Semlix configuration
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Shapes   ShapesConfig   `yaml:"shapes"`
	NATS     NATSConfig     `yaml:"nats"`
	Hosting  HostingConfig  `yaml:"hosting"`
}

// ProjectConfig configures the analyzed project
type ProjectConfig struct {
	// Path is the project root path (auto-detected from git if empty)
	Path string `yaml:"path"`
	// Base is the entity IRI namespace prefix
	Base string `yaml:"base"`
	// Patterns are the source discovery globs (empty = mix defaults)
	Patterns []string `yaml:"patterns"`
}

// AnalyzerConfig configures the analysis pipeline
type AnalyzerConfig struct {
	// ContinueOnError keeps a run going past files that fail to parse
	ContinueOnError bool `yaml:"continue_on_error"`
	// TrackColumns records column positions in addition to lines
	TrackColumns bool `yaml:"track_columns"`
	// WatchDebounce is the delay before re-analyzing changed files
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// ShapesConfig configures shape validation
type ShapesConfig struct {
	// Paths are the YAML shape manifests to load
	Paths []string `yaml:"paths"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = no graph publishing)
	URL string `yaml:"url"`
	// Embedded indicates whether to use embedded NATS
	Embedded bool `yaml:"embedded"`
}

// HostingConfig configures source deep links
type HostingConfig struct {
	// Host is the repository browser domain (e.g., "github.com")
	Host string `yaml:"host"`
	// Owner and Repo identify the repository
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Path: "", // Auto-detect
			Base: iri.DefaultBase,
		},
		Analyzer: AnalyzerConfig{
			ContinueOnError: true,
			TrackColumns:    true,
			WatchDebounce:   100 * time.Millisecond,
		},
		NATS: NATSConfig{
			URL:      "",
			Embedded: false,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Project.Base == "" {
		return fmt.Errorf("project.base is required")
	}
	if !strings.Contains(c.Project.Base, "://") {
		return fmt.Errorf("project.base must be an absolute IRI")
	}
	if c.Analyzer.WatchDebounce < 0 {
		return fmt.Errorf("analyzer.watch_debounce must not be negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Project
	if other.Project.Path != "" {
		c.Project.Path = other.Project.Path
	}
	if other.Project.Base != "" && other.Project.Base != iri.DefaultBase {
		c.Project.Base = other.Project.Base
	}
	if len(other.Project.Patterns) > 0 {
		c.Project.Patterns = other.Project.Patterns
	}

	// Analyzer
	c.Analyzer.ContinueOnError = other.Analyzer.ContinueOnError
	c.Analyzer.TrackColumns = other.Analyzer.TrackColumns
	if other.Analyzer.WatchDebounce != 0 {
		c.Analyzer.WatchDebounce = other.Analyzer.WatchDebounce
	}

	// Shapes
	if len(other.Shapes.Paths) > 0 {
		c.Shapes.Paths = other.Shapes.Paths
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Embedded = false
	}
	if other.NATS.Embedded {
		c.NATS.Embedded = true
	}

	// Hosting
	if other.Hosting.Host != "" {
		c.Hosting.Host = other.Hosting.Host
	}
	if other.Hosting.Owner != "" {
		c.Hosting.Owner = other.Hosting.Owner
	}
	if other.Hosting.Repo != "" {
		c.Hosting.Repo = other.Hosting.Repo
	}
}
