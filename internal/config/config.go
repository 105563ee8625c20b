package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/lightmixsearch/internal/experiment"
	"github.com/cwbudde/lightmixsearch/internal/store"
)

// Config is the YAML file accepted by --config.
type Config struct {
	LogLevel   string            `yaml:"log_level"`
	LogFormat  string            `yaml:"log_format"`
	DataDir    string            `yaml:"data_dir"`
	Store      string            `yaml:"store"`
	Server     Server            `yaml:"server"`
	Experiment experiment.Config `yaml:"experiment"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "json",
		DataDir:    "./data",
		Store:      store.KindFS,
		Server:     Server{Addr: ":8080"},
		Experiment: experiment.DefaultConfig(),
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", c.LogFormat)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.Store != store.KindFS && c.Store != store.KindSQLite {
		return fmt.Errorf("invalid store: %s (must be fs or sqlite)", c.Store)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if err := c.Experiment.Validate(); err != nil {
		return fmt.Errorf("experiment: %w", err)
	}
	return nil
}
