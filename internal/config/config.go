// Package config provides unified configuration loading for cogna.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Cycrus/COGNA/internal/neuron"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// CognaConfig contains all cogna configuration settings.
type CognaConfig struct {
	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store selects where network snapshots are kept.
	Store StoreConfig `json:"store" yaml:"store"`

	// Network holds defaults applied to neurons and connections created
	// from the command line and the MCP server.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Backup configures backup compression and retention.
	Backup BackupConfig `json:"backup" yaml:"backup"`
}

// ConfigFile is the configuration file name inside a data directory.
const ConfigFile = "config.yaml"

// LoggingConfig configures cogna's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "warn", "error",
	// "debug", or "trace". "debug" and "trace" enable the events.jsonl trace.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures snapshot persistence.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "memory".
	Backend string `json:"backend" yaml:"backend"`

	// Path is the SQLite database file. Supports ${VAR} syntax. Empty means
	// cogna.db inside the data directory.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// NetworkConfig holds creation defaults.
type NetworkConfig struct {
	DefaultThreshold      float64 `json:"default_threshold" yaml:"default_threshold"`
	DefaultWeight         float64 `json:"default_weight" yaml:"default_weight"`
	DefaultFunction       string  `json:"default_function" yaml:"default_function"`
	DefaultActivationType string  `json:"default_activation_type" yaml:"default_activation_type"`
	DefaultLearning       string  `json:"default_learning" yaml:"default_learning"`
	DefaultTransmitter    string  `json:"default_transmitter" yaml:"default_transmitter"`
}

// BackupConfig configures backup behavior.
type BackupConfig struct {
	// Compression selects the gzip (v2) format for new backups.
	Compression bool `json:"compression" yaml:"compression"`

	Retention RetentionConfig `json:"retention" yaml:"retention"`
}

// RetentionConfig bounds how many backups are kept. Every non-zero limit
// applies; a backup is deleted when any limit rejects it.
type RetentionConfig struct {
	MaxCount     int    `json:"max_count" yaml:"max_count"`
	MaxAge       string `json:"max_age,omitempty" yaml:"max_age,omitempty"`               // e.g. "30d", "2w", "72h"
	MaxTotalSize string `json:"max_total_size,omitempty" yaml:"max_total_size,omitempty"` // e.g. "100MB"
}

// ConnectionOverrides are per-call connection settings. Empty fields keep
// the configured default.
type ConnectionOverrides struct {
	ActivationType string
	Function       string
	Learning       string
	Transmitter    string
}

// Override returns a copy of n with the non-empty overrides applied.
func (n NetworkConfig) Override(o ConnectionOverrides) NetworkConfig {
	if o.ActivationType != "" {
		n.DefaultActivationType = o.ActivationType
	}
	if o.Function != "" {
		n.DefaultFunction = o.Function
	}
	if o.Learning != "" {
		n.DefaultLearning = o.Learning
	}
	if o.Transmitter != "" {
		n.DefaultTransmitter = o.Transmitter
	}
	return n
}

// ConnectionOptions converts the configured defaults into connection options.
func (n NetworkConfig) ConnectionOptions() ([]neuron.ConnectionOption, error) {
	fn, err := neuron.ParseFunctionKind(n.DefaultFunction)
	if err != nil {
		return nil, fmt.Errorf("default_function: %w", err)
	}
	at, err := neuron.ParseActivationType(n.DefaultActivationType)
	if err != nil {
		return nil, fmt.Errorf("default_activation_type: %w", err)
	}
	lt, err := neuron.ParseLearningType(n.DefaultLearning)
	if err != nil {
		return nil, fmt.Errorf("default_learning: %w", err)
	}
	tt, err := neuron.ParseTransmitterType(n.DefaultTransmitter)
	if err != nil {
		return nil, fmt.Errorf("default_transmitter: %w", err)
	}
	return []neuron.ConnectionOption{
		neuron.WithFunction(fn),
		neuron.WithActivationType(at),
		neuron.WithLearning(lt),
		neuron.WithTransmitter(tt),
	}, nil
}

// Default returns a CognaConfig with sensible defaults.
func Default() *CognaConfig {
	return &CognaConfig{
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Network: NetworkConfig{
			DefaultThreshold:      1.0,
			DefaultWeight:         1.0,
			DefaultFunction:       "relu",
			DefaultActivationType: "excitatory",
			DefaultLearning:       "none",
			DefaultTransmitter:    "standard",
		},
		Backup: BackupConfig{
			Compression: true,
			Retention: RetentionConfig{
				MaxCount: 10,
			},
		},
	}
}

// DataDir returns ~/.cogna, the default home of config.yaml and cogna.db.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cogna"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.cogna/config.yaml -> environment variables
func Load() (*CognaConfig, error) {
	dir, err := DataDir()
	if err != nil {
		config := Default()
		applyEnvOverrides(config)
		return config, nil
	}
	return LoadDir(dir)
}

// LoadDir is Load with dir in place of ~/.cogna.
func LoadDir(dir string) (*CognaConfig, error) {
	config := Default()

	configPath := filepath.Join(dir, ConfigFile)
	if _, statErr := os.Stat(configPath); statErr == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*CognaConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Path = expandEnvVars(config.Store.Path)

	return config, nil
}

// Save writes the configuration as YAML to path, creating parent
// directories as needed.
func (c *CognaConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *CognaConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "warn": true, "error": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, warn, error, debug, trace, or empty for default)", c.Logging.Level)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("invalid store backend: %s (valid: memory, sqlite)", c.Store.Backend)
	}

	if math.IsNaN(c.Network.DefaultThreshold) || math.IsInf(c.Network.DefaultThreshold, 0) {
		return fmt.Errorf("default_threshold must be finite, got %v", c.Network.DefaultThreshold)
	}
	if math.IsNaN(c.Network.DefaultWeight) || math.IsInf(c.Network.DefaultWeight, 0) {
		return fmt.Errorf("default_weight must be finite, got %v", c.Network.DefaultWeight)
	}
	if _, err := c.Network.ConnectionOptions(); err != nil {
		return err
	}

	if c.Backup.Retention.MaxCount < 0 {
		return fmt.Errorf("backup.retention.max_count must not be negative, got %d", c.Backup.Retention.MaxCount)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *CognaConfig) {
	if v := os.Getenv("COGNA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("COGNA_STORE_BACKEND"); v != "" {
		config.Store.Backend = v
	}

	if v := os.Getenv("COGNA_STORE_PATH"); v != "" {
		config.Store.Path = expandEnvVars(v)
	}

	if v := os.Getenv("COGNA_DEFAULT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Network.DefaultThreshold = f
		}
	}

	if v := os.Getenv("COGNA_DEFAULT_FUNCTION"); v != "" {
		config.Network.DefaultFunction = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
