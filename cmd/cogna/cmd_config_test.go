package main

import (
	"strings"
	"testing"

	"github.com/Cycrus/COGNA/internal/config"
)

func TestGetSetConfigValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"logging.level", "debug", "debug"},
		{"store.backend", "memory", "memory"},
		{"store.path", "/tmp/x.db", "/tmp/x.db"},
		{"network.default_threshold", "0.25", 0.25},
		{"network.default_weight", "-1.5", -1.5},
		{"network.default_function", "sigmoid", "sigmoid"},
		{"network.default_activation_type", "inhibitory", "inhibitory"},
		{"network.default_learning", "habituation", "habituation"},
		{"network.default_transmitter", "none", "none"},
		{"backup.compression", "false", false},
		{"backup.retention.max_count", "3", 3},
		{"backup.retention.max_age", "2w", "2w"},
		{"backup.retention.max_total_size", "50MB", "50MB"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := config.Default()
			if err := setConfigValue(cfg, tt.key, tt.value); err != nil {
				t.Fatalf("setConfigValue(%q, %q) error = %v", tt.key, tt.value, err)
			}
			got, ok := getConfigValue(cfg, tt.key)
			if !ok {
				t.Fatalf("getConfigValue(%q) not found", tt.key)
			}
			if got != tt.want {
				t.Errorf("getConfigValue(%q) = %v, want %v", tt.key, got, tt.want)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() after set error = %v", err)
			}
		})
	}
}

func TestSetConfigValueErrors(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"network.default_threshold", "high"},
		{"backup.compression", "sometimes"},
		{"backup.retention.max_count", "many"},
		{"backup.retention.max_age", "forever"},
		{"backup.retention.max_total_size", "huge"},
		{"llm.provider", "anthropic"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := setConfigValue(config.Default(), tt.key, tt.value); err == nil {
				t.Errorf("setConfigValue(%q, %q) error = nil, want error", tt.key, tt.value)
			}
		})
	}

	if _, ok := getConfigValue(config.Default(), "llm.provider"); ok {
		t.Error("getConfigValue() found an unknown key")
	}
}

func TestConfigCmd(t *testing.T) {
	dataDir := initDataDir(t)

	mustRun(t, "config", "set", "network.default_function", "sigmoid", "--root", dataDir)
	if out := mustRun(t, "config", "get", "network.default_function", "--root", dataDir); out != "network.default_function = sigmoid\n" {
		t.Errorf("config get = %q", out)
	}

	// Values that parse but fail validation are not saved.
	if _, err := runCLI(t, "config", "set", "network.default_function", "tanh", "--root", dataDir); err == nil {
		t.Error("config set accepted an unknown function")
	}
	if _, err := runCLI(t, "config", "get", "nope", "--root", dataDir); err == nil {
		t.Error("config get accepted an unknown key")
	}

	var cfg config.CognaConfig
	decodeJSON(t, mustRun(t, "config", "list", "--json", "--root", dataDir), &cfg)
	if cfg.Network.DefaultFunction != "sigmoid" {
		t.Errorf("config list default_function = %q, want sigmoid", cfg.Network.DefaultFunction)
	}
	if out := mustRun(t, "config", "list", "--root", dataDir); !strings.Contains(out, "default_function: sigmoid") {
		t.Errorf("config list output missing setting:\n%s", out)
	}

	// New connections pick up the configured default.
	mustRun(t, "neuron", "add", "--count", "2", "--root", dataDir)
	var created struct {
		Connection connectionView `json:"connection"`
	}
	decodeJSON(t, mustRun(t, "connect", "N-1", "N-2", "--json", "--root", dataDir), &created)
	if created.Connection.Function != "sigmoid" {
		t.Errorf("connection function = %q, want configured sigmoid", created.Connection.Function)
	}
}

func TestConfigEnvOverrideNotPersisted(t *testing.T) {
	dataDir := initDataDir(t)
	t.Setenv("COGNA_DEFAULT_FUNCTION", "linear")

	if out := mustRun(t, "config", "get", "network.default_function", "--root", dataDir); !strings.Contains(out, "linear") {
		t.Errorf("env override not visible: %q", out)
	}

	mustRun(t, "config", "set", "network.default_weight", "0.5", "--root", dataDir)
	t.Setenv("COGNA_DEFAULT_FUNCTION", "")
	if out := mustRun(t, "config", "get", "network.default_function", "--root", dataDir); !strings.Contains(out, "relu") {
		t.Errorf("env override was persisted: %q", out)
	}
}
