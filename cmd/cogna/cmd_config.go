package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/Cycrus/COGNA/internal/backup"
	"github.com/Cycrus/COGNA/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cogna configuration",
		Long: `View and modify cogna configuration settings.

Configuration is stored in config.yaml inside the data directory
(~/.cogna by default). COGNA_* environment variables override it.

Examples:
  cogna config list                                # Show all settings
  cogna config get network.default_function        # Get a specific setting
  cogna config set network.default_function sigmoid
  cogna config set backup.retention.max_age 30d`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dataDir, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", filepath.Join(dataDir, config.ConfigFile), data)
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			dataDir, err := resolveDataDir(cmd)
			if err != nil {
				return err
			}
			// Read the file without environment overrides so they are not
			// persisted.
			configPath := filepath.Join(dataDir, config.ConfigFile)
			cfg, err := config.LoadFromFile(configPath)
			if errors.Is(err, fs.ErrNotExist) {
				cfg = config.Default()
			} else if err != nil {
				return err
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			if err := cfg.Save(configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return printJSON(cmd, map[string]string{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.CognaConfig, key string) (any, bool) {
	switch key {
	case "logging.level":
		return cfg.Logging.Level, true
	case "store.backend":
		return cfg.Store.Backend, true
	case "store.path":
		return cfg.Store.Path, true
	case "network.default_threshold":
		return cfg.Network.DefaultThreshold, true
	case "network.default_weight":
		return cfg.Network.DefaultWeight, true
	case "network.default_function":
		return cfg.Network.DefaultFunction, true
	case "network.default_activation_type":
		return cfg.Network.DefaultActivationType, true
	case "network.default_learning":
		return cfg.Network.DefaultLearning, true
	case "network.default_transmitter":
		return cfg.Network.DefaultTransmitter, true
	case "backup.compression":
		return cfg.Backup.Compression, true
	case "backup.retention.max_count":
		return cfg.Backup.Retention.MaxCount, true
	case "backup.retention.max_age":
		return cfg.Backup.Retention.MaxAge, true
	case "backup.retention.max_total_size":
		return cfg.Backup.Retention.MaxTotalSize, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key. Enum
// values are checked later by Validate.
func setConfigValue(cfg *config.CognaConfig, key, value string) error {
	switch key {
	case "logging.level":
		cfg.Logging.Level = value
	case "store.backend":
		cfg.Store.Backend = value
	case "store.path":
		cfg.Store.Path = value
	case "network.default_threshold", "network.default_weight":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %s", key, value)
		}
		if key == "network.default_threshold" {
			cfg.Network.DefaultThreshold = f
		} else {
			cfg.Network.DefaultWeight = f
		}
	case "network.default_function":
		cfg.Network.DefaultFunction = value
	case "network.default_activation_type":
		cfg.Network.DefaultActivationType = value
	case "network.default_learning":
		cfg.Network.DefaultLearning = value
	case "network.default_transmitter":
		cfg.Network.DefaultTransmitter = value
	case "backup.compression":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Backup.Compression = b
	case "backup.retention.max_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Backup.Retention.MaxCount = n
	case "backup.retention.max_age":
		if value != "" {
			if _, err := backup.ParseDuration(value); err != nil {
				return err
			}
		}
		cfg.Backup.Retention.MaxAge = value
	case "backup.retention.max_total_size":
		if value != "" {
			if _, err := backup.ParseSize(value); err != nil {
				return err
			}
		}
		cfg.Backup.Retention.MaxTotalSize = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
