package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Cycrus/COGNA/internal/config"
	"github.com/Cycrus/COGNA/internal/logging"
	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/sanitize"
	"github.com/Cycrus/COGNA/internal/store"
	"github.com/spf13/cobra"
)

const defaultNetwork = "default"

// workspace is the state every network command needs: the resolved data
// directory, its configuration and an open store.
type workspace struct {
	dataDir string
	cfg     *config.CognaConfig
	network string
	store   store.NetworkStore
	logger  *slog.Logger
	events  *logging.EventLogger
}

// resolveDataDir returns --root, or ~/.cogna when it is unset.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("root")
	if root != "" {
		return root, nil
	}
	return config.DataDir()
}

// loadConfig resolves the data directory and loads its validated config.
func loadConfig(cmd *cobra.Command) (string, *config.CognaConfig, error) {
	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.LoadDir(dataDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid config: %w", err)
	}
	return dataDir, cfg, nil
}

// openWorkspace loads config and opens the store. The data directory must
// already exist unless the memory backend is configured.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dataDir, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend != config.BackendMemory {
		if _, err := os.Stat(dataDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("cogna not initialized at %s. Run 'cogna init' first", dataDir)
		}
	}

	network, _ := cmd.Flags().GetString("network")
	if network == "" {
		network = defaultNetwork
	}
	if err := sanitize.ValidateNetworkName(network); err != nil {
		return nil, err
	}

	s, err := store.New(cfg.Store.Backend, store.DatabasePath(dataDir, cfg.Store.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	return &workspace{
		dataDir: dataDir,
		cfg:     cfg,
		network: network,
		store:   s,
		logger:  logger,
		events:  logging.NewEventLogger(dataDir, cfg.Logging.Level),
	}, nil
}

func (w *workspace) Close() error {
	w.events.Close()
	return w.store.Close()
}

// update loads the current network (or an empty one), applies fn and saves
// the result. Nothing is saved when fn fails.
func (w *workspace) update(ctx context.Context, fn func(*neuron.Network) error) error {
	net, err := store.LoadOrCreate(ctx, w.store, w.network)
	if err != nil {
		return fmt.Errorf("failed to load network %s: %w", w.network, err)
	}
	net.SetLogger(w.logger.With("network", w.network), w.events)
	if err := fn(net); err != nil {
		return err
	}
	if err := store.SaveNetwork(ctx, w.store, w.network, net); err != nil {
		return fmt.Errorf("failed to save network %s: %w", w.network, err)
	}
	return nil
}

// view loads the current network for reading.
func (w *workspace) view(ctx context.Context) (*neuron.Network, error) {
	net, err := store.LoadNetwork(ctx, w.store, w.network)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("network %q not found: %w", w.network, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load network %s: %w", w.network, err)
	}
	net.SetLogger(w.logger.With("network", w.network), w.events)
	return net, nil
}

// connectionOptions reads the connection flags on top of the configured defaults.
func (w *workspace) connectionOptions(cmd *cobra.Command) (float64, []neuron.ConnectionOption, error) {
	weight := w.cfg.Network.DefaultWeight
	if cmd.Flags().Changed("weight") {
		weight, _ = cmd.Flags().GetFloat64("weight")
	}
	activationType, _ := cmd.Flags().GetString("activation-type")
	function, _ := cmd.Flags().GetString("function")
	learning, _ := cmd.Flags().GetString("learning")
	transmitter, _ := cmd.Flags().GetString("transmitter")

	opts, err := w.cfg.Network.Override(config.ConnectionOverrides{
		ActivationType: activationType,
		Function:       function,
		Learning:       learning,
		Transmitter:    transmitter,
	}).ConnectionOptions()
	if err != nil {
		return 0, nil, err
	}
	return weight, opts, nil
}

func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("weight", 0, "Initial weight of every tier (default from config)")
	cmd.Flags().String("function", "", "Activation function: sigmoid, linear or relu (default from config)")
	cmd.Flags().String("activation-type", "", "excitatory, inhibitory or nondirectional (default from config)")
	cmd.Flags().String("learning", "", "none, habituation, sensitization or habisens (default from config)")
	cmd.Flags().String("transmitter", "", "none or standard (default from config)")
}

func printJSON(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}
