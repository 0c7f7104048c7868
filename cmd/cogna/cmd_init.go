package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cycrus/COGNA/internal/config"
	"github.com/Cycrus/COGNA/internal/store"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the cogna data directory",
		Long: `Create the data directory, a default config.yaml and the network database.

An existing config.yaml is left untouched, so init is safe to run again.

Examples:
  cogna init                   # Initialize ~/.cogna
  cogna init --root ./brain    # Initialize a project-local data directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dataDir, err := resolveDataDir(cmd)
			if err != nil {
				return err
			}
			if err := store.EnsureDataDir(dataDir); err != nil {
				return err
			}

			configPath := filepath.Join(dataDir, config.ConfigFile)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.Default().Save(configPath); err != nil {
					return fmt.Errorf("failed to create %s: %w", config.ConfigFile, err)
				}
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			dbPath := store.DatabasePath(dataDir, w.cfg.Store.Path)
			if jsonOut {
				return printJSON(cmd, map[string]string{
					"status":   "initialized",
					"path":     dataDir,
					"config":   configPath,
					"database": dbPath,
					"backend":  w.cfg.Store.Backend,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized cogna in %s\n", dataDir)
			fmt.Fprintf(cmd.OutOrStdout(), "  Config:   %s\n", configPath)
			if w.cfg.Store.Backend == config.BackendSQLite {
				fmt.Fprintf(cmd.OutOrStdout(), "  Database: %s\n", dbPath)
			}
			return nil
		},
	}
}
