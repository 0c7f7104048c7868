package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cogna",
		Short: "Spiking neuron network editor",
		Long: `cogna builds and inspects networks of spiking neurons.

Neurons are joined by weighted connections. A connection can target another
neuron or, as a presynaptic edge, another connection. Networks are stored by
name in ~/.cogna/cogna.db and can be edited from the command line or by an
agent through the MCP server.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", "", "Data directory (default ~/.cogna)")
	rootCmd.PersistentFlags().StringP("network", "n", defaultNetwork, "Network to operate on")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newNeuronCmd(),
		newConnectCmd(),
		newSynapseCmd(),
		newDisconnectCmd(),
		newCheckCmd(),
		newWeightCmd(),
		newTransmitCmd(),
		newGraphCmd(),
		newListCmd(),
		newDeleteCmd(),
		newValidateCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}
