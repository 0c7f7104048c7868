package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/spf13/cobra"
)

// parseTarget reads a neuron id ("N-2") or, when it contains '#', a
// connection ref ("C-1#0").
func parseTarget(s string) (neuron.Target, error) {
	if strings.Contains(s, "#") {
		ref, err := neuron.ParseConnectionRef(s)
		if err != nil {
			return neuron.Target{}, err
		}
		return neuron.ConnectionTarget(ref), nil
	}
	id, err := neuron.ParseNeuronID(s)
	if err != nil {
		return neuron.Target{}, err
	}
	return neuron.NeuronTarget(id), nil
}

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <from> <to>",
		Short: "Connect a neuron to another neuron",
		Long: `Create a feed-forward connection between two neurons.

A second connection between the same pair is rejected as a duplicate.

Examples:
  cogna connect N-1 N-2
  cogna connect N-1 N-2 --function sigmoid --weight 0.8
  cogna connect N-2 N-1 --activation-type inhibitory`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}
			to, err := neuron.ParseNeuronID(args[1])
			if err != nil {
				return err
			}
			return runConnect(cmd, func(net *neuron.Network, weight float64, opts []neuron.ConnectionOption) (*neuron.Connection, error) {
				return net.AddNeuronConnection(from, to, weight, opts...)
			})
		},
	}
	addConnectionFlags(cmd)
	return cmd
}

func newSynapseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synapse <from> <ref>",
		Short: "Connect a neuron to an existing connection (presynaptic edge)",
		Long: `Create a presynaptic connection from a neuron to an existing connection.

The target is a connection ref as printed by 'connect', e.g. C-1#0 for the
first connection owned by N-1.

Examples:
  cogna synapse N-3 C-1#0
  cogna synapse N-3 C-1#0 --activation-type inhibitory`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}
			ref, err := neuron.ParseConnectionRef(args[1])
			if err != nil {
				return err
			}
			return runConnect(cmd, func(net *neuron.Network, weight float64, opts []neuron.ConnectionOption) (*neuron.Connection, error) {
				return net.AddSynapticConnection(from, ref, weight, opts...)
			})
		},
	}
	addConnectionFlags(cmd)
	return cmd
}

type connectFunc func(net *neuron.Network, weight float64, opts []neuron.ConnectionOption) (*neuron.Connection, error)

func runConnect(cmd *cobra.Command, add connectFunc) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	w, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer w.Close()

	weight, opts, err := w.connectionOptions(cmd)
	if err != nil {
		return err
	}

	var view connectionView
	err = w.update(context.Background(), func(net *neuron.Network) error {
		c, err := add(net, weight, opts)
		if err != nil {
			return err
		}
		view = viewConnection(c)
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd, map[string]any{
			"network":    w.network,
			"connection": view,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s -> %s (%s, %s, weight %g)\n",
		view.Ref, view.Target, view.ActivationType, view.Function, weight)
	return nil
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <from> <to|ref>",
		Short: "Remove a connection",
		Long: `Remove the connection from a neuron to a neuron or to a connection ref.

Presynaptic connections that modulated the removed connection are removed too.

Examples:
  cogna disconnect N-1 N-2
  cogna disconnect N-3 C-1#0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			from, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}
			target, err := parseTarget(args[1])
			if err != nil {
				return err
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			err = w.update(context.Background(), func(net *neuron.Network) error {
				if id, ok := target.Neuron(); ok {
					return net.DelConnection(from, id)
				}
				ref, _ := target.Connection()
				return net.DelSynapticConnection(from, ref)
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, map[string]string{
					"network": w.network,
					"from":    from.String(),
					"target":  target.String(),
					"status":  "removed",
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s -> %s\n", from, target)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <from> <to|ref>",
		Short: "Report whether an edge already exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			from, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}
			target, err := parseTarget(args[1])
			if err != nil {
				return err
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			net, err := w.view(context.Background())
			if err != nil {
				return err
			}
			if _, ok := net.Neuron(from); !ok {
				return fmt.Errorf("%w: %s", neuron.ErrNeuronNotFound, from)
			}

			var exists bool
			if id, ok := target.Neuron(); ok {
				exists = net.CheckNeuronConnection(from, id)
			} else {
				ref, _ := target.Connection()
				if exists, err = net.CheckSynapticConnection(from, ref); err != nil {
					return err
				}
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"network": w.network,
					"from":    from.String(),
					"target":  target.String(),
					"exists":  exists,
				})
			}
			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s exists\n", from, target)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s does not exist\n", from, target)
			}
			return nil
		},
	}
}

func newWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weight <from> <to>",
		Short: "Read a connection weight",
		Long: `Read the base, short or long weight of the connection between two neurons.

Examples:
  cogna weight N-1 N-2                # short-term weight
  cogna weight N-1 N-2 --tier long`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			tierName, _ := cmd.Flags().GetString("tier")
			from, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}
			to, err := neuron.ParseNeuronID(args[1])
			if err != nil {
				return err
			}
			tier, err := neuron.ParseWeightTier(tierName)
			if err != nil {
				return err
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			net, err := w.view(context.Background())
			if err != nil {
				return err
			}
			weight, err := net.GetWeight(from, to, tier)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"network": w.network,
					"from":    from.String(),
					"to":      to.String(),
					"tier":    tier.String(),
					"weight":  weight,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", weight)
			return nil
		},
	}
	cmd.Flags().String("tier", "short", "Weight tier: base, short or long")
	return cmd
}

func newTransmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transmit <ref> <input>",
		Short: "Apply a connection's activation function to an input",
		Long: `Pass an input signal through a connection's activation function.

Examples:
  cogna transmit C-1#0 0.5
  cogna transmit C-1#0 -- -2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ref, err := neuron.ParseConnectionRef(args[0])
			if err != nil {
				return err
			}
			input, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid input %q: %w", args[1], err)
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			net, err := w.view(context.Background())
			if err != nil {
				return err
			}
			c, ok := net.Connection(ref)
			if !ok {
				return fmt.Errorf("%w: %s", neuron.ErrEdgeNotFound, ref)
			}
			output, err := net.Transmit(c, input)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"network":  w.network,
					"ref":      ref.String(),
					"function": c.Function.String(),
					"input":    input,
					"output":   output,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", output)
			return nil
		},
	}
}
