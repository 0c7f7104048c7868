package main

import (
	"context"
	"fmt"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/spf13/cobra"
)

func newNeuronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neuron",
		Short: "Add, remove or inspect neurons",
		Long: `Manage the neurons of a network.

Examples:
  cogna neuron add --threshold 0.5
  cogna neuron show N-1
  cogna neuron rm N-1 -n vision`,
	}

	cmd.AddCommand(
		newNeuronAddCmd(),
		newNeuronRemoveCmd(),
		newNeuronShowCmd(),
	)
	return cmd
}

func newNeuronAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a neuron",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			count, _ := cmd.Flags().GetInt("count")
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			threshold := w.cfg.Network.DefaultThreshold
			if cmd.Flags().Changed("threshold") {
				threshold, _ = cmd.Flags().GetFloat64("threshold")
			}

			var ids []string
			err = w.update(context.Background(), func(net *neuron.Network) error {
				for i := 0; i < count; i++ {
					ids = append(ids, net.AddNeuron(threshold).String())
				}
				return nil
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"network":   w.network,
					"neurons":   ids,
					"threshold": threshold,
				})
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (threshold %g)\n", id, w.network, threshold)
			}
			return nil
		},
	}

	cmd.Flags().Float64("threshold", 0, "Activation threshold (default from config)")
	cmd.Flags().Int("count", 1, "Number of neurons to add")
	return cmd
}

func newNeuronRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a neuron and every connection touching it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			id, err := neuron.ParseNeuronID(args[0])
			if err != nil {
				return err
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			err = w.update(context.Background(), func(net *neuron.Network) error {
				return net.RemoveNeuron(id)
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd, map[string]string{
					"network": w.network,
					"removed": id.String(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s and its connections\n", id)
			return nil
		},
	}
}

// neuronView is the JSON shape of one neuron in command output.
type neuronView struct {
	ID          string           `json:"id"`
	Threshold   float64          `json:"threshold"`
	Activation  float64          `json:"activation"`
	Active      bool             `json:"active"`
	Previous    []string         `json:"previous"`
	Connections []connectionView `json:"connections"`
}

type connectionView struct {
	Ref            string  `json:"ref"`
	Target         string  `json:"target"`
	ActivationType string  `json:"activation_type"`
	Function       string  `json:"function"`
	Learning       string  `json:"learning"`
	Transmitter    string  `json:"transmitter"`
	BaseWeight     float64 `json:"base_weight"`
	ShortWeight    float64 `json:"short_weight"`
	LongWeight     float64 `json:"long_weight"`
}

func viewConnection(c *neuron.Connection) connectionView {
	return connectionView{
		Ref:            c.Ref().String(),
		Target:         c.Target().String(),
		ActivationType: c.ActivationType.String(),
		Function:       c.Function.String(),
		Learning:       c.Learning.String(),
		Transmitter:    c.Transmitter.String(),
		BaseWeight:     c.BaseWeight,
		ShortWeight:    c.ShortWeight,
		LongWeight:     c.LongWeight,
	}
}

func viewNeuron(n *neuron.Neuron) neuronView {
	v := neuronView{
		ID:          n.String(),
		Threshold:   n.Threshold,
		Activation:  n.Activation,
		Active:      n.IsActive(),
		Previous:    []string{},
		Connections: []connectionView{},
	}
	for _, id := range n.Previous() {
		v.Previous = append(v.Previous, id.String())
	}
	for _, c := range n.Connections() {
		v.Connections = append(v.Connections, viewConnection(c))
	}
	return v
}

func newNeuronShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a neuron and its outgoing connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			id, err := neuron.ParseNeuronID(args[0])
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
			n, ok := net.Neuron(id)
			if !ok {
				return fmt.Errorf("%w: %s", neuron.ErrNeuronNotFound, id)
			}
			v := viewNeuron(n)

			if jsonOut {
				return printJSON(cmd, v)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  threshold=%g  activation=%g  active=%v\n", v.ID, v.Threshold, v.Activation, v.Active)
			if len(v.Previous) > 0 {
				fmt.Fprintf(out, "  Previous: %v\n", v.Previous)
			}
			for _, c := range v.Connections {
				fmt.Fprintf(out, "  %s -> %s  %s %s  base=%g short=%g long=%g\n",
					c.Ref, c.Target, c.ActivationType, c.Function, c.BaseWeight, c.ShortWeight, c.LongWeight)
			}
			return nil
		},
	}
}
