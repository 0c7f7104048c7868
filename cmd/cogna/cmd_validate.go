package main

import (
	"context"
	"fmt"

	"github.com/Cycrus/COGNA/internal/store"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a stored network for consistency issues",
		Long: `Validate a stored network for consistency issues.

This command checks for:
  - Dangling targets (missing neurons, removed connections)
  - Self-references (a connection targeting itself)
  - Duplicate neuron-to-neuron edges
  - Slot numbers outside the owner's range
  - Back-reference lists that disagree with incoming edges

Examples:
  cogna validate
  cogna validate -n vision --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			issues, err := store.Validate(context.Background(), w.store, w.network)
			if err != nil {
				return fmt.Errorf("failed to validate network %s: %w", w.network, err)
			}

			if jsonOut {
				if issues == nil {
					issues = []store.ValidationError{}
				}
				return printJSON(cmd, map[string]any{
					"network": w.network,
					"valid":   len(issues) == 0,
					"issues":  issues,
				})
			}

			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "Network %s is valid\n", w.network)
				return nil
			}
			fmt.Fprintf(out, "Network %s has %d issues:\n", w.network, len(issues))
			for _, issue := range issues {
				fmt.Fprintf(out, "  %s\n", issue.String())
			}
			return fmt.Errorf("validation failed")
		},
	}
}
