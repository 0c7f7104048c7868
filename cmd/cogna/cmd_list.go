package main

import (
	"context"
	"fmt"

	"github.com/Cycrus/COGNA/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			infos, err := w.store.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list networks: %w", err)
			}

			if jsonOut {
				if infos == nil {
					infos = []store.SnapshotInfo{}
				}
				return printJSON(cmd, map[string]any{
					"networks": infos,
					"count":    len(infos),
				})
			}

			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No networks stored. Run 'cogna neuron add' to start one.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(out, "  %-20s %4d neurons  %4d connections  %8s  saved %s\n",
					info.Name, info.NeuronCount, info.ConnectionCount,
					humanize.Bytes(uint64(info.SizeBytes)), humanize.Time(info.SavedAt))
			}
			fmt.Fprintf(out, "Total: %d networks\n", len(infos))
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <network>",
		Short: "Delete a stored network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.store.Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete network %s: %w", args[0], err)
			}

			if jsonOut {
				return printJSON(cmd, map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted network %s\n", args[0])
			return nil
		},
	}
}
