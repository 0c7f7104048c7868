package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/store"
	"github.com/Cycrus/COGNA/internal/visualization"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize a network",
		Long: `Output a network in DOT (Graphviz), JSON, or HTML format.

--serve starts a local page that reloads the network on every request and
can transmit test signals through connections.

Examples:
  cogna graph | dot -Tsvg > net.svg
  cogna graph --format json
  cogna graph --format html -o net.html
  cogna graph --serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			noOpen, _ := cmd.Flags().GetBool("no-open")
			serve, _ := cmd.Flags().GetBool("serve")
			if serve {
				format = string(visualization.FormatHTML)
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := context.Background()
			if serve {
				return runGraphServer(cmd, ctx, w, noOpen)
			}

			net, err := w.view(ctx)
			if err != nil {
				return err
			}

			switch visualization.Format(format) {
			case visualization.FormatDOT:
				fmt.Fprint(cmd.OutOrStdout(), visualization.RenderDOT(net, w.network))

			case visualization.FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(visualization.RenderJSON(net)); err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}

			case visualization.FormatHTML:
				return writeStaticHTML(cmd, net, w.network, output, noOpen)

			default:
				return fmt.Errorf("unsupported format %q (use 'dot', 'json', or 'html')", format)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot, json, or html")
	cmd.Flags().StringP("output", "o", "", "Output file path (html format only)")
	cmd.Flags().Bool("no-open", false, "Don't open browser after generating HTML")
	cmd.Flags().Bool("serve", false, "Start a local server that renders the live network")

	return cmd
}

// writeStaticHTML renders the network to a self-contained HTML file.
func writeStaticHTML(cmd *cobra.Command, net *neuron.Network, name, output string, noOpen bool) error {
	htmlBytes, err := visualization.RenderHTML(net, name)
	if err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}

	outPath := output
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), "cogna-"+name+".html")
	}

	if err := os.WriteFile(outPath, htmlBytes, 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", outPath)

	if !noOpen {
		if err := visualization.OpenBrowser(outPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, outPath)
		}
	}
	return nil
}

// runGraphServer serves the live network and blocks until Ctrl-C.
func runGraphServer(cmd *cobra.Command, ctx context.Context, w *workspace, noOpen bool) error {
	srv := visualization.NewServer(func(ctx context.Context) (*neuron.Network, error) {
		return store.LoadNetwork(ctx, w.store, w.network)
	}, w.network)

	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			srvCancel()
		case <-srvCtx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	// Wait for server to start
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Addr() != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Graph server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
