package main

import (
	"context"
	"fmt"

	"github.com/Cycrus/COGNA/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Expose network editing to AI agents over the Model Context Protocol.

The server speaks JSON-RPC on stdin/stdout. Logs go to stderr. Tool calls
are appended to audit.jsonl in the data directory unless --no-audit is set.
The cogna_backup and cogna_restore tools only read and write files under
the data directory's backups/ folder.

Example client configuration:
  {"command": "cogna", "args": ["mcp-server", "-n", "default"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noAudit, _ := cmd.Flags().GetBool("no-audit")

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.events.Close()

			auditDir := w.dataDir
			if noAudit {
				auditDir = ""
			}

			retention, err := buildRetentionPolicy(w.cfg.Backup.Retention)
			if err != nil {
				w.Close()
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:           "cogna",
				Version:        version,
				Store:          w.store,
				DefaultNetwork: w.network,
				Defaults:       w.cfg.Network,
				Logger:         w.logger,
				Events:         w.events,
				AuditDir:       auditDir,
				DataDir:        w.dataDir,
				BackupCompress: w.cfg.Backup.Compression,
				Retention:      retention,
			})
			if err != nil {
				w.store.Close()
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			return server.Run(context.Background())
		},
	}
	cmd.Flags().Bool("no-audit", false, "Do not write audit.jsonl")
	return cmd
}
