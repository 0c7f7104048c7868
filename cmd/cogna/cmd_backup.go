package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cycrus/COGNA/internal/backup"
	"github.com/Cycrus/COGNA/internal/config"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export stored networks to a backup file",
		Long: `Backup stored networks (neurons, connections and weights) to a file.

Default location: ~/.cogna/backups/cogna-backup-YYYYMMDD-HHMMSS.json.gz
Old backups are pruned according to the retention policy in config.yaml
(default: keep the last 10). The flags below override it for this run.

Examples:
  cogna backup                              # Backup every network (V2 compressed)
  cogna backup --networks vision,motor      # Backup selected networks
  cogna backup --output my-backup.json.gz   # Backup to a specific file
  cogna backup --no-compress                # Create V1 uncompressed backup
  cogna backup --keep 5 --max-age 30d       # Tighter retention
  cogna backup list                         # List all backups
  cogna backup verify <file>                # Verify backup integrity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			noCompress, _ := cmd.Flags().GetBool("no-compress")
			names, _ := cmd.Flags().GetStringSlice("networks")

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			retention := w.cfg.Backup.Retention
			if cmd.Flags().Changed("keep") {
				retention.MaxCount, _ = cmd.Flags().GetInt("keep")
			}
			if cmd.Flags().Changed("max-age") {
				retention.MaxAge, _ = cmd.Flags().GetString("max-age")
			}
			if cmd.Flags().Changed("max-size") {
				retention.MaxTotalSize, _ = cmd.Flags().GetString("max-size")
			}
			policy, err := buildRetentionPolicy(retention)
			if err != nil {
				return err
			}

			compress := w.cfg.Backup.Compression && !noCompress
			if outputPath == "" {
				outputPath = backup.GenerateBackupPath(backup.DefaultBackupDir(w.dataDir), compress)
			}

			result, err := backup.Backup(context.Background(), w.store, outputPath, backup.Options{
				Names:    names,
				Compress: compress,
			})
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			var deleted []string
			if policy != nil {
				deleted, err = backup.ApplyRetention(filepath.Dir(outputPath), policy)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
				}
			}

			var sizeBytes int64
			if info, err := os.Stat(outputPath); err == nil {
				sizeBytes = info.Size()
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"path":             outputPath,
					"id":               result.ID,
					"network_count":    len(result.Networks),
					"neuron_count":     result.NeuronCount(),
					"connection_count": result.ConnectionCount(),
					"version":          result.Version,
					"compressed":       compress,
					"size_bytes":       sizeBytes,
					"pruned":           len(deleted),
				})
			}

			versionLabel := "v2/gzip"
			if !compress {
				versionLabel = "v1/json"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backup created: %d networks, %d neurons, %d connections (%s, %s)\n",
				len(result.Networks), result.NeuronCount(), result.ConnectionCount(), versionLabel, humanize.Bytes(uint64(sizeBytes)))
			fmt.Fprintf(out, "  Path: %s\n", outputPath)
			if len(deleted) > 0 {
				fmt.Fprintf(out, "  Pruned %d old backups\n", len(deleted))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in ~/.cogna/backups/)")
	cmd.Flags().Bool("no-compress", false, "Create V1 uncompressed backup instead of V2 compressed")
	cmd.Flags().StringSlice("networks", nil, "Networks to back up (default: all)")
	cmd.Flags().Int("keep", 0, "Keep at most this many backups (0: no count limit)")
	cmd.Flags().String("max-age", "", "Delete backups older than this (e.g. 30d, 2w, 72h)")
	cmd.Flags().String("max-size", "", "Keep total backup size under this (e.g. 100MB)")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)

	return cmd
}

// buildRetentionPolicy constructs a retention policy from config. It returns
// nil when no limit is set.
func buildRetentionPolicy(cfg config.RetentionConfig) (backup.RetentionPolicy, error) {
	var policies []backup.RetentionPolicy

	if cfg.MaxCount > 0 {
		policies = append(policies, &backup.CountPolicy{MaxCount: cfg.MaxCount})
	}

	if cfg.MaxAge != "" {
		d, err := backup.ParseDuration(cfg.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid retention max_age: %w", err)
		}
		policies = append(policies, &backup.AgePolicy{MaxAge: d})
	}

	if cfg.MaxTotalSize != "" {
		s, err := backup.ParseSize(cfg.MaxTotalSize)
		if err != nil {
			return nil, fmt.Errorf("invalid retention max_total_size: %w", err)
		}
		policies = append(policies, &backup.SizePolicy{MaxTotalBytes: s})
	}

	switch len(policies) {
	case 0:
		return nil, nil
	case 1:
		return policies[0], nil
	default:
		return &backup.CompositePolicy{Policies: policies}, nil
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups with metadata",
		Long: `List all backup files in the backup directory with version,
format, size, and network/neuron/connection counts.

Examples:
  cogna backup list
  cogna backup list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			dataDir, err := resolveDataDir(cmd)
			if err != nil {
				return err
			}
			dir := backup.DefaultBackupDir(dataDir)

			backups, err := backup.ListBackups(dir)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			type entry struct {
				Path            string   `json:"path"`
				Version         int      `json:"version"`
				Size            int64    `json:"size_bytes"`
				CreatedAt       string   `json:"created_at"`
				Networks        []string `json:"networks,omitempty"`
				NetworkCount    int      `json:"network_count,omitempty"`
				NeuronCount     int      `json:"neuron_count,omitempty"`
				ConnectionCount int      `json:"connection_count,omitempty"`
				Checksum        string   `json:"checksum,omitempty"`
			}
			entries := make([]entry, 0, len(backups))
			var totalSize int64
			for _, b := range backups {
				totalSize += b.Size
				entries = append(entries, entry{
					Path:            b.Path,
					Version:         b.Version,
					Size:            b.Size,
					CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
					Networks:        b.Networks,
					NetworkCount:    len(b.Networks),
					NeuronCount:     b.NeuronCount,
					ConnectionCount: b.ConnectionCount,
					Checksum:        b.Checksum,
				})
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"backups":     entries,
					"total_count": len(entries),
					"total_bytes": totalSize,
					"directory":   dir,
				})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Backups in %s:\n", dir)
			for i, e := range entries {
				label := "v1  json"
				if e.Version == backup.FormatV2 {
					label = "v2  gzip"
				}
				fmt.Fprintf(out, "  %s  %s  %8s  %d networks  %d neurons  %d connections  %s\n",
					backups[i].CreatedAt.Format("2006-01-02 15:04"),
					label,
					humanize.Bytes(uint64(e.Size)),
					e.NetworkCount,
					e.NeuronCount,
					e.ConnectionCount,
					filepath.Base(e.Path),
				)
			}
			fmt.Fprintf(out, "Total: %d backups, %s\n", len(entries), humanize.Bytes(uint64(totalSize)))
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify backup file integrity",
		Long: `Verify the integrity of a backup file by checking its SHA-256 checksum.
Only applicable to V2 (compressed) backup files.

Examples:
  cogna backup verify ~/.cogna/backups/cogna-backup-20260206-120000.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			version, err := backup.DetectFormat(filePath)
			if err != nil {
				if jsonOut {
					printJSON(cmd, map[string]any{
						"file":  filePath,
						"valid": false,
						"error": err.Error(),
					})
				}
				return fmt.Errorf("failed to detect format: %w", err)
			}

			if version == backup.FormatV1 {
				if jsonOut {
					return printJSON(cmd, map[string]any{
						"file":    filePath,
						"version": backup.FormatV1,
						"valid":   true,
						"message": "V1 format: no checksum to verify (integrity check N/A)",
					})
				}
				fmt.Fprintf(out, "V1 format: no checksum to verify (integrity check N/A)\n")
				fmt.Fprintf(out, "  File: %s\n", filePath)
				return nil
			}

			if err := backup.VerifyChecksum(filePath); err != nil {
				if jsonOut {
					printJSON(cmd, map[string]any{
						"file":    filePath,
						"version": backup.FormatV2,
						"valid":   false,
						"error":   err.Error(),
					})
				} else {
					fmt.Fprintf(out, "FAILED: %v\n", err)
					fmt.Fprintf(out, "  File: %s\n", filePath)
				}
				return fmt.Errorf("checksum verification failed")
			}

			if jsonOut {
				return printJSON(cmd, map[string]any{
					"file":    filePath,
					"version": backup.FormatV2,
					"valid":   true,
					"message": "Checksum OK",
				})
			}
			fmt.Fprintf(out, "OK: checksum verified\n")
			fmt.Fprintf(out, "  File: %s\n", filePath)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Import networks from a backup file",
		Long: `Import networks from a V1 or V2 backup file.

In merge mode (default) networks that already exist are skipped. In replace
mode they are overwritten. Nothing is written if any network in the backup
is inconsistent.

Examples:
  cogna restore ~/.cogna/backups/cogna-backup-20260206-120000.json.gz
  cogna restore backup.json --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			modeName, _ := cmd.Flags().GetString("mode")

			mode := backup.RestoreMode(modeName)
			if mode != backup.RestoreMerge && mode != backup.RestoreReplace {
				return fmt.Errorf("invalid mode: %s (must be merge or replace)", modeName)
			}

			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			result, err := backup.Restore(context.Background(), w.store, args[0], mode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return printJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d networks (%d neurons, %d connections), skipped %d\n",
				result.NetworksRestored, result.NeuronsRestored, result.ConnectionsRestored, result.NetworksSkipped)
			return nil
		},
	}
	cmd.Flags().String("mode", string(backup.RestoreMerge), "Restore mode: merge or replace")
	return cmd
}
