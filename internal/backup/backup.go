// Package backup provides portable backup and restore of stored networks.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/store"
	"github.com/google/uuid"
)

// BackupFormat is the payload of a backup file.
type BackupFormat struct {
	Version   int               `json:"version"`
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Networks  []neuron.Snapshot `json:"networks"`
}

// NeuronCount returns the number of neurons across all networks.
func (b *BackupFormat) NeuronCount() int {
	count := 0
	for _, n := range b.Networks {
		count += len(n.Neurons)
	}
	return count
}

// ConnectionCount returns the number of live connections across all networks.
func (b *BackupFormat) ConnectionCount() int {
	count := 0
	for _, n := range b.Networks {
		count += n.ConnectionCount()
	}
	return count
}

// NetworkNames returns the names of the backed up networks in file order.
func (b *BackupFormat) NetworkNames() []string {
	names := make([]string, 0, len(b.Networks))
	for _, n := range b.Networks {
		names = append(names, n.Name)
	}
	return names
}

// DefaultBackupDir returns dataDir/backups.
func DefaultBackupDir(dataDir string) string {
	return filepath.Join(dataDir, "backups")
}

// Options selects what Backup writes.
type Options struct {
	// Names limits the backup to these networks. Empty means all.
	Names []string
	// Compress writes the V2 format (header + gzip) instead of plain JSON.
	Compress bool
}

// Backup exports networks from the store to outputPath.
func Backup(ctx context.Context, s store.NetworkStore, outputPath string, opts Options) (*BackupFormat, error) {
	names := opts.Names
	if len(names) == 0 {
		infos, err := s.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list networks: %w", err)
		}
		for _, info := range infos {
			names = append(names, info.Name)
		}
	}

	version := FormatV1
	if opts.Compress {
		version = FormatV2
	}
	b := &BackupFormat{
		Version:   version,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Networks:  make([]neuron.Snapshot, 0, len(names)),
	}
	for _, name := range names {
		snap, err := s.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load network %s: %w", name, err)
		}
		b.Networks = append(b.Networks, *snap)
	}

	var err error
	if opts.Compress {
		err = WriteV2(outputPath, b)
	} else {
		err = WriteV1(outputPath, b)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// RestoreMode controls how restore handles networks that already exist.
type RestoreMode string

const (
	// RestoreMerge skips networks whose name is already stored (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace overwrites networks of the same name.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult contains statistics about the restore operation.
type RestoreResult struct {
	NetworksRestored    int `json:"networks_restored"`
	NetworksSkipped     int `json:"networks_skipped"`
	NeuronsRestored     int `json:"neurons_restored"`
	ConnectionsRestored int `json:"connections_restored"`
}

// Restore imports networks from a backup file of either format. Every
// network is checked by rebuilding it before anything is written, so a
// backup with one inconsistent network restores nothing.
func Restore(ctx context.Context, s store.NetworkStore, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	b, err := Read(inputPath)
	if err != nil {
		return nil, err
	}
	if b.Version != FormatV1 && b.Version != FormatV2 {
		return nil, fmt.Errorf("unsupported backup version: %d", b.Version)
	}

	for _, snap := range b.Networks {
		if _, err := neuron.Restore(snap); err != nil {
			return nil, fmt.Errorf("network %s is inconsistent: %w", snap.Name, err)
		}
	}

	existing := make(map[string]bool)
	if mode != RestoreReplace {
		infos, err := s.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list networks: %w", err)
		}
		for _, info := range infos {
			existing[info.Name] = true
		}
	}

	result := &RestoreResult{}
	for _, snap := range b.Networks {
		if existing[snap.Name] {
			result.NetworksSkipped++
			continue
		}
		if err := s.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to restore network %s: %w", snap.Name, err)
		}
		result.NetworksRestored++
		result.NeuronsRestored += len(snap.Neurons)
		result.ConnectionsRestored += snap.ConnectionCount()
	}
	return result, nil
}

// GenerateBackupPath creates a timestamped backup filename in the given directory.
func GenerateBackupPath(dir string, compress bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	ext := ".json"
	if compress {
		ext = ".json.gz"
	}
	return filepath.Join(dir, fmt.Sprintf("%s%s%s", backupPrefix, ts, ext))
}
