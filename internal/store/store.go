// Package store defines the NetworkStore interface for persisting named
// network snapshots, with in-memory and SQLite backends.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
)

// ErrNotFound is returned when no snapshot is stored under a name.
var ErrNotFound = errors.New("network not found")

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// SnapshotInfo summarizes a stored snapshot without loading its neurons.
type SnapshotInfo struct {
	Name            string    `json:"name"`
	ID              string    `json:"id"`
	NeuronCount     int       `json:"neuron_count"`
	ConnectionCount int       `json:"connection_count"`
	SizeBytes       int64     `json:"size_bytes"`
	SavedAt         time.Time `json:"saved_at"`
}

// NetworkStore persists network snapshots by name.
type NetworkStore interface {
	// Save stores snap under snap.Name, replacing any previous snapshot
	// of that name.
	Save(ctx context.Context, snap neuron.Snapshot) error

	// Load returns the snapshot stored under name, or ErrNotFound.
	Load(ctx context.Context, name string) (*neuron.Snapshot, error)

	// List returns every stored snapshot ordered by name.
	List(ctx context.Context) ([]SnapshotInfo, error)

	// Delete removes the snapshot stored under name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	Close() error
}

// New opens the store selected by backend. path is the SQLite database
// file and is ignored by the memory backend.
func New(backend, path string) (NetworkStore, error) {
	switch backend {
	case BackendMemory:
		return NewInMemoryStore(), nil
	case BackendSQLite, "":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// LoadNetwork loads and restores the network stored under name.
func LoadNetwork(ctx context.Context, s NetworkStore, name string) (*neuron.Network, error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	net, err := neuron.Restore(*snap)
	if err != nil {
		return nil, fmt.Errorf("restoring network %s: %w", name, err)
	}
	return net, nil
}

// LoadOrCreate is LoadNetwork, except that an unknown name yields an empty
// network whose ids start at 1.
func LoadOrCreate(ctx context.Context, s NetworkStore, name string) (*neuron.Network, error) {
	net, err := LoadNetwork(ctx, s, name)
	if errors.Is(err, ErrNotFound) {
		return neuron.NewNetwork(neuron.NewIDAllocator(1)), nil
	}
	return net, err
}

// SaveNetwork snapshots net under name and stores it.
func SaveNetwork(ctx context.Context, s NetworkStore, name string, net *neuron.Network) error {
	return s.Save(ctx, net.Snapshot(name))
}
