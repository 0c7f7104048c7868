package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/sanitize"
)

type memoryEntry struct {
	data []byte
	info SnapshotInfo
}

// InMemoryStore implements NetworkStore for testing and short-lived
// sessions. Snapshots are kept encoded so callers never share state with
// the store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry)}
}

// Save stores snap under its name.
func (s *InMemoryStore) Save(ctx context.Context, snap neuron.Snapshot) error {
	if err := sanitize.ValidateNetworkName(snap.Name); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding network %s: %w", snap.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[snap.Name] = memoryEntry{
		data: data,
		info: SnapshotInfo{
			Name:            snap.Name,
			ID:              snap.ID,
			NeuronCount:     len(snap.Neurons),
			ConnectionCount: snap.ConnectionCount(),
			SizeBytes:       int64(len(data)),
			SavedAt:         time.Now().UTC(),
		},
	}
	return nil
}

// Load returns a fresh copy of the snapshot stored under name.
func (s *InMemoryStore) Load(ctx context.Context, name string) (*neuron.Snapshot, error) {
	s.mu.RLock()
	entry, ok := s.entries[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var snap neuron.Snapshot
	if err := json.Unmarshal(entry.data, &snap); err != nil {
		return nil, fmt.Errorf("decoding network %s: %w", name, err)
	}
	return &snap, nil
}

// List returns every stored snapshot ordered by name.
func (s *InMemoryStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SnapshotInfo, 0, len(s.entries))
	for _, entry := range s.entries {
		infos = append(infos, entry.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the snapshot stored under name.
func (s *InMemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(s.entries, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
