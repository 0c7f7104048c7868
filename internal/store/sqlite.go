package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/sanitize"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements NetworkStore on a SQLite database. Each snapshot
// is normalized into networks, neurons and connections rows.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.dbPath }

// Save replaces the rows of snap.Name with snap in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap neuron.Snapshot) error {
	if err := sanitize.ValidateNetworkName(snap.Name); err != nil {
		return err
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding network %s: %w", snap.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Neurons and connections go with the network row.
	if _, err := tx.ExecContext(ctx, `DELETE FROM networks WHERE name = ?`, snap.Name); err != nil {
		return fmt.Errorf("failed to clear network %s: %w", snap.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO networks (name, id, snapshot_version, next_id, size_bytes, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.Name, snap.ID, snap.SchemaVersion, int64(snap.NextID), len(encoded),
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert network %s: %w", snap.Name, err)
	}

	neuronStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO neurons (
			network, id, position, threshold, activation, temp_activation,
			last_activated_step, last_fired_step, was_activated,
			random_enabled, random_chance, random_value, curves,
			habituation_threshold, sensitization_threshold,
			influenced_transmitter, influence_direction, previous, slots
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare neuron insert: %w", err)
	}
	defer neuronStmt.Close()

	connStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO connections (
			network, owner, slot, target_kind, target_neuron, target_owner, target_slot,
			activation_type, function, learning, transmitter,
			base_weight, short_weight, long_weight, long_learning_weight,
			presynaptic_potential, last_activated_step, last_presynaptic_activated_step
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare connection insert: %w", err)
	}
	defer connStmt.Close()

	for pos, n := range snap.Neurons {
		curves, err := marshalOptional(n.Curves, len(n.Curves) > 0)
		if err != nil {
			return fmt.Errorf("encoding curves of N-%d: %w", n.ID, err)
		}
		previous, err := marshalOptional(n.Previous, len(n.Previous) > 0)
		if err != nil {
			return fmt.Errorf("encoding back-references of N-%d: %w", n.ID, err)
		}

		if _, err := neuronStmt.ExecContext(ctx,
			snap.Name, int64(n.ID), pos, n.Threshold, n.Activation, n.TempActivation,
			n.LastActivatedStep, n.LastFiredStep, boolToInt(n.WasActivated),
			boolToInt(n.Random.Enabled), n.Random.Chance, n.Random.Value, curves,
			n.HabituationThreshold, n.SensitizationThreshold,
			int(n.InfluencedTransmitter), int(n.TransmitterInfluenceDirection), previous, n.Slots,
		); err != nil {
			return fmt.Errorf("failed to insert N-%d: %w", n.ID, err)
		}

		for _, c := range n.Connections {
			var targetNeuron, targetOwner, targetSlot sql.NullInt64
			kind := c.Target.Kind()
			switch kind {
			case neuron.TargetNeuron:
				id, _ := c.Target.Neuron()
				targetNeuron = sql.NullInt64{Int64: int64(id), Valid: true}
			case neuron.TargetConnection:
				ref, _ := c.Target.Connection()
				targetOwner = sql.NullInt64{Int64: int64(ref.Neuron), Valid: true}
				targetSlot = sql.NullInt64{Int64: int64(ref.Slot), Valid: true}
			default:
				return fmt.Errorf("connection N-%d#%d has no target", n.ID, c.Slot)
			}

			if _, err := connStmt.ExecContext(ctx,
				snap.Name, int64(n.ID), c.Slot, kind.String(), targetNeuron, targetOwner, targetSlot,
				int(c.ActivationType), int(c.Function), int(c.Learning), int(c.Transmitter),
				c.BaseWeight, c.ShortWeight, c.LongWeight, c.LongLearningWeight,
				c.PresynapticPotential, c.LastActivatedStep, c.LastPresynapticActivatedStep,
			); err != nil {
				return fmt.Errorf("failed to insert connection N-%d#%d: %w", n.ID, c.Slot, err)
			}
		}
	}

	return tx.Commit()
}

// Load reassembles the snapshot stored under name.
func (s *SQLiteStore) Load(ctx context.Context, name string) (*neuron.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &neuron.Snapshot{Name: name}
	var nextID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, snapshot_version, next_id FROM networks WHERE name = ?`, name,
	).Scan(&snap.ID, &snap.SchemaVersion, &nextID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query network %s: %w", name, err)
	}
	snap.NextID = neuron.NeuronID(nextID)

	neurons, index, err := s.loadNeurons(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.loadConnections(ctx, name, neurons, index); err != nil {
		return nil, err
	}
	snap.Neurons = neurons
	return snap, nil
}

func (s *SQLiteStore) loadNeurons(ctx context.Context, name string) ([]neuron.NeuronRecord, map[neuron.NeuronID]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, threshold, activation, temp_activation,
			last_activated_step, last_fired_step, was_activated,
			random_enabled, random_chance, random_value, curves,
			habituation_threshold, sensitization_threshold,
			influenced_transmitter, influence_direction, previous, slots
		FROM neurons WHERE network = ? ORDER BY position`, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query neurons: %w", err)
	}
	defer rows.Close()

	var neurons []neuron.NeuronRecord
	index := make(map[neuron.NeuronID]int)
	for rows.Next() {
		var (
			n                         neuron.NeuronRecord
			id                        int64
			wasActivated, randEnabled int
			influenced, direction     int
			curves, previous          sql.NullString
		)
		if err := rows.Scan(&id, &n.Threshold, &n.Activation, &n.TempActivation,
			&n.LastActivatedStep, &n.LastFiredStep, &wasActivated,
			&randEnabled, &n.Random.Chance, &n.Random.Value, &curves,
			&n.HabituationThreshold, &n.SensitizationThreshold,
			&influenced, &direction, &previous, &n.Slots,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan neuron: %w", err)
		}
		n.ID = neuron.NeuronID(id)
		n.WasActivated = wasActivated != 0
		n.Random.Enabled = randEnabled != 0
		n.InfluencedTransmitter = neuron.TransmitterType(influenced)
		n.TransmitterInfluenceDirection = neuron.Influence(direction)
		if curves.Valid {
			if err := json.Unmarshal([]byte(curves.String), &n.Curves); err != nil {
				return nil, nil, fmt.Errorf("decoding curves of N-%d: %w", id, err)
			}
		}
		if previous.Valid {
			if err := json.Unmarshal([]byte(previous.String), &n.Previous); err != nil {
				return nil, nil, fmt.Errorf("decoding back-references of N-%d: %w", id, err)
			}
		}
		index[n.ID] = len(neurons)
		neurons = append(neurons, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate neurons: %w", err)
	}
	return neurons, index, nil
}

func (s *SQLiteStore) loadConnections(ctx context.Context, name string, neurons []neuron.NeuronRecord, index map[neuron.NeuronID]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner, slot, target_kind, target_neuron, target_owner, target_slot,
			activation_type, function, learning, transmitter,
			base_weight, short_weight, long_weight, long_learning_weight,
			presynaptic_potential, last_activated_step, last_presynaptic_activated_step
		FROM connections WHERE network = ? ORDER BY owner, slot`, name)
	if err != nil {
		return fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                                     neuron.ConnectionRecord
			owner                                 int64
			kind                                  string
			targetNeuron, targetOwner, targetSlot sql.NullInt64
			activationType, function              int
			learning, transmitter                 int
		)
		if err := rows.Scan(&owner, &c.Slot, &kind, &targetNeuron, &targetOwner, &targetSlot,
			&activationType, &function, &learning, &transmitter,
			&c.BaseWeight, &c.ShortWeight, &c.LongWeight, &c.LongLearningWeight,
			&c.PresynapticPotential, &c.LastActivatedStep, &c.LastPresynapticActivatedStep,
		); err != nil {
			return fmt.Errorf("failed to scan connection: %w", err)
		}

		switch kind {
		case neuron.TargetNeuron.String():
			if !targetNeuron.Valid {
				return fmt.Errorf("connection N-%d#%d: neuron target without id", owner, c.Slot)
			}
			c.Target = neuron.NeuronTarget(neuron.NeuronID(targetNeuron.Int64))
		case neuron.TargetConnection.String():
			if !targetOwner.Valid || !targetSlot.Valid {
				return fmt.Errorf("connection N-%d#%d: connection target without ref", owner, c.Slot)
			}
			c.Target = neuron.ConnectionTarget(neuron.ConnectionRef{
				Neuron: neuron.NeuronID(targetOwner.Int64),
				Slot:   int(targetSlot.Int64),
			})
		default:
			return fmt.Errorf("connection N-%d#%d: unknown target kind %q", owner, c.Slot, kind)
		}
		c.ActivationType = neuron.ActivationType(activationType)
		c.Function = neuron.FunctionKind(function)
		c.Learning = neuron.LearningType(learning)
		c.Transmitter = neuron.TransmitterType(transmitter)

		i, ok := index[neuron.NeuronID(owner)]
		if !ok {
			return fmt.Errorf("connection N-%d#%d has no owner row", owner, c.Slot)
		}
		neurons[i].Connections = append(neurons[i].Connections, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate connections: %w", err)
	}
	return nil
}

// List returns every stored snapshot ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT n.name, n.id, n.size_bytes, n.saved_at,
			(SELECT COUNT(*) FROM neurons WHERE network = n.name),
			(SELECT COUNT(*) FROM connections WHERE network = n.name)
		FROM networks n ORDER BY n.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var savedAt string
		if err := rows.Scan(&info.Name, &info.ID, &info.SizeBytes, &savedAt,
			&info.NeuronCount, &info.ConnectionCount); err != nil {
			return nil, fmt.Errorf("failed to scan network: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			info.SavedAt = t
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate networks: %w", err)
	}
	return infos, nil
}

// Delete removes the snapshot stored under name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM networks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete network %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete network %s: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func marshalOptional(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
