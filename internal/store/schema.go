package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
-- One row per saved network
CREATE TABLE IF NOT EXISTS networks (
    name TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    snapshot_version INTEGER NOT NULL,
    next_id INTEGER NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    saved_at TEXT NOT NULL
);

-- Neurons, in creation order per network
CREATE TABLE IF NOT EXISTS neurons (
    network TEXT NOT NULL REFERENCES networks(name) ON DELETE CASCADE,
    id INTEGER NOT NULL,
    position INTEGER NOT NULL,

    threshold REAL NOT NULL,
    activation REAL NOT NULL DEFAULT 0,
    temp_activation REAL NOT NULL DEFAULT 0,
    last_activated_step INTEGER NOT NULL DEFAULT 0,
    last_fired_step INTEGER NOT NULL DEFAULT 0,
    was_activated INTEGER NOT NULL DEFAULT 1,

    random_enabled INTEGER NOT NULL DEFAULT 0,
    random_chance INTEGER NOT NULL DEFAULT 0,
    random_value REAL NOT NULL DEFAULT 0,

    curves TEXT,            -- JSON object keyed by curve name
    habituation_threshold REAL NOT NULL DEFAULT 0,
    sensitization_threshold REAL NOT NULL DEFAULT 0,
    influenced_transmitter INTEGER NOT NULL DEFAULT -1,
    influence_direction INTEGER NOT NULL DEFAULT 1,

    previous TEXT,          -- JSON array of neuron ids
    slots INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (network, id)
);
CREATE INDEX IF NOT EXISTS idx_neurons_position ON neurons(network, position);

-- Live connections; removed slots have no row
CREATE TABLE IF NOT EXISTS connections (
    network TEXT NOT NULL,
    owner INTEGER NOT NULL,
    slot INTEGER NOT NULL,

    target_kind TEXT NOT NULL CHECK (target_kind IN ('neuron', 'connection')),
    target_neuron INTEGER,  -- set when target_kind = 'neuron'
    target_owner INTEGER,   -- set when target_kind = 'connection'
    target_slot INTEGER,

    activation_type INTEGER NOT NULL,
    function INTEGER NOT NULL,
    learning INTEGER NOT NULL,
    transmitter INTEGER NOT NULL,

    base_weight REAL NOT NULL,
    short_weight REAL NOT NULL,
    long_weight REAL NOT NULL,
    long_learning_weight REAL NOT NULL DEFAULT 1,
    presynaptic_potential REAL NOT NULL DEFAULT 1,
    last_activated_step INTEGER NOT NULL DEFAULT 0,
    last_presynaptic_activated_step INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (network, owner, slot),
    FOREIGN KEY (network, owner) REFERENCES neurons(network, id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_connections_target_neuron ON connections(network, target_neuron);
CREATE INDEX IF NOT EXISTS idx_connections_target_conn ON connections(network, target_owner, target_slot);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema initializes the database schema.
// It creates all tables and applies migrations as needed.
// Runs integrity validation before migrations on existing databases.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// Schema version table doesn't exist yet, create fresh schema
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if err := ValidateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("database integrity check failed: %w", err)
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}
	if currentVersion < SchemaVersion {
		if err := migrateSchema(ctx, db, currentVersion); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns 0 and an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// createSchema creates the initial database schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// migrateSchema applies migrations from currentVersion to SchemaVersion.
func migrateSchema(ctx context.Context, db *sql.DB, currentVersion int) error {
	// Only one version so far.
	_ = currentVersion
	return nil
}

// ValidateIntegrity runs SQLite integrity checks on the database.
// It runs PRAGMA integrity_check and PRAGMA foreign_key_check.
// Returns an error if any issues are found.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result string
		if err := rows.Scan(&result); err != nil {
			return fmt.Errorf("failed to scan integrity_check result: %w", err)
		}
		if result != "ok" {
			return fmt.Errorf("integrity_check failed: %s", result)
		}
	}

	fkRows, err := db.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return fmt.Errorf("failed to run foreign_key_check: %w", err)
	}
	defer fkRows.Close()

	var fkErrors []string
	for fkRows.Next() {
		var table, rowid, parent, fkid sql.NullString
		if err := fkRows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to scan foreign_key_check result: %w", err)
		}
		fkErrors = append(fkErrors, fmt.Sprintf("table=%s rowid=%s parent=%s fkid=%s", table.String, rowid.String, parent.String, fkid.String))
	}

	if len(fkErrors) > 0 {
		return fmt.Errorf("foreign_key_check failed: %v", fkErrors)
	}

	return nil
}

// ResetSchema drops all tables and recreates the schema.
// Only use for testing.
func ResetSchema(ctx context.Context, db *sql.DB) error {
	tables := []string{
		"connections",
		"neurons",
		"networks",
		"schema_version",
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return InitSchema(ctx, db)
}
