package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the SQLite file name inside a data directory.
const DatabaseFile = "cogna.db"

// GlobalDataDir returns the path to the global .cogna directory.
// On Unix: ~/.cogna
// On Windows: %USERPROFILE%\.cogna
func GlobalDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cogna"), nil
}

// DatabasePath returns the SQLite database path. An explicit path wins;
// otherwise the database lives in dataDir.
func DatabasePath(dataDir, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(dataDir, DatabaseFile)
}

// EnsureDataDir creates dir if it doesn't exist.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return nil
}
