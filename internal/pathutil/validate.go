// Package pathutil confines agent-supplied file paths to known directories.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for safe error messages.
// For example, "/home/user/.cogna/config.yaml" becomes ".../.cogna/config.yaml".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	dir := filepath.Dir(cleaned)
	base := filepath.Base(cleaned)
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ValidatePath reports an error unless path, after cleaning and symlink
// resolution of its existing ancestors, lies inside one of allowedDirs. The
// file itself need not exist.
func ValidatePath(path string, allowedDirs []string) error {
	switch {
	case path == "":
		return fmt.Errorf("path validation failed: path is empty")
	case len(allowedDirs) == 0:
		return fmt.Errorf("path validation failed: no allowed directories configured")
	case strings.ContainsRune(path, '\x00'):
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	target, err := resolve(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	for _, dir := range allowedDirs {
		root, err := resolveDir(dir)
		if err != nil {
			continue
		}
		if isSubpath(target, root) {
			return nil
		}
	}
	return fmt.Errorf("path validation failed: %q is outside allowed directories", RedactPath(target))
}

// resolve returns the absolute form of path with symlinks in its parent
// directory resolved. A symlinked directory inside an allowed tree that
// points elsewhere therefore resolves outside it.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	parent, err := resolveDir(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("cannot resolve parent directory: %w", err)
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// resolveDir resolves symlinks in the deepest existing ancestor of dir and
// re-appends the components that do not exist yet.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	parent := filepath.Dir(abs)
	if parent == abs {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(abs))
	}
	resolvedParent, err := resolveDir(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}

// isSubpath reports whether path is base or lies below it. "/tmp/foo" is
// not below "/tmp/fo".
func isSubpath(path, base string) bool {
	return path == base || strings.HasPrefix(path, base+string(os.PathSeparator))
}

// AllowedBackupDirs returns the directories agent-supplied backup paths may
// name: dataDir/backups plus any extra directories, cleaned and deduplicated.
func AllowedBackupDirs(dataDir string, extra ...string) []string {
	dirs := []string{filepath.Join(dataDir, "backups")}
	seen := map[string]bool{filepath.Clean(dirs[0]): true}
	for _, d := range extra {
		if d == "" {
			continue
		}
		c := filepath.Clean(d)
		if seen[c] {
			continue
		}
		seen[c] = true
		dirs = append(dirs, c)
	}
	return dirs
}
