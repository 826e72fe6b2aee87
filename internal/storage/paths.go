package storage

import (
	"os"
	"path/filepath"
)

// DatabaseDir returns the per-user directory holding the engine's
// database, creating it when missing.
func DatabaseDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		// Headless systems without a config dir fall back to a
		// tistouchess/db directory under the working directory.
		base = "."
	}
	dir := filepath.Join(base, "tistouchess", "db")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
