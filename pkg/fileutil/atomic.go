package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces the file at path with data.
// This uses the "write temp, then rename" pattern so readers never observe a
// partially written file.
//
// Steps:
// 1. Write data to a temporary file in the same directory
// 2. Sync it to disk and apply perm
// 3. Atomically rename it over the final name
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any failure below
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	// On Unix, this is atomic. On Windows, it may fail if the target exists.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename file atomically: %w", err)
	}

	success = true
	return nil
}
