package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File permissions
const (
	// DirPermission is used for directories created by EnsureDir (rwx------).
	DirPermission = 0700
	// FilePermission is used for files written by AtomicWriteJSON (rw-------).
	FilePermission = 0600
)

const (
	renameAttempts = 5
	renameBackoff  = 20 * time.Millisecond
)

// AtomicWriteJSON writes data as indented JSON to path atomically, creating
// the parent directory when needed.
func AtomicWriteJSON(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return AtomicWriteFile(path, append(jsonData, '\n'), FilePermission)
}

// AtomicWriteFile writes raw bytes to path atomically with the given
// permissions.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = tmpFile.Close() }()

	fail := func(step string, err error) error {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to %s temp file: %w", step, err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fail("chmod", err)
	}

	var renameErr error
	for attempt := range renameAttempts {
		if renameErr = os.Rename(tmpPath, path); renameErr == nil {
			return nil
		}
		if attempt < renameAttempts-1 {
			time.Sleep(time.Duration(attempt+1) * renameBackoff)
		}
	}
	return fail("rename", renameErr)
}

// ReadJSON decodes the JSON file at path into target. It reports false with
// a nil error when the file does not exist, leaving target unchanged.
func ReadJSON(path string, target any) (bool, error) {
	// #nosec G304 -- caller controls the path
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return true, nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
