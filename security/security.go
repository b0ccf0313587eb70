package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrInvalidPath indicates a path contains invalid characters or patterns.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathTraversal indicates a parent-directory reference in a path.
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrInsecureFilePermissions indicates a group- or world-writable file.
	ErrInsecureFilePermissions = errors.New("insecure file permissions")
)

// ValidatePath rejects empty paths and paths that reference a parent
// directory, before or after cleaning and symlink resolution. The path does
// not have to exist.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if hasParentRef(path) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path: %w", ErrInvalidPath, err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: cannot resolve symbolic links: %w", ErrInvalidPath, err)
		}
		resolved = absPath
	}
	if hasParentRef(resolved) {
		return fmt.Errorf("%w: %s resolves to %s", ErrPathTraversal, path, resolved)
	}
	return nil
}

func hasParentRef(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

// ValidateFilePermissions returns ErrInsecureFilePermissions when path is
// writable by group or others. Windows is skipped since it uses ACLs.
func ValidateFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Mode().Perm()&0o022 != 0 {
		return fmt.Errorf("%w: %s is %#o", ErrInsecureFilePermissions, path, info.Mode().Perm())
	}
	return nil
}
