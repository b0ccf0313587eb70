package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"existing dir", dir, nil},
		{"missing file", filepath.Join(dir, "absent.json"), nil},
		{"relative", "config.yaml", nil},
		{"dots in name", filepath.Join(dir, "my..profile.json"), nil},
		{"empty", "", ErrInvalidPath},
		{"blank", "   ", ErrInvalidPath},
		{"parent ref", "../etc/passwd", ErrPathTraversal},
		{"nested parent ref", dir + "/a/../b", ErrPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions are ACL based on Windows")
	}
	dir := t.TempDir()

	private := filepath.Join(dir, "private.yaml")
	require.NoError(t, os.WriteFile(private, []byte("x"), 0o600))
	require.NoError(t, os.Chmod(private, 0o600))
	assert.NoError(t, ValidateFilePermissions(private))

	readable := filepath.Join(dir, "readable.yaml")
	require.NoError(t, os.WriteFile(readable, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(readable, 0o644))
	assert.NoError(t, ValidateFilePermissions(readable))

	writable := filepath.Join(dir, "writable.yaml")
	require.NoError(t, os.WriteFile(writable, []byte("x"), 0o600))
	require.NoError(t, os.Chmod(writable, 0o666))
	assert.ErrorIs(t, ValidateFilePermissions(writable), ErrInsecureFilePermissions)

	assert.Error(t, ValidateFilePermissions(filepath.Join(dir, "absent")))
}
