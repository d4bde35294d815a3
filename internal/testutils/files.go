package testutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0750), "Setup: could not create parent directory")
	require.NoError(t, os.WriteFile(p, []byte(content), 0600), "Setup: could not write file %s", name)
	return p
}

// MakeReadOnly makes dest read only and restore permission on cleanup.
func MakeReadOnly(t *testing.T, dest string) {
	t.Helper()

	// Get current dest permissions
	fi, err := os.Stat(dest)
	require.NoError(t, err, "Cannot stat %s", dest)
	mode := fi.Mode()

	var perms fs.FileMode = 0444
	if fi.IsDir() {
		perms = 0555
	}
	err = os.Chmod(dest, perms)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := os.Stat(dest)
		if errors.Is(err, os.ErrNotExist) {
			return
		}

		err = os.Chmod(dest, mode)
		require.NoError(t, err)
	})
}

// MakeUnreadable removes all permissions on dest and restores them on cleanup.
func MakeUnreadable(t *testing.T, dest string) {
	t.Helper()

	fi, err := os.Stat(dest)
	require.NoError(t, err, "Cannot stat %s", dest)
	mode := fi.Mode()

	require.NoError(t, os.Chmod(dest, 0000))
	t.Cleanup(func() {
		_ = os.Chmod(dest, mode)
	})
}

// IsUnixNonRoot returns true if file permissions are enforced: on Linux or macOS, when not
// running as root.
func IsUnixNonRoot() bool {
	if o := runtime.GOOS; o != "linux" && o != "darwin" {
		return false
	}
	return os.Getuid() != 0
}
