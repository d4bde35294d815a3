// Package fileutils provides utility functions for handling files.
package fileutils

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ubuntu/decorate"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// AtomicWrite replaces the file at path with data, readable by everyone.
// Readers see either the previous content or data. Not atomic on Windows.
func AtomicWrite(path string, data []byte) (err error) {
	defer decorate.OnError(&err, "could not write %s", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to remove temporary file", "file", tmp.Name(), "error", err)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// NewTextReader wraps r so that text files are decoded to UTF-8.
//
// A leading byte order mark selects UTF-16 (either endianness) or is stripped for UTF-8.
// Input without a byte order mark is read as UTF-8.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
