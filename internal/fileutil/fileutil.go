package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrSizeMismatch reports a stream that ended before its announced length.
var ErrSizeMismatch = errors.New("size mismatch")

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// WriteAtomicVerified streams r into a temporary file in dir, flushes it, and
// renames it to name. The final path never holds a partial file: on any error
// the temporary file is removed. When expectedSize is non-negative a short or
// long stream fails with ErrSizeMismatch.
func WriteAtomicVerified(dir, name string, r io.Reader, expectedSize int64, mode os.FileMode) (int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+"-*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, fmt.Errorf("write %s: %w", name, err)
	}
	if expectedSize >= 0 && written != expectedSize {
		return written, fmt.Errorf("%w: expected %d bytes, received %d bytes", ErrSizeMismatch, expectedSize, written)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return written, fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return written, fmt.Errorf("rename %s: %w", name, err)
	}
	committed = true
	return written, nil
}
