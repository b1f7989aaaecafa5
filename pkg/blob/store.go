// Package blob stores raw file content on the local filesystem.
//
// One blob per storage filename under a configured root directory.
// Blobs are written through a temp file and renamed into place, so a
// blob either fully exists or does not; no writer ever rewrites an
// existing blob in place. The package has no metadata awareness.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const tempDirName = ".tmp"

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("blob filename contains invalid characters")
)

type Store struct {
	root string
}

// NewStore creates the root and temp directories if missing.
func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("blob root directory is required")
	}

	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	return &Store{root: root}, nil
}

// Root returns the configured root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the on-disk location for a storage filename. The result
// is internal to the storage layer and must not cross the service
// boundary.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.root, filename)
}

// Write persists the reader's content under the given storage filename
// and returns the number of bytes written. The file is synced to disk
// before it becomes visible at its final path.
func (s *Store) Write(ctx context.Context, filename string, r io.Reader) (int64, error) {
	if err := validateFilename(filename); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tempDirName), filename+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temp blob: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing blob %q: %w", filename, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("syncing blob %q: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing blob %q: %w", filename, err)
	}

	if err := os.Rename(tmpPath, s.Path(filename)); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("finalizing blob %q: %w", filename, err)
	}

	return written, nil
}

// Open returns a reader over the blob content. The caller owns the
// returned handle and must close it.
func (s *Store) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("blob %q: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("opening blob %q: %w", filename, err)
	}

	return f, nil
}

func (s *Store) Exists(ctx context.Context, filename string) (bool, error) {
	if err := validateFilename(filename); err != nil {
		return false, err
	}

	_, err := os.Stat(s.Path(filename))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// Remove deletes the blob. A missing blob reports ErrNotFound so
// callers can decide whether absence matters.
func (s *Store) Remove(ctx context.Context, filename string) error {
	if err := validateFilename(filename); err != nil {
		return err
	}

	err := os.Remove(s.Path(filename))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("blob %q: %w", filename, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("removing blob %q: %w", filename, err)
	}

	return nil
}

// validateFilename rejects names that could escape the root directory.
func validateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidKey
	}
	if filename != filepath.Base(filename) {
		return ErrInvalidKey
	}
	if filename == "." || filename == ".." || strings.ContainsAny(filename, "/\\") {
		return ErrInvalidKey
	}
	return nil
}
