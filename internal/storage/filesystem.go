package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// FilesystemStorage keeps reports as plain files under one directory.
type FilesystemStorage struct {
	dir string
	log *logrus.Entry
}

// Ensure FilesystemStorage implements StorageInterface
var _ StorageInterface = (*FilesystemStorage)(nil)

// NewFilesystemStorage creates the directory if needed and returns a store
// rooted there.
func NewFilesystemStorage(dir string, log *logrus.Entry) (*FilesystemStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	return &FilesystemStorage{dir: dir, log: log}, nil
}

// Store writes the complete content in one call. The data is written to a
// temporary file first and renamed into place, so a reader never observes a
// half-written report.
func (s *FilesystemStorage) Store(filename string, data []byte) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store %s: %w", filename, err)
	}

	s.log.Infof("Stored %s (%d bytes)", filename, len(data))
	return nil
}

// Retrieve reads one stored file back.
func (s *FilesystemStorage) Retrieve(filename string) ([]byte, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", filename, err)
	}

	return data, nil
}

// List returns the stored filenames matching the prefix, sorted so that the
// timestamped report names come back in chronological order.
func (s *FilesystemStorage) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".tmp-") {
			continue
		}
		if prefix == "" || strings.HasPrefix(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// Delete removes one stored file.
func (s *FilesystemStorage) Delete(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}

	s.log.Infof("Deleted %s", filename)
	return nil
}

// resolve joins the filename onto the storage directory and rejects names
// that would escape it.
func (s *FilesystemStorage) resolve(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
