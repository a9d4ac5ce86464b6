package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"signalnoise/internal/models"
)

const (
	filePerms = 0o644
	dirPerms  = 0o755
)

// FileStore implements the Store interface using a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file store writing to path, creating the parent
// directory if needed. The file itself is only created by the first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("data path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Location returns the path of the data file.
func (s *FileStore) Location() string {
	return s.path
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// SaveAll writes both columns to a temporary file and renames it over the
// data file, so a crash mid-write never leaves a truncated artifact.
func (s *FileStore) SaveAll(ctx context.Context, signal, noise []models.Task) error {
	if err := ctx.Err(); err != nil {
		log.Printf("error saving tasks to %s: %v", s.path, err)
		return err
	}

	data, err := encodeSnapshot(signal, noise)
	if err != nil {
		log.Printf("error saving tasks to %s: %v", s.path, err)
		return err
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		log.Printf("error saving tasks to %s: %v", s.path, err)
		return fmt.Errorf("failed to write data file: %w", err)
	}

	// atomic.WriteFile leaves the temp file's 0600 mode on new files
	if err := os.Chmod(s.path, filePerms); err != nil {
		log.Printf("error saving tasks to %s: %v", s.path, err)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	return nil
}

// LoadAll reads the data file. A missing or corrupt file loads as empty.
func (s *FileStore) LoadAll(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		log.Printf("error loading tasks from %s: %v", s.path, err)
		return models.Snapshot{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("error loading tasks from %s: %v", s.path, err)
		}
		return emptySnapshot(), nil
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		log.Printf("error loading tasks from %s: %v", s.path, err)
		return emptySnapshot(), nil
	}

	return snapshot, nil
}

// EraseAll removes the data file.
func (s *FileStore) EraseAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		log.Printf("error clearing %s: %v", s.path, err)
		return err
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("error clearing %s: %v", s.path, err)
		return fmt.Errorf("failed to remove data file: %w", err)
	}

	return nil
}
