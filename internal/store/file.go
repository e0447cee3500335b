package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/pablasso/listo/internal/checklist"
)

// FileStore keeps the collection in a single JSON document.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *fileLock
}

// NewFileStore returns a store backed by the JSON file at path. The file
// is created on the first update.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: newFileLock(path + ".lock"),
	}
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (checklist.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Update implements Store.
func (s *FileStore) Update(ctx context.Context, fn func(col *checklist.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release()

	col, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&col); err != nil {
		return err
	}
	return s.write(col)
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (checklist.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyCollection(), nil
		}
		return checklist.Collection{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var col checklist.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return recoverCorrupt(s.path, err), nil
	}
	if err := normalize(&col); err != nil {
		return recoverCorrupt(s.path, err), nil
	}
	return col, nil
}

// write atomically replaces the JSON document using a temp file + rename.
func (s *FileStore) write(col checklist.Collection) error {
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checklists: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
