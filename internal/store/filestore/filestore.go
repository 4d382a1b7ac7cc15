// Package filestore persists each record kind as an indented JSON file in
// a data directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"budgeter/internal/store"
)

type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file backing kind.
func (s *Store) Path(kind store.Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Read(_ context.Context, kind store.Kind) ([]byte, error) {
	data, err := os.ReadFile(s.Path(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path(kind), err)
	}
	return data, nil
}

// Write stores data in a temporary file next to the target, syncs it and
// renames it over the target, so a crash leaves either the old or the new
// file in place.
func (s *Store) Write(_ context.Context, kind store.Kind, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	target := s.Path(kind)
	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	committed = true
	return nil
}
