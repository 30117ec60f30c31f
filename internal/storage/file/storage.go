// Package file stores the student collection as a single JSON document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

const backendName = "file"

// Storage is a JSON-file implementation of the storage interface.
// All writes from one Storage are serialised; the document is replaced by
// renaming a fully written temp file, so a failed save never leaves a partial
// document behind.
type Storage struct {
	mu  sync.Mutex
	cfg Config
}

// New creates a file store. The document itself is created on first save.
func New(cfg Config) *Storage {
	if cfg.FileMode == 0 {
		cfg.FileMode = DefaultConfig().FileMode
	}
	return &Storage{cfg: cfg}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Path returns the location of the students document
func (s *Storage) Path() string {
	return s.cfg.Path
}

func (s *Storage) Load(ctx context.Context) ([]*model.Student, error) {
	return s.load()
}

func (s *Storage) Save(ctx context.Context, students []*model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(students)
}

func (s *Storage) Update(ctx context.Context, fn storage.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	students, err := s.load()
	if err != nil {
		return err
	}
	updated, err := fn(students)
	if err != nil {
		return err
	}
	return s.save(updated)
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) load() ([]*model.Student, error) {
	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Student{}, nil
		}
		return nil, &model.StorageError{Op: "load", Backend: backendName, Err: err}
	}

	students, err := storage.DecodeCollection(data)
	if err != nil {
		return nil, &model.StorageError{Op: "load", Backend: backendName, Err: err}
	}
	return students, nil
}

func (s *Storage) save(students []*model.Student) error {
	data, err := storage.EncodeCollection(students)
	if err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	if err := s.writeAtomic(data); err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	return nil
}

func (s *Storage) writeAtomic(data []byte) (err error) {
	dir := filepath.Dir(s.cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.cfg.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), s.cfg.FileMode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.cfg.Path)
}
