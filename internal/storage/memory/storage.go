package memory

import (
	"context"
	"sync"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu       sync.RWMutex
	students []*model.Student
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		students: []*model.Student{},
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) ([]*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneStudents(s.students), nil
}

func (s *Storage) Save(ctx context.Context, students []*model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = model.CloneStudents(students)
	return nil
}

func (s *Storage) Update(ctx context.Context, fn storage.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(model.CloneStudents(s.students))
	if err != nil {
		return err
	}
	s.students = model.CloneStudents(updated)
	return nil
}

func (s *Storage) Close() error {
	return nil
}
