package storage

//go:generate mockgen -source=interface.go -destination=mocks/store_mock.go -package=mocks Store

import (
	"context"

	"github.com/mcoot/courseroster/internal/model"
)

// UpdateFunc mutates a freshly loaded collection and returns the collection to
// persist. Returning an error aborts the update without writing anything.
type UpdateFunc func(students []*model.Student) ([]*model.Student, error)

// Store is the handle through which the whole student collection is loaded and
// saved. The unit of I/O is always the entire collection.
type Store interface {
	// Load returns the persisted collection, or an empty collection if nothing
	// has been persisted yet.
	Load(ctx context.Context) ([]*model.Student, error)

	// Save overwrites the persisted collection.
	Save(ctx context.Context, students []*model.Student) error

	// Update runs load, fn and save as one exclusive unit, so concurrent
	// updates never overwrite each other.
	Update(ctx context.Context, fn UpdateFunc) error

	// Close releases any resources held by the store.
	Close() error
}
