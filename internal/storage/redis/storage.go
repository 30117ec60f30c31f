package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

const backendName = "redis"

// Storage is a Redis-backed implementation of the storage interface.
// The collection is one JSON value; updates are optimistic WATCH/MULTI
// transactions on that key.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = DefaultConfig().MaxUpdateRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) ([]*model.Student, error) {
	return s.load(ctx, s.client)
}

func (s *Storage) Save(ctx context.Context, students []*model.Student) error {
	data, err := storage.EncodeCollection(students)
	if err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	if err := s.client.Set(ctx, studentsKey(s.cfg.KeyPrefix), data, 0).Err(); err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, fn storage.UpdateFunc) error {
	key := studentsKey(s.cfg.KeyPrefix)

	// fnErr carries errors from fn out of the transaction unwrapped
	var fnErr error
	txf := func(tx *redis.Tx) error {
		students, err := s.load(ctx, tx)
		if err != nil {
			return err
		}

		updated, err := fn(students)
		if err != nil {
			fnErr = err
			return err
		}

		data, err := storage.EncodeCollection(updated)
		if err != nil {
			return &model.StorageError{Op: "save", Backend: backendName, Err: err}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.cfg.MaxUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			// Another writer got in between WATCH and EXEC; reload and retry
			continue
		case fnErr != nil:
			return fnErr
		case model.IsStorageError(err):
			return err
		default:
			return &model.StorageError{Op: "save", Backend: backendName, Err: err}
		}
	}

	return &model.StorageError{
		Op:      "save",
		Backend: backendName,
		Err:     fmt.Errorf("%w after %d attempts", model.ErrConcurrentUpdate, s.cfg.MaxUpdateRetries),
	}
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load reads the collection, either directly or inside a WATCH
func (s *Storage) load(ctx context.Context, c getter) ([]*model.Student, error) {
	data, err := c.Get(ctx, studentsKey(s.cfg.KeyPrefix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
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
