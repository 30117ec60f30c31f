// Package postgres stores the student collection in PostgreSQL, one row per
// student, and serialises updates with a table lock held for the whole
// load/mutate/save transaction.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

const backendName = "postgres"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Storage is a PostgreSQL implementation of the storage interface
type Storage struct {
	pool  *pgxpool.Pool
	table string
}

// New connects to PostgreSQL and makes sure the students table exists
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	s := NewWithPool(pool, cfg.Table)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool creates a store on an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool, table string) *Storage {
	if table == "" {
		table = DefaultConfig().Table
	}
	return &Storage{pool: pool, table: table}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// EnsureSchema creates the students table if it does not exist
func (s *Storage) EnsureSchema(ctx context.Context) error {
	ident := pgx.Identifier{s.table}.Sanitize()
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+ident+` (
			position         integer NOT NULL,
			id               integer PRIMARY KEY,
			username         text    NOT NULL,
			password         text    NOT NULL,
			email            text    NOT NULL,
			enrolled_courses jsonb   NOT NULL DEFAULT '[]'::jsonb
		)`)
	if err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*model.Student, error) {
	return s.load(ctx, s.pool)
}

func (s *Storage) Save(ctx context.Context, students []*model.Student) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return s.replace(ctx, tx, students)
	})
}

func (s *Storage) Update(ctx context.Context, fn storage.UpdateFunc) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		lock := `LOCK TABLE ` + pgx.Identifier{s.table}.Sanitize() + ` IN SHARE ROW EXCLUSIVE MODE`
		if _, err := tx.Exec(ctx, lock); err != nil {
			return &model.StorageError{Op: "load", Backend: backendName, Err: err}
		}

		students, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		updated, err := fn(students)
		if err != nil {
			return err
		}
		return s.replace(ctx, tx, updated)
	})
}

// inTx runs fn in a transaction, committing only if fn succeeds
func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	return nil
}

func (s *Storage) load(ctx context.Context, q querier) ([]*model.Student, error) {
	rows, err := q.Query(ctx, `
		SELECT id, username, password, email, enrolled_courses
		FROM `+pgx.Identifier{s.table}.Sanitize()+`
		ORDER BY position`)
	if err != nil {
		return nil, &model.StorageError{Op: "load", Backend: backendName, Err: err}
	}
	defer rows.Close()

	students := []*model.Student{}
	for rows.Next() {
		var (
			st      model.Student
			courses []byte
		)
		if err := rows.Scan(&st.ID, &st.Username, &st.Password, &st.Email, &courses); err != nil {
			return nil, &model.StorageError{Op: "load", Backend: backendName, Err: err}
		}
		if err := json.Unmarshal(courses, &st.EnrolledCourses); err != nil {
			return nil, &model.StorageError{
				Op:      "load",
				Backend: backendName,
				Err:     fmt.Errorf("%w: student %d: %v", model.ErrMalformedCollection, st.ID, err),
			}
		}
		if st.EnrolledCourses == nil {
			st.EnrolledCourses = []model.Course{}
		}
		students = append(students, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StorageError{Op: "load", Backend: backendName, Err: err}
	}
	return students, nil
}

// replace rewrites the whole table inside tx
func (s *Storage) replace(ctx context.Context, tx pgx.Tx, students []*model.Student) error {
	ident := pgx.Identifier{s.table}.Sanitize()

	if _, err := tx.Exec(ctx, `DELETE FROM `+ident); err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	if len(students) == 0 {
		return nil
	}

	insert := `INSERT INTO ` + ident + ` (position, id, username, password, email, enrolled_courses)
		VALUES ($1, $2, $3, $4, $5, $6)`

	batch := &pgx.Batch{}
	for i, st := range students {
		courses := st.EnrolledCourses
		if courses == nil {
			courses = []model.Course{}
		}
		data, err := json.Marshal(courses)
		if err != nil {
			return &model.StorageError{Op: "save", Backend: backendName, Err: err}
		}
		batch.Queue(insert, i, int(st.ID), st.Username, st.Password, st.Email, string(data))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return &model.StorageError{Op: "save", Backend: backendName, Err: err}
	}
	return nil
}
