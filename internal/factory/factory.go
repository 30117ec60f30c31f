package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mcoot/courseroster/internal/dependencies/random"
	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/services/auth"
	"github.com/mcoot/courseroster/internal/services/catalog"
	"github.com/mcoot/courseroster/internal/services/enrollment"
	"github.com/mcoot/courseroster/internal/services/registrar"
	"github.com/mcoot/courseroster/internal/storage"
	"github.com/mcoot/courseroster/internal/storage/file"
	"github.com/mcoot/courseroster/internal/storage/memory"
	"github.com/mcoot/courseroster/internal/storage/postgres"
	redisstorage "github.com/mcoot/courseroster/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeFile     = "file"
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Store storage.Store

	// External dependencies
	Random random.Random

	// Instrumentation
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	Registrar         *registrar.Service
	AuthService       *auth.Service
	EnrollmentService *enrollment.Service
	CatalogService    *catalog.Service
}

// New creates a new application with all dependencies wired.
// The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalogCfg := cfg.Catalog
	if catalogCfg.CoursesPath == "" && catalogCfg.TestimonialsPath == "" {
		catalogCfg = catalog.DefaultConfig()
	}

	return newWithDependencies(store, random.New(), registry, catalogCfg, logger), nil
}

func newStore(ctx context.Context, cfg Config) (storage.Store, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	switch storageType {
	case StorageTypeFile:
		fileCfg := cfg.File
		if fileCfg.Path == "" {
			fileCfg = file.DefaultConfig()
		}
		return file.New(fileCfg), nil
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.Redis == nil {
			return nil, errors.New("redis config required when storage type is redis")
		}
		store, err := redisstorage.New(*cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypePostgres:
		if cfg.Postgres == nil {
			return nil, errors.New("postgres config required when storage type is postgres")
		}
		store, err := postgres.New(ctx, *cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q: must be one of file, memory, redis, postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, rnd random.Random, registry *prometheus.Registry, catalogCfg catalog.Config, logger *slog.Logger) *App {
	m := metrics.New(registry)

	return &App{
		Store:             store,
		Random:            rnd,
		Registry:          registry,
		Metrics:           m,
		Registrar:         registrar.New(store, m, logger),
		AuthService:       auth.New(store, m, logger),
		EnrollmentService: enrollment.New(store, m, logger),
		CatalogService:    catalog.New(catalogCfg, rnd, logger),
	}
}

// Close releases the store's connections
func (a *App) Close() error {
	return a.Store.Close()
}
