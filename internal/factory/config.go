package factory

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mcoot/courseroster/internal/api"
	"github.com/mcoot/courseroster/internal/services/catalog"
	"github.com/mcoot/courseroster/internal/storage/file"
	"github.com/mcoot/courseroster/internal/storage/postgres"
	redisstorage "github.com/mcoot/courseroster/internal/storage/redis"
)

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the storage backend.
	// If empty, defaults to "file"
	StorageType string
	// File configures the file backend. A zero value uses file.DefaultConfig()
	File file.Config
	// Redis is required if StorageType is "redis"
	Redis *redisstorage.Config
	// Postgres is required if StorageType is "postgres"
	Postgres *postgres.Config
	// Catalog locates the course and testimonial documents
	Catalog catalog.Config

	Server         api.ServerConfig
	AllowedOrigins []string
	LogLevel       slog.Level

	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
}

// ConfigFromEnv builds a Config from environment variables looked up with getenv.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	dataDir := env("DATA_DIR", "data")

	cfg := Config{
		StorageType: strings.ToLower(env("STORAGE_TYPE", StorageTypeFile)),
		File:        file.DefaultConfig(),
		Catalog:     catalog.DefaultConfig(),
		Server:      api.DefaultServerConfig(),
	}
	cfg.File.Path = env("STUDENTS_FILE", filepath.Join(dataDir, "students.json"))
	cfg.Catalog.CoursesPath = env("COURSES_FILE", filepath.Join(dataDir, "courses.json"))
	cfg.Catalog.TestimonialsPath = env("TESTIMONIALS_FILE", filepath.Join(dataDir, "testimonials.json"))

	switch cfg.StorageType {
	case StorageTypeFile, StorageTypeMemory:
	case StorageTypeRedis:
		url := env("REDIS_URL", "")
		if url == "" {
			return Config{}, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=%s", StorageTypeRedis)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = url
		cfg.Redis = &redisCfg
	case StorageTypePostgres:
		url := env("DATABASE_URL", "")
		if url == "" {
			return Config{}, fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=%s", StorageTypePostgres)
		}
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = url
		cfg.Postgres = &pgCfg
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_TYPE %q", cfg.StorageType)
	}

	cfg.Server.Host = env("HOST", cfg.Server.Host)
	if raw := env("PORT", ""); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Server.Port = port
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(env("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}
