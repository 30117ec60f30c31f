// Package catalog serves the read-only course catalog and testimonial documents
// that sit next to the student collection.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mcoot/courseroster/internal/dependencies/random"
)

// ErrInvalidDocument is returned when a catalog document is not a JSON array
var ErrInvalidDocument = errors.New("catalog document is not a JSON array")

// Config locates the catalog documents
type Config struct {
	CoursesPath      string
	TestimonialsPath string
	// TestimonialSample is how many testimonials are returned per request
	TestimonialSample int
}

// DefaultConfig returns the default document locations
func DefaultConfig() Config {
	return Config{
		CoursesPath:       "data/courses.json",
		TestimonialsPath:  "data/testimonials.json",
		TestimonialSample: 2,
	}
}

// Service reads the catalog documents on every request, so edits to the files
// are visible without a restart.
type Service struct {
	cfg    Config
	random random.Random
	logger *slog.Logger
}

// New creates a new catalog service
func New(cfg Config, rnd random.Random, logger *slog.Logger) *Service {
	if cfg.TestimonialSample <= 0 {
		cfg.TestimonialSample = DefaultConfig().TestimonialSample
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		cfg:    cfg,
		random: rnd,
		logger: logger,
	}
}

// Courses returns every entry of the course catalog, verbatim
func (s *Service) Courses(ctx context.Context) ([]json.RawMessage, error) {
	courses, err := readArray(s.cfg.CoursesPath)
	if err != nil {
		s.logger.Error("failed to read course catalog",
			slog.String("path", s.cfg.CoursesPath),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return courses, nil
}

// Testimonials returns a random sample of testimonials. Any failure, including
// having fewer testimonials than the sample size, yields an empty list.
func (s *Service) Testimonials(ctx context.Context) []json.RawMessage {
	all, err := readArray(s.cfg.TestimonialsPath)
	if err != nil {
		s.logger.Warn("failed to read testimonials",
			slog.String("path", s.cfg.TestimonialsPath),
			slog.String("error", err.Error()),
		)
		return []json.RawMessage{}
	}

	picks := random.Sample(s.random, len(all), s.cfg.TestimonialSample)
	if picks == nil {
		return []json.RawMessage{}
	}

	out := make([]json.RawMessage, len(picks))
	for i, idx := range picks {
		out[i] = all[idx]
	}
	return out
}

func readArray(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidDocument, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
