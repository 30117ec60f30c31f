package auth

import (
	"context"
	"crypto/subtle"
	"io"
	"log/slog"
	"strings"

	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

// Service verifies student credentials
type Service struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new authenticator
func New(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Login returns the public view of the student whose username and password
// both match exactly. Unknown usernames and wrong passwords fail identically
// with model.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*model.PublicStudent, error) {
	username = strings.TrimSpace(username)

	students, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.RecordOperation(metrics.OpLogin, err)
		s.logger.Error("login failed", slog.String("error", err.Error()))
		return nil, err
	}

	for _, st := range students {
		if st.Username == username && passwordsEqual(st.Password, password) {
			s.metrics.RecordOperation(metrics.OpLogin, nil)
			return st.Public(), nil
		}
	}

	s.metrics.RecordOperation(metrics.OpLogin, model.ErrInvalidCredentials)
	s.logger.Debug("login rejected", slog.String("username", username))
	return nil, model.ErrInvalidCredentials
}

func passwordsEqual(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
