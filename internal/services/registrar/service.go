package registrar

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

// Service creates student accounts
type Service struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new registrar. A nil logger discards output; nil metrics are not recorded.
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

// Register creates a student account with the next free id.
// Username and email are trimmed; the password is stored as given.
// The returned record includes the password; callers must redact it.
func (s *Service) Register(ctx context.Context, username, password, email string) (*model.Student, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		s.metrics.RecordOperation(metrics.OpRegister, model.ErrUsernameRequired)
		return nil, model.ErrUsernameRequired
	}

	var created *model.Student
	err := s.store.Update(ctx, func(students []*model.Student) ([]*model.Student, error) {
		if model.FindStudentByUsername(students, username) != nil {
			return nil, model.ErrUsernameTaken
		}

		created = &model.Student{
			ID:              model.NextStudentID(students),
			Username:        username,
			Password:        password,
			Email:           email,
			EnrolledCourses: []model.Course{},
		}
		return append(students, created), nil
	})
	s.metrics.RecordOperation(metrics.OpRegister, err)
	if err != nil {
		if model.IsStorageError(err) {
			s.logger.Error("register failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("student registered",
		slog.Int("student_id", int(created.ID)),
		slog.String("username", created.Username),
	)
	s.metrics.IncrementStudentsRegistered()
	return created.Clone(), nil
}
