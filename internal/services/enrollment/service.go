package enrollment

import (
	"context"
	"io"
	"log/slog"

	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

// Service manages the course lists of registered students
type Service struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new enrollment service
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

// ListEnrollments returns the student's course snapshots in enrollment order
func (s *Service) ListEnrollments(ctx context.Context, id model.StudentID) ([]model.Course, error) {
	students, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.RecordOperation(metrics.OpListEnrollments, err)
		s.logStorageError("list enrollments failed", id, err)
		return nil, err
	}

	student := model.FindStudent(students, id)
	if student == nil {
		s.metrics.RecordOperation(metrics.OpListEnrollments, model.ErrStudentNotFound)
		return nil, model.ErrStudentNotFound
	}

	s.metrics.RecordOperation(metrics.OpListEnrollments, nil)
	return student.EnrolledCourses, nil
}

// Enroll appends the course snapshot to the student's enrollments.
// A course whose id is already present is rejected with model.ErrAlreadyEnrolled.
func (s *Service) Enroll(ctx context.Context, id model.StudentID, course model.Course) error {
	if _, ok := course.ID(); !ok {
		s.metrics.RecordOperation(metrics.OpEnroll, model.ErrCourseIDRequired)
		return model.ErrCourseIDRequired
	}

	err := s.store.Update(ctx, func(students []*model.Student) ([]*model.Student, error) {
		student := model.FindStudent(students, id)
		if student == nil {
			return nil, model.ErrStudentNotFound
		}
		if student.HasCourse(course) {
			return nil, model.ErrAlreadyEnrolled
		}
		student.EnrolledCourses = append(student.EnrolledCourses, course.Clone())
		return students, nil
	})
	s.metrics.RecordOperation(metrics.OpEnroll, err)
	if err != nil {
		s.logStorageError("enroll failed", id, err)
		return err
	}

	courseID, _ := course.ID()
	s.logger.Info("student enrolled",
		slog.Int("student_id", int(id)),
		slog.String("course_id", courseID),
	)
	return nil
}

// Drop removes every enrollment sharing the course's id.
// If nothing was removed the collection is left unwritten and
// model.ErrCourseNotEnrolled is returned.
func (s *Service) Drop(ctx context.Context, id model.StudentID, course model.Course) error {
	if _, ok := course.ID(); !ok {
		s.metrics.RecordOperation(metrics.OpDrop, model.ErrCourseIDRequired)
		return model.ErrCourseIDRequired
	}

	err := s.store.Update(ctx, func(students []*model.Student) ([]*model.Student, error) {
		student := model.FindStudent(students, id)
		if student == nil {
			return nil, model.ErrStudentNotFound
		}

		kept := make([]model.Course, 0, len(student.EnrolledCourses))
		for _, c := range student.EnrolledCourses {
			if !c.SameID(course) {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(student.EnrolledCourses) {
			return nil, model.ErrCourseNotEnrolled
		}

		student.EnrolledCourses = kept
		return students, nil
	})
	s.metrics.RecordOperation(metrics.OpDrop, err)
	if err != nil {
		s.logStorageError("drop failed", id, err)
		return err
	}

	courseID, _ := course.ID()
	s.logger.Info("student dropped course",
		slog.Int("student_id", int(id)),
		slog.String("course_id", courseID),
	)
	return nil
}

func (s *Service) logStorageError(msg string, id model.StudentID, err error) {
	if !model.IsStorageError(err) {
		return
	}
	s.logger.Error(msg,
		slog.Int("student_id", int(id)),
		slog.String("error", err.Error()),
	)
}
