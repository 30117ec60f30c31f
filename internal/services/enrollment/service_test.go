package enrollment

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/courseroster/internal/metrics"
	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/services/registrar"
	"github.com/mcoot/courseroster/internal/storage/file"
	"github.com/mcoot/courseroster/internal/storage/mocks"
	"github.com/mcoot/courseroster/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage   *file.Storage
	metrics   *metrics.Metrics
	registrar *registrar.Service
	service   *Service
	ctx       context.Context
	bob       model.StudentID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = file.New(file.Config{Path: filepath.Join(s.T().TempDir(), "students.json")})
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.registrar = registrar.New(s.storage, s.metrics, testutil.NopLogger())
	s.service = New(s.storage, s.metrics, testutil.NopLogger())
	s.ctx = context.Background()

	bob, err := s.registrar.Register(s.ctx, "bob", "pw", "b@x.com")
	s.Require().NoError(err)
	s.bob = bob.ID
}

func (s *ServiceSuite) course(raw string) model.Course {
	c, err := model.CourseFromJSON([]byte(raw))
	s.Require().NoError(err)
	return c
}

func (s *ServiceSuite) readDocument() []byte {
	data, err := os.ReadFile(s.storage.Path())
	s.Require().NoError(err)
	return data
}

// ListEnrollments tests

func (s *ServiceSuite) TestListEnrollmentsEmptyForNewStudent() {
	courses, err := s.service.ListEnrollments(s.ctx, s.bob)
	s.Require().NoError(err)
	s.NotNil(courses)
	s.Empty(courses)
}

func (s *ServiceSuite) TestListEnrollmentsUnknownStudent() {
	_, err := s.service.ListEnrollments(s.ctx, 999)
	s.ErrorIs(err, model.ErrStudentNotFound)
}

func (s *ServiceSuite) TestListEnrollmentsPreservesOrder() {
	for _, raw := range []string{`{"id":3}`, `{"id":1}`, `{"id":2}`} {
		s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(raw)))
	}

	courses, err := s.service.ListEnrollments(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Len(courses, 3)
	for i, want := range []string{"3", "1", "2"} {
		id, _ := courses[i].ID()
		s.Equal(want, id)
	}
}

// Enroll tests

func (s *ServiceSuite) TestEnrollStoresSnapshotVerbatim() {
	raw := `{"id":"MATH200","title":"Calculus","credits":4,"tags":["core"]}`
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(raw)))

	courses, err := s.service.ListEnrollments(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Require().Len(courses, 1)

	data, err := json.Marshal(courses[0])
	s.Require().NoError(err)
	s.JSONEq(raw, string(data))
}

func (s *ServiceSuite) TestEnrollTwiceFails() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))
	before := s.readDocument()

	err := s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101","title":"different"}`))
	s.ErrorIs(err, model.ErrAlreadyEnrolled)
	s.Equal(before, s.readDocument())

	courses, _ := s.service.ListEnrollments(s.ctx, s.bob)
	s.Len(courses, 1)
}

func (s *ServiceSuite) TestEnrollDistinguishesIDTypes() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":1}`)))
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"1"}`)))

	courses, _ := s.service.ListEnrollments(s.ctx, s.bob)
	s.Len(courses, 2)
}

func (s *ServiceSuite) TestEnrollMatchesEquivalentIDs() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":1}`)))
	s.ErrorIs(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":1.0}`)), model.ErrAlreadyEnrolled)

	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":{"dept":"CS","num":101}}`)))
	s.ErrorIs(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":{"num":101,"dept":"CS"}}`)), model.ErrAlreadyEnrolled)

	s.Require().NoError(s.service.Drop(s.ctx, s.bob, s.course(`{"id":1e0}`)))
	s.Require().NoError(s.service.Drop(s.ctx, s.bob, s.course(`{"id":{"num":101.0,"dept":"\u0043S"}}`)))

	courses, err := s.service.ListEnrollments(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Empty(courses)
}

func (s *ServiceSuite) TestEnrollUnknownStudent() {
	err := s.service.Enroll(s.ctx, 42, s.course(`{"id":"CS101"}`))
	s.ErrorIs(err, model.ErrStudentNotFound)
}

func (s *ServiceSuite) TestEnrollWithoutCourseID() {
	err := s.service.Enroll(s.ctx, s.bob, model.Course{"title": json.RawMessage(`"x"`)})
	s.ErrorIs(err, model.ErrCourseIDRequired)
}

func (s *ServiceSuite) TestEnrollDoesNotTouchOtherStudents() {
	alice, err := s.registrar.Register(s.ctx, "alice", "pw", "")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))

	courses, err := s.service.ListEnrollments(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(courses)
}

func (s *ServiceSuite) TestEnrollRecordsMetrics() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))
	_ = s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`))

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Operations.WithLabelValues(metrics.OpEnroll, "success")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Operations.WithLabelValues(metrics.OpEnroll, "conflict")))
}

// Drop tests

func (s *ServiceSuite) TestDropRemovesCourse() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"MATH200"}`)))

	s.Require().NoError(s.service.Drop(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))

	courses, _ := s.service.ListEnrollments(s.ctx, s.bob)
	s.Require().Len(courses, 1)
	id, _ := courses[0].ID()
	s.Equal(`"MATH200"`, id)
}

func (s *ServiceSuite) TestDropMatchesOnIDOnly() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101","title":"Intro"}`)))

	s.Require().NoError(s.service.Drop(s.ctx, s.bob, s.course(`{"id":"CS101","title":"stale title"}`)))

	courses, _ := s.service.ListEnrollments(s.ctx, s.bob)
	s.Empty(courses)
}

func (s *ServiceSuite) TestDropTwiceFails() {
	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))
	s.Require().NoError(s.service.Drop(s.ctx, s.bob, s.course(`{"id":"CS101"}`)))
	before := s.readDocument()

	err := s.service.Drop(s.ctx, s.bob, s.course(`{"id":"CS101"}`))
	s.ErrorIs(err, model.ErrCourseNotEnrolled)
	s.Equal(before, s.readDocument())
}

func (s *ServiceSuite) TestDropUnknownStudent() {
	err := s.service.Drop(s.ctx, 42, s.course(`{"id":"CS101"}`))
	s.ErrorIs(err, model.ErrStudentNotFound)
}

func (s *ServiceSuite) TestDropWithoutCourseID() {
	err := s.service.Drop(s.ctx, s.bob, model.Course{})
	s.ErrorIs(err, model.ErrCourseIDRequired)
}

func (s *ServiceSuite) TestEnrollDropScenario() {
	course := s.course(`{"id":"MATH200","title":"Calculus"}`)

	s.Require().NoError(s.service.Enroll(s.ctx, s.bob, course))
	s.ErrorIs(s.service.Enroll(s.ctx, s.bob, course), model.ErrAlreadyEnrolled)

	courses, _ := s.service.ListEnrollments(s.ctx, s.bob)
	s.Len(courses, 1)

	s.Require().NoError(s.service.Drop(s.ctx, s.bob, course))
	s.ErrorIs(s.service.Drop(s.ctx, s.bob, course), model.ErrCourseNotEnrolled)

	courses, _ = s.service.ListEnrollments(s.ctx, s.bob)
	s.Empty(courses)
}

// Storage failures

func TestEnrollmentPropagatesStorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	service := New(store, nil, testutil.NopLogger())
	ctx := context.Background()
	course := model.Course{"id": json.RawMessage(`"CS101"`)}

	loadErr := &model.StorageError{Op: "load", Backend: "redis", Err: errors.New("connection refused")}
	store.EXPECT().Load(gomock.Any()).Return(nil, loadErr)
	store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(loadErr).Times(2)

	if _, err := service.ListEnrollments(ctx, 1); !model.IsStorageError(err) {
		t.Fatalf("list: expected storage error, got %v", err)
	}
	if err := service.Enroll(ctx, 1, course); !model.IsStorageError(err) {
		t.Fatalf("enroll: expected storage error, got %v", err)
	}
	if err := service.Drop(ctx, 1, course); !model.IsStorageError(err) {
		t.Fatalf("drop: expected storage error, got %v", err)
	}
}
