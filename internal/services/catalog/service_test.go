package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courseroster/internal/dependencies/mocks"
	"github.com/mcoot/courseroster/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	dir     string
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.random = mocks.NewMockRandom()
	s.service = New(Config{
		CoursesPath:      filepath.Join(s.dir, "courses.json"),
		TestimonialsPath: filepath.Join(s.dir, "testimonials.json"),
	}, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) write(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644))
}

// Courses tests

func (s *ServiceSuite) TestCoursesReturnsCatalogVerbatim() {
	s.write("courses.json", `[{"id":1,"name":"Intro to Programming","instructor":"Dr. Ada"},{"id":2,"name":"Databases"}]`)

	courses, err := s.service.Courses(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(courses, 2)
	s.JSONEq(`{"id":1,"name":"Intro to Programming","instructor":"Dr. Ada"}`, string(courses[0]))
}

func (s *ServiceSuite) TestCoursesMissingFile() {
	_, err := s.service.Courses(s.ctx)
	s.Error(err)
}

func (s *ServiceSuite) TestCoursesNotAnArray() {
	s.write("courses.json", `{"id":1}`)

	_, err := s.service.Courses(s.ctx)
	s.ErrorIs(err, ErrInvalidDocument)
}

func (s *ServiceSuite) TestCoursesReadOnEveryCall() {
	s.write("courses.json", `[{"id":1}]`)
	first, err := s.service.Courses(s.ctx)
	s.Require().NoError(err)

	s.write("courses.json", `[{"id":1},{"id":2}]`)
	second, err := s.service.Courses(s.ctx)
	s.Require().NoError(err)

	s.Len(first, 1)
	s.Len(second, 2)
}

// Testimonials tests

func (s *ServiceSuite) TestTestimonialsSamplesTwo() {
	s.write("testimonials.json", `[{"name":"A"},{"name":"B"},{"name":"C"}]`)
	s.random.QueueIntn(2, 0)

	got := s.service.Testimonials(s.ctx)
	s.Require().Len(got, 2)

	var first, second map[string]string
	s.Require().NoError(json.Unmarshal(got[0], &first))
	s.Require().NoError(json.Unmarshal(got[1], &second))
	s.Equal("C", first["name"])
	s.Equal("B", second["name"])
}

func (s *ServiceSuite) TestTestimonialsTooFewIsEmpty() {
	s.write("testimonials.json", `[{"name":"A"}]`)

	got := s.service.Testimonials(s.ctx)
	s.NotNil(got)
	s.Empty(got)
}

func (s *ServiceSuite) TestTestimonialsMissingFileIsEmpty() {
	got := s.service.Testimonials(s.ctx)
	s.NotNil(got)
	s.Empty(got)
}

func (s *ServiceSuite) TestTestimonialsMalformedIsEmpty() {
	s.write("testimonials.json", `not json`)

	s.Empty(s.service.Testimonials(s.ctx))
}
