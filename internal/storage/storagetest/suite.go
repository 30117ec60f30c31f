// Package storagetest holds the behaviour every storage.Store backend must share.
// Backend packages run it from their own tests:
//
//	suite.Run(t, &storagetest.StoreSuite{NewStore: func(t *testing.T) storage.Store { ... }})
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/storage"
)

// StoreSuite exercises a storage.Store implementation
type StoreSuite struct {
	suite.Suite

	// NewStore returns an empty store for each test
	NewStore func(t *testing.T) storage.Store

	// WriteRaw, when set, replaces the persisted document of store with doc.
	// Backends that do not hold a single document leave it nil.
	WriteRaw func(t *testing.T, store storage.Store, doc string)

	Store storage.Store
	Ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.Require().NotNil(s.NewStore, "NewStore must be set")
	s.Store = s.NewStore(s.T())
	s.Ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// Course builds a course snapshot from a JSON literal
func Course(t *testing.T, raw string) model.Course {
	t.Helper()
	var c model.Course
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("invalid course literal %q: %v", raw, err)
	}
	return c
}

// Student builds a student with no enrollments
func Student(id model.StudentID, username string) *model.Student {
	return &model.Student{
		ID:              id,
		Username:        username,
		Password:        "pw-" + username,
		Email:           username + "@example.com",
		EnrolledCourses: []model.Course{},
	}
}

func (s *StoreSuite) encode(students []*model.Student) string {
	data, err := storage.EncodeCollection(students)
	s.Require().NoError(err)
	return string(data)
}

func (s *StoreSuite) TestLoadEmpty() {
	students, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.NotNil(students)
	s.Empty(students)
}

func (s *StoreSuite) TestSaveAndLoadPreservesOrder() {
	in := []*model.Student{Student(3, "carol"), Student(1, "alice"), Student(2, "bob")}
	s.Require().NoError(s.Store.Save(s.Ctx, in))

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 3)
	s.Equal(model.StudentID(3), out[0].ID)
	s.Equal(model.StudentID(1), out[1].ID)
	s.Equal(model.StudentID(2), out[2].ID)
	s.Equal("pw-alice", out[1].Password)
	s.Equal("alice@example.com", out[1].Email)
}

func (s *StoreSuite) TestSaveOfLoadIsIdempotent() {
	bob := Student(1, "bob")
	bob.EnrolledCourses = []model.Course{
		Course(s.T(), `{"id":"MATH200","name":"Calculus","credits":4}`),
		Course(s.T(), `{"id":7,"tags":["a","b"]}`),
	}
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{bob, Student(2, "alice")}))

	first, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.Store.Save(s.Ctx, first))
	second, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)

	s.JSONEq(s.encode(first), s.encode(second))
}

func (s *StoreSuite) TestCourseSnapshotsAreStoredVerbatim() {
	bob := Student(1, "bob")
	bob.EnrolledCourses = []model.Course{
		Course(s.T(), `{"id":"MATH200","name":"Calculus","schedule":{"days":["Mon","Wed"]}}`),
	}
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{bob}))

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(out[0].EnrolledCourses, 1)

	data, err := json.Marshal(out[0].EnrolledCourses[0])
	s.Require().NoError(err)
	s.JSONEq(`{"id":"MATH200","name":"Calculus","schedule":{"days":["Mon","Wed"]}}`, string(data))
}

func (s *StoreSuite) TestSaveReplacesCollection() {
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(1, "alice"), Student(2, "bob")}))
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(5, "eve")}))

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("eve", out[0].Username)
}

func (s *StoreSuite) TestLoadedCollectionIsIndependent() {
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(1, "alice")}))

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	out[0].Username = "mallory"
	out[0].EnrolledCourses = append(out[0].EnrolledCourses, Course(s.T(), `{"id":1}`))

	again, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Equal("alice", again[0].Username)
	s.Empty(again[0].EnrolledCourses)
}

func (s *StoreSuite) TestUpdateAppliesMutation() {
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(1, "alice")}))

	err := s.Store.Update(s.Ctx, func(students []*model.Student) ([]*model.Student, error) {
		return append(students, Student(model.NextStudentID(students), "bob")), nil
	})
	s.Require().NoError(err)

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal(model.StudentID(2), out[1].ID)
}

func (s *StoreSuite) TestUpdateSeesLatestSave() {
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(1, "alice"), Student(2, "bob")}))

	var seen int
	err := s.Store.Update(s.Ctx, func(students []*model.Student) ([]*model.Student, error) {
		seen = len(students)
		return students, nil
	})
	s.Require().NoError(err)
	s.Equal(2, seen)
}

func (s *StoreSuite) TestUpdateAbortLeavesCollectionUntouched() {
	s.Require().NoError(s.Store.Save(s.Ctx, []*model.Student{Student(1, "alice")}))
	before, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)

	errAbort := errors.New("abort")
	err = s.Store.Update(s.Ctx, func(students []*model.Student) ([]*model.Student, error) {
		students[0].Username = "changed"
		return append(students, Student(2, "bob")), errAbort
	})
	s.ErrorIs(err, errAbort)

	after, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.JSONEq(s.encode(before), s.encode(after))
}

func (s *StoreSuite) TestConcurrentUpdatesLoseNothing() {
	const writers = 10

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Store.Update(s.Ctx, func(students []*model.Student) ([]*model.Student, error) {
				id := model.NextStudentID(students)
				return append(students, Student(id, "user"+string(rune('a'+int(id)-1)))), nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	out, err := s.Store.Load(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(out, writers)
	for i, st := range out {
		s.Equal(model.StudentID(i+1), st.ID)
	}
}

func (s *StoreSuite) TestLoadRejectsMalformedDocuments() {
	if s.WriteRaw == nil {
		s.T().Skip("backend does not persist a raw document")
	}

	docs := []string{
		`null`,
		`{"a":1}`,
		`[{}]`,
		`[{"username":"x"}]`,
		`[{"id":1}]`,
		`[{"id":"1","username":"x"}]`,
		`[null]`,
	}
	for _, doc := range docs {
		s.Run(doc, func() {
			s.WriteRaw(s.T(), s.Store, doc)

			students, err := s.Store.Load(s.Ctx)
			s.Require().Error(err)
			s.True(model.IsStorageError(err))
			s.ErrorIs(err, model.ErrMalformedCollection)
			s.Nil(students)
		})
	}
}

func (s *StoreSuite) TestUpdateDoesNotOverwriteMalformedDocument() {
	if s.WriteRaw == nil {
		s.T().Skip("backend does not persist a raw document")
	}
	s.WriteRaw(s.T(), s.Store, `null`)

	called := false
	err := s.Store.Update(s.Ctx, func(students []*model.Student) ([]*model.Student, error) {
		called = true
		return append(students, Student(1, "alice")), nil
	})
	s.ErrorIs(err, model.ErrMalformedCollection)
	s.False(called)

	_, err = s.Store.Load(s.Ctx)
	s.ErrorIs(err, model.ErrMalformedCollection)
}
