package auth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/courseroster/internal/model"
	"github.com/mcoot/courseroster/internal/services/registrar"
	"github.com/mcoot/courseroster/internal/storage/memory"
	"github.com/mcoot/courseroster/internal/storage/mocks"
	"github.com/mcoot/courseroster/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage   *memory.Storage
	registrar *registrar.Service
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.registrar = registrar.New(s.storage, nil, testutil.NopLogger())
	s.service = New(s.storage, nil, testutil.NopLogger())
	s.ctx = context.Background()
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, err := s.registrar.Register(s.ctx, "alice", "correct", "a@x.com")
	s.Require().NoError(err)

	view, err := s.service.Login(s.ctx, "alice", "correct")
	s.Require().NoError(err)

	s.Equal(registered.ID, view.ID)
	s.Equal("alice", view.Username)
	s.Equal("a@x.com", view.Email)
}

func (s *ServiceSuite) TestLoginViewHasNoPassword() {
	_, err := s.registrar.Register(s.ctx, "alice", "correct", "a@x.com")
	s.Require().NoError(err)

	view, err := s.service.Login(s.ctx, "alice", "correct")
	s.Require().NoError(err)

	data, err := json.Marshal(view)
	s.Require().NoError(err)
	var fields map[string]any
	s.Require().NoError(json.Unmarshal(data, &fields))
	s.NotContains(fields, "password")
	s.NotContains(string(data), "correct")
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	_, _ = s.registrar.Register(s.ctx, "alice", "correct", "a@x.com")

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "correct")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailuresAreIndistinguishable() {
	_, _ = s.registrar.Register(s.ctx, "alice", "correct", "a@x.com")

	_, wrongPassword := s.service.Login(s.ctx, "alice", "wrong")
	_, unknownUser := s.service.Login(s.ctx, "nobody", "correct")
	s.Equal(wrongPassword.Error(), unknownUser.Error())
}

func (s *ServiceSuite) TestLoginPasswordIsExact() {
	_, _ = s.registrar.Register(s.ctx, "alice", "Secret", "")

	_, err := s.service.Login(s.ctx, "alice", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	_, err = s.service.Login(s.ctx, "alice", "Secret ")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginTrimsUsername() {
	_, _ = s.registrar.Register(s.ctx, "alice", "correct", "")

	view, err := s.service.Login(s.ctx, " alice ", "correct")
	s.Require().NoError(err)
	s.Equal("alice", view.Username)
}

func (s *ServiceSuite) TestLoginUsernameIsCaseSensitive() {
	_, _ = s.registrar.Register(s.ctx, "alice", "correct", "")

	_, err := s.service.Login(s.ctx, "ALICE", "correct")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func TestLoginPropagatesStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	service := New(store, nil, testutil.NopLogger())

	storageErr := &model.StorageError{Op: "load", Backend: "file", Err: model.ErrMalformedCollection}
	store.EXPECT().Load(gomock.Any()).Return(nil, storageErr)

	_, err := service.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, model.ErrMalformedCollection) || errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("expected malformed-collection storage error, got %v", err)
	}
}
