package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"articleapi/internal/model"
	"articleapi/internal/service"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Register(ctx context.Context, username, email, fullName string) (*model.User, error) {
	args := m.Called(ctx, username, email, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) Get(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID string, patch service.ProfilePatch) (*model.User, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, userID string, file service.FileUpload) (*model.User, error) {
	args := m.Called(ctx, userID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, *model.User, error) {
	args := m.Called(ctx, userID)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var u *model.User
	if args.Get(1) != nil {
		u = args.Get(1).(*model.User)
	}
	return rc, u, args.Error(2)
}
