package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"articleapi/internal/apperror"
	"articleapi/internal/model"
	repomocks "articleapi/internal/repository/mocks"
	"articleapi/internal/storage"
	storagemocks "articleapi/internal/storage/mocks"
	"articleapi/internal/validate"
)

func newProfileService(t *testing.T) (*storagemocks.MockStorage, *repomocks.MockUserRepository, ProfileService) {
	t.Helper()
	store := new(storagemocks.MockStorage)
	users := new(repomocks.MockUserRepository)
	policy := validate.FilePolicy{MaxBytes: 2 << 20, MediaType: "image/"}
	return store, users, NewProfileService(store, users, policy, discardLogger())
}

func existingUser() *model.User {
	return &model.User{
		ID:           "u1",
		Username:     "jsmith",
		Email:        "j@example.com",
		FullName:     "Jane Smith",
		AvatarKey:    "avatars/100_bbbb.png",
		RegisteredAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func echoUserUpdate(users *repomocks.MockUserRepository) {
	users.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(func(_ context.Context, u *model.User) *model.User {
			out := *u
			return &out
		}, nil)
}

func TestRegisterCreatesProfile(t *testing.T) {
	_, users, svc := newProfileService(t)
	users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows)
	users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Return(func(_ context.Context, u *model.User) *model.User {
			out := *u
			out.ID = "u9"
			return &out
		}, nil)

	u, err := svc.Register(context.Background(), " newuser ", "new@example.com", "New User")
	require.NoError(t, err)

	assert.Equal(t, "u9", u.ID)
	assert.Equal(t, "newuser", u.Username)
	assert.WithinDuration(t, time.Now().UTC(), u.RegisteredAt, 5*time.Second)
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	_, users, svc := newProfileService(t)
	users.On("FindByEmail", mock.Anything, "j@example.com").Return(existingUser(), nil)

	_, err := svc.Register(context.Background(), "other", "j@example.com", "")

	assert.True(t, errors.Is(err, apperror.ErrValidation))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	cases := []struct {
		name                      string
		username, email, fullName string
	}{
		{"blank username", "  ", "a@example.com", ""},
		{"blank email", "user", "", ""},
		{"malformed email", "user", "not-an-email", ""},
		{"long full name", "user", "a@example.com", strings.Repeat("x", 101)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, users, svc := newProfileService(t)
			users.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows).Maybe()

			_, err := svc.Register(context.Background(), tc.username, tc.email, tc.fullName)

			assert.True(t, errors.Is(err, apperror.ErrValidation))
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateProfileSparsePatch(t *testing.T) {
	_, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)
	echoUserUpdate(users)

	got, err := svc.UpdateProfile(context.Background(), "u1", ProfilePatch{FullName: "Jane Q. Smith"})
	require.NoError(t, err)

	assert.Equal(t, "Jane Q. Smith", got.FullName)
	// Blank email leaves the existing address, so no uniqueness lookup runs.
	assert.Equal(t, "j@example.com", got.Email)
	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestUpdateProfileEmailChangeChecksUniqueness(t *testing.T) {
	_, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)
	users.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{ID: "u2"}, nil)

	_, err := svc.UpdateProfile(context.Background(), "u1", ProfilePatch{Email: "taken@example.com"})

	assert.True(t, errors.Is(err, apperror.ErrValidation))
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfileMissingUser(t *testing.T) {
	_, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "gone").Return(nil, sql.ErrNoRows)

	_, err := svc.UpdateProfile(context.Background(), "gone", ProfilePatch{FullName: "X"})

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUploadAvatarReplacesOldImage(t *testing.T) {
	store, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)
	echoUserUpdate(users)

	store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "avatars/") }), mock.Anything, mock.Anything).
		Return(func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			return storage.ObjectInfo{Key: key, Size: opt.Size}
		}, nil)
	store.On("Delete", mock.Anything, "avatars/100_bbbb.png").Return(nil)

	got, err := svc.UploadAvatar(context.Background(), "u1", FileUpload{
		Reader:      strings.NewReader("png bytes"),
		Filename:    "me.png",
		ContentType: "image/png",
		Size:        9,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "avatars/100_bbbb.png", got.AvatarKey)
	assert.True(t, strings.HasPrefix(got.AvatarKey, "avatars/"))
	store.AssertExpectations(t)
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	store, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)

	_, err := svc.UploadAvatar(context.Background(), "u1", FileUpload{
		Reader:      strings.NewReader("%PDF-1.4"),
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Size:        8,
	})

	assert.True(t, errors.Is(err, apperror.ErrValidation))
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadAvatarRejectsOversized(t *testing.T) {
	store, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)

	_, err := svc.UploadAvatar(context.Background(), "u1", FileUpload{
		Reader:      strings.NewReader("x"),
		Filename:    "big.png",
		ContentType: "image/png",
		Size:        2<<20 + 1,
	})

	assert.True(t, errors.Is(err, apperror.ErrValidation))
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenAvatar(t *testing.T) {
	store, users, svc := newProfileService(t)
	users.On("FindByID", mock.Anything, "u1").Return(existingUser(), nil)
	store.On("Get", mock.Anything, "avatars/100_bbbb.png").
		Return(io.NopCloser(strings.NewReader("png bytes")), storage.ObjectInfo{}, nil)

	rc, u, err := svc.OpenAvatar(context.Background(), "u1")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
	assert.Equal(t, "jsmith", u.Username)
}

func TestOpenAvatarWhenUnset(t *testing.T) {
	_, users, svc := newProfileService(t)
	u := existingUser()
	u.AvatarKey = ""
	users.On("FindByID", mock.Anything, "u1").Return(u, nil)

	_, _, err := svc.OpenAvatar(context.Background(), "u1")

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
