package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"articleapi/internal/apperror"
	"articleapi/internal/model"
	"articleapi/internal/repository"
	"articleapi/internal/storage"
	"articleapi/internal/validate"
)

const avatarKeyPrefix = "avatars"

// ProfilePatch is a sparse profile update: blank fields are left unchanged.
type ProfilePatch struct {
	FullName string
	Email    string
}

// ProfileService manages user profile records and their avatar images.
// Account provisioning and authentication live in the identity system; this
// service only maintains the profile projection.
type ProfileService interface {
	// Register creates the profile row for a newly provisioned account.
	Register(ctx context.Context, username, email, fullName string) (*model.User, error)

	// Get returns a profile by user ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// UpdateProfile applies a sparse patch to the caller's own profile.
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error)

	// UploadAvatar replaces the caller's avatar image. The new image is
	// durably stored before the old one is removed.
	UploadAvatar(ctx context.Context, userID string, file FileUpload) (*model.User, error)

	// OpenAvatar opens the stored avatar image for streaming.
	OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, *model.User, error)
}

type profileService struct {
	store  storage.Storage
	users  repository.UserRepository
	policy validate.FilePolicy
	log    *slog.Logger
}

// NewProfileService constructs a ProfileService. policy is the acceptance
// rule set for avatar uploads.
func NewProfileService(store storage.Storage, users repository.UserRepository, policy validate.FilePolicy, log *slog.Logger) ProfileService {
	if log == nil {
		log = slog.Default()
	}
	return &profileService{store: store, users: users, policy: policy, log: log}
}

func (s *profileService) Register(ctx context.Context, username, email, fullName string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperror.Validation("username must not be blank")
	}
	if err := validate.Profile(validate.ProfileFields{FullName: fullName, Email: email}); err != nil {
		return nil, err
	}
	if email == "" {
		return nil, apperror.Validation("email must not be blank")
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &model.User{
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		RegisteredAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, apperror.Storage("save user record", err)
	}
	return u, nil
}

func (s *profileService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Storage("load user record", err)
	}
	return u, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*model.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := validate.Profile(validate.ProfileFields{FullName: patch.FullName, Email: patch.Email}); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(patch.FullName); v != "" {
		u.FullName = v
	}
	if v := strings.TrimSpace(patch.Email); v != "" && v != u.Email {
		if err := s.ensureEmailFree(ctx, v); err != nil {
			return nil, err
		}
		u.Email = v
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Storage("save user record", err)
	}
	return updated, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID string, file FileUpload) (*model.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := validate.File(fileMeta(file), s.policy); err != nil {
		return nil, err
	}

	key := storage.NewObjectKey(avatarKeyPrefix, file.Filename)
	info, err := s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: file.ContentType,
		Metadata:    map[string]string{"original-filename": file.Filename},
	})
	if err != nil {
		return nil, apperror.Storage("store avatar binary", err)
	}

	oldKey := u.AvatarKey
	u.AvatarKey = info.Key
	if oldKey != "" {
		s.cleanupBinary(ctx, oldKey)
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		s.cleanupBinary(ctx, info.Key)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Storage("save user record", err)
	}
	return updated, nil
}

func (s *profileService) OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, *model.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u.AvatarKey == "" {
		return nil, nil, apperror.NotFound("avatar", userID)
	}
	rc, _, err := s.store.Get(ctx, u.AvatarKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperror.NotFound("avatar", userID)
		}
		return nil, nil, apperror.Storage("open avatar binary", err)
	}
	return rc, u, nil
}

func (s *profileService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.Validation("email already in use")
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return apperror.Storage("load user record", err)
	}
}

func (s *profileService) cleanupBinary(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "binary cleanup failed", "key", key, "error", err)
	}
}
