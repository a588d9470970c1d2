package repository

import (
	"context"

	"articleapi/internal/model"
)

// UserRepository defines data access for user profile records.
type UserRepository interface {
	// Create inserts a new user, assigning a fresh identifier.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email, or sql.ErrNoRows.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update replaces the mutable profile fields (email, full name, avatar
	// key). Returns sql.ErrNoRows if no such user exists.
	Update(ctx context.Context, u *model.User) (*model.User, error)
}
