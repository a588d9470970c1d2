package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"articleapi/internal/model"
	"articleapi/internal/repository"
)

// UserSQLite is a SQLite implementation of repository.UserRepository.
type UserSQLite struct {
	db *sql.DB
}

// NewUserSQLite creates a new UserSQLite repository.
func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

var _ repository.UserRepository = (*UserSQLite)(nil)

const userColumns = `id, username, email, full_name, avatar_key, registered_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.AvatarKey,
		&u.RegisteredAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row with a freshly assigned ID.
func (r *UserSQLite) Create(ctx context.Context, u *model.User) (*model.User, error) {
	id := uuid.NewString()
	const q = `
		INSERT INTO users (id, username, email, full_name, avatar_key, registered_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, id, u.Username, u.Email, u.FullName, u.AvatarKey, u.RegisteredAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single user by ID.
func (r *UserSQLite) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserSQLite) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// Update replaces the mutable profile fields. Returns sql.ErrNoRows if the
// row does not exist.
func (r *UserSQLite) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `UPDATE users SET email = ?, full_name = ?, avatar_key = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, u.Email, u.FullName, u.AvatarKey, u.ID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, u.ID)
}
