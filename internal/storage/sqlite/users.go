package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// SaveUser upserts a user keyed by name.
func (s *Store) SaveUser(ctx context.Context, user *types.User) (*types.User, error) {
	if user == nil {
		return nil, types.Validationf("user must not be nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.q.ExecContext(ctx, `
		INSERT INTO users (name, role) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET role = excluded.role
	`, user.Name, user.Role); err != nil {
		return nil, storage.WrapBackend("save user", err)
	}
	stored := *user
	return &stored, nil
}

// GetUser returns the user with the given name or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, name string) (*types.User, error) {
	var user types.User
	err := sqlx.GetContext(ctx, s.q, &user, `SELECT name, role FROM users WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundf("user %q", name)
	}
	if err != nil {
		return nil, storage.WrapBackend("get user", err)
	}
	return &user, nil
}

// DeleteUser removes a user row. Issues and comments referencing the name are
// left untouched; rewriting those is the caller's concern.
func (s *Store) DeleteUser(ctx context.Context, name string) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE name = ?`, name)
	if err != nil {
		return false, storage.WrapBackend("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storage.WrapBackend("check deleted user rows", err)
	}
	return n > 0, nil
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]*types.User, error) {
	var users []*types.User
	if err := sqlx.SelectContext(ctx, s.q, &users, `SELECT name, role FROM users ORDER BY name ASC`); err != nil {
		return nil, storage.WrapBackend("list users", err)
	}
	return users, nil
}
