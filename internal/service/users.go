package service

import (
	"context"
	"errors"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// CreateUser persists a user. Re-creating an existing name is an upsert of
// the role, matching the repository contract.
func (s *Service) CreateUser(ctx context.Context, name, role string) (*types.User, error) {
	user, err := types.NewUser(name, role)
	if err != nil {
		return nil, err
	}
	return s.repo.SaveUser(ctx, user)
}

// GetUser returns a user by name.
func (s *Service) GetUser(ctx context.Context, name string) (*types.User, error) {
	return s.repo.GetUser(ctx, name)
}

// ListAllUsers returns every user ordered by name.
func (s *Service) ListAllUsers(ctx context.Context) ([]*types.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUser applies one named edit to a user. "role" is a local mutation;
// "name" is a rename, which cascades through every issue and comment that
// references the old name before removing the old row. Renaming onto a name
// that is already taken fails.
func (s *Service) UpdateUser(ctx context.Context, name, field, value string) bool {
	switch field {
	case "role":
		user, err := s.repo.GetUser(ctx, name)
		if err != nil {
			return false
		}
		if err := user.SetRole(value); err != nil {
			return false
		}
		_, err = s.repo.SaveUser(ctx, user)
		return err == nil

	case "name":
		return s.renameUser(ctx, name, value)

	default:
		return false
	}
}

// RemoveUser deletes the user row. References from issues and comments are
// left in place (deleting a user does not orphan history).
func (s *Service) RemoveUser(ctx context.Context, name string) bool {
	deleted, err := s.repo.DeleteUser(ctx, name)
	return err == nil && deleted
}

func (s *Service) renameUser(ctx context.Context, oldName, newName string) bool {
	if newName == "" || newName == oldName {
		return false
	}
	if _, err := s.repo.GetUser(ctx, newName); err == nil {
		return false // name already taken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return false
	}

	cascade := func(r storage.Repository) error {
		user, err := r.GetUser(ctx, oldName)
		if err != nil {
			return err
		}
		renamed := *user
		if err := renamed.SetName(newName); err != nil {
			return err
		}
		if _, err := r.SaveUser(ctx, &renamed); err != nil {
			return err
		}

		issues, err := r.ListIssues(ctx)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			row := issue.Issue.Clone()
			changed := false
			if row.AuthorID == oldName {
				if err := row.SetAuthor(newName); err != nil {
					return err
				}
				changed = true
			}
			if row.AssignedTo == oldName {
				if err := row.AssignTo(newName); err != nil {
					return err
				}
				changed = true
			}
			if changed {
				if _, err := r.SaveIssue(ctx, row); err != nil {
					return err
				}
			}
			for _, comment := range issue.Comments {
				if comment.Author != oldName {
					continue
				}
				edited := comment.Clone()
				if err := edited.SetAuthor(newName); err != nil {
					return err
				}
				if _, err := r.SaveComment(ctx, issue.ID, edited); err != nil {
					return err
				}
			}
		}

		_, err = r.DeleteUser(ctx, oldName)
		return err
	}

	// Atomic when the backend can manage it; otherwise sequential, which is
	// idempotent under retry (re-running the cascade rewrites nothing new).
	if tx, ok := storage.AsTransactional(s.repo); ok {
		return tx.InTransaction(ctx, cascade) == nil
	}
	return cascade(s.repo) == nil
}
