package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// SaveComment inserts a fresh comment (zero id) under the issue, allocating
// the next per-issue id, or replaces an existing one. A zero timestamp is
// filled at first insert.
func (s *Store) SaveComment(ctx context.Context, issueID int64, comment *types.Comment) (*types.Comment, error) {
	if comment == nil {
		return nil, types.Validationf("comment must not be nil")
	}
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	stored := comment.Clone()
	err := s.withTx(ctx, func(tx *Store) error {
		ok, err := tx.issueExists(ctx, issueID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.NotFoundf("issue %d", issueID)
		}

		if !stored.HasPersistentID() {
			if stored.Timestamp == 0 {
				if err := stored.SetTimestamp(nowMillis()); err != nil {
					return err
				}
			}
			// Comment ids are allocated per issue, starting at 1.
			var next int64
			if err := sqlx.GetContext(ctx, tx.q, &next, `
				SELECT COALESCE(MAX(id), 0) + 1 FROM comments WHERE issue_id = ?
			`, issueID); err != nil {
				return storage.WrapBackend("allocate comment id", err)
			}
			if err := stored.AssignID(next); err != nil {
				return err
			}
			if _, err := tx.q.ExecContext(ctx, `
				INSERT INTO comments (issue_id, id, author_id, text, timestamp)
				VALUES (?, ?, ?, ?, ?)
			`, issueID, stored.ID, stored.Author, stored.Text, stored.Timestamp); err != nil {
				return storage.WrapBackend("insert comment", err)
			}
			return nil
		}

		res, err := tx.q.ExecContext(ctx, `
			UPDATE comments SET author_id = ?, text = ?, timestamp = ?
			WHERE issue_id = ? AND id = ?
		`, stored.Author, stored.Text, stored.Timestamp, issueID, stored.ID)
		if err != nil {
			return storage.WrapBackend("update comment", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check updated comment rows", err)
		}
		if n == 0 {
			return storage.NotFoundf("comment %d on issue %d", stored.ID, issueID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetComment returns one comment of an issue or ErrNotFound.
func (s *Store) GetComment(ctx context.Context, issueID, commentID int64) (*types.Comment, error) {
	var comment types.Comment
	err := sqlx.GetContext(ctx, s.q, &comment, `
		SELECT id, author_id, text, timestamp FROM comments
		WHERE issue_id = ? AND id = ?
	`, issueID, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundf("comment %d on issue %d", commentID, issueID)
	}
	if err != nil {
		return nil, storage.WrapBackend("get comment", err)
	}
	return &comment, nil
}

// GetAllComments returns the issue's comments ordered by ascending id. The
// issue itself must exist.
func (s *Store) GetAllComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	ok, err := s.issueExists(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.NotFoundf("issue %d", issueID)
	}
	return s.loadComments(ctx, issueID)
}

func (s *Store) loadComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	var comments []*types.Comment
	if err := sqlx.SelectContext(ctx, s.q, &comments, `
		SELECT id, author_id, text, timestamp FROM comments
		WHERE issue_id = ? ORDER BY id ASC
	`, issueID); err != nil {
		return nil, storage.WrapBackend("load comments", err)
	}
	return comments, nil
}

// DeleteComment removes one comment. When the issue's description link points
// at the removed comment the link is cleared in the same transaction.
func (s *Store) DeleteComment(ctx context.Context, issueID, commentID int64) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx *Store) error {
		if _, err := tx.q.ExecContext(ctx, `
			UPDATE issues SET description_comment_id = ?
			WHERE id = ? AND description_comment_id = ?
		`, unsetDescription, issueID, commentID); err != nil {
			return storage.WrapBackend("clear description link", err)
		}
		res, err := tx.q.ExecContext(ctx, `
			DELETE FROM comments WHERE issue_id = ? AND id = ?
		`, issueID, commentID)
		if err != nil {
			return storage.WrapBackend("delete comment", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check deleted comment rows", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
