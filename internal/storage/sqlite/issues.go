package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// unsetDescription is the on-disk value of description_comment_id when no
// description comment is linked. In-memory the sentinel is 0; the -1 column
// default is part of the persisted layout contract.
const unsetDescription int64 = -1

// issueRow mirrors the issues table.
type issueRow struct {
	ID                   int64          `db:"id"`
	AuthorID             string         `db:"author_id"`
	Title                string         `db:"title"`
	DescriptionCommentID int64          `db:"description_comment_id"`
	AssignedTo           sql.NullString `db:"assigned_to"`
	Status               string         `db:"status"`
	CreatedAt            int64          `db:"created_at"`
}

func descriptionToDB(id int64) int64 {
	if id == 0 {
		return unsetDescription
	}
	return id
}

func assigneeToDB(assignedTo string) any {
	if assignedTo == "" {
		return nil
	}
	return assignedTo
}

// SaveIssue inserts a fresh issue (zero id) or replaces the scalar fields and
// tag set of an existing one. The comment set is never touched here. The
// returned issue is hydrated.
func (s *Store) SaveIssue(ctx context.Context, issue *types.Issue) (*types.HydratedIssue, error) {
	if issue == nil {
		return nil, types.Validationf("issue must not be nil")
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}

	stored := issue.Clone()
	var out *types.HydratedIssue
	err := s.withTx(ctx, func(tx *Store) error {
		if !stored.HasPersistentID() {
			if stored.CreatedAt == 0 {
				if err := stored.SetCreatedAt(nowMillis()); err != nil {
					return err
				}
			}
			res, err := tx.q.ExecContext(ctx, `
				INSERT INTO issues (author_id, title, description_comment_id, assigned_to, status, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, stored.AuthorID, stored.Title, descriptionToDB(stored.DescriptionCommentID),
				assigneeToDB(stored.AssignedTo), string(stored.Status), stored.CreatedAt)
			if err != nil {
				return storage.WrapBackend("insert issue", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return storage.WrapBackend("read inserted issue id", err)
			}
			if err := stored.AssignID(id); err != nil {
				return err
			}
		} else {
			ok, err := tx.issueExists(ctx, stored.ID)
			if err != nil {
				return err
			}
			if !ok {
				return storage.NotFoundf("issue %d", stored.ID)
			}
			if stored.CreatedAt == 0 {
				if err := stored.SetCreatedAt(nowMillis()); err != nil {
					return err
				}
			}
			if _, err := tx.q.ExecContext(ctx, `
				UPDATE issues
				SET author_id = ?, title = ?, description_comment_id = ?, assigned_to = ?, status = ?, created_at = ?
				WHERE id = ?
			`, stored.AuthorID, stored.Title, descriptionToDB(stored.DescriptionCommentID),
				assigneeToDB(stored.AssignedTo), string(stored.Status), stored.CreatedAt, stored.ID); err != nil {
				return storage.WrapBackend("update issue", err)
			}
			if _, err := tx.q.ExecContext(ctx, `DELETE FROM issue_tags WHERE issue_id = ?`, stored.ID); err != nil {
				return storage.WrapBackend("clear issue tags", err)
			}
		}

		for _, tag := range stored.Tags {
			if _, err := tx.q.ExecContext(ctx, `
				INSERT INTO issue_tags (issue_id, name, color) VALUES (?, ?, ?)
				ON CONFLICT (issue_id, name) DO UPDATE SET color = excluded.color
			`, stored.ID, tag.Name, tag.Color); err != nil {
				return storage.WrapBackend("insert issue tag", err)
			}
		}

		hydrated, err := tx.getIssue(ctx, stored.ID)
		if err != nil {
			return err
		}
		out = hydrated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetIssue returns a hydrated issue or ErrNotFound.
func (s *Store) GetIssue(ctx context.Context, id int64) (*types.HydratedIssue, error) {
	return s.getIssue(ctx, id)
}

func (s *Store) getIssue(ctx context.Context, id int64) (*types.HydratedIssue, error) {
	var row issueRow
	err := sqlx.GetContext(ctx, s.q, &row, `
		SELECT id, author_id, title, description_comment_id, assigned_to, status, created_at
		FROM issues WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundf("issue %d", id)
	}
	if err != nil {
		return nil, storage.WrapBackend("get issue", err)
	}

	issue := types.Issue{
		ID:        row.ID,
		AuthorID:  row.AuthorID,
		Title:     row.Title,
		Status:    types.Status(row.Status),
		CreatedAt: row.CreatedAt,
	}
	if row.AssignedTo.Valid {
		issue.AssignedTo = row.AssignedTo.String
	}

	hydrated := &types.HydratedIssue{Issue: issue}

	comments, err := s.loadComments(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if err := hydrated.UpsertComment(c); err != nil {
			return nil, err
		}
	}

	// The description link is honored only when it points at a comment that
	// actually exists on the issue.
	if row.DescriptionCommentID > 0 && hydrated.FindComment(row.DescriptionCommentID) != nil {
		if err := hydrated.SetDescriptionCommentID(row.DescriptionCommentID); err != nil {
			return nil, err
		}
	}

	if err := sqlx.SelectContext(ctx, s.q, &hydrated.Tags, `
		SELECT name, color FROM issue_tags WHERE issue_id = ? ORDER BY name
	`, id); err != nil {
		return nil, storage.WrapBackend("load issue tags", err)
	}

	return hydrated, nil
}

// DeleteIssue removes an issue. The foreign keys cascade the delete to the
// issue's comments, tag rows and milestone memberships in the same statement,
// so the operation is atomic by construction.
func (s *Store) DeleteIssue(ctx context.Context, id int64) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return false, storage.WrapBackend("delete issue", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storage.WrapBackend("check deleted issue rows", err)
	}
	return n > 0, nil
}

// ListIssues returns every issue hydrated, ordered by ascending id.
func (s *Store) ListIssues(ctx context.Context) ([]*types.HydratedIssue, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, s.q, &ids, `SELECT id FROM issues ORDER BY id ASC`); err != nil {
		return nil, storage.WrapBackend("list issues", err)
	}
	issues := make([]*types.HydratedIssue, 0, len(ids))
	for _, id := range ids {
		issue, err := s.getIssue(ctx, id)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// FindIssues filters the full hydrated list through the predicate.
func (s *Store) FindIssues(ctx context.Context, keep func(*types.HydratedIssue) bool) ([]*types.HydratedIssue, error) {
	all, err := s.ListIssues(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*types.HydratedIssue, 0, len(all))
	for _, issue := range all {
		if keep(issue) {
			filtered = append(filtered, issue)
		}
	}
	return filtered, nil
}

func (s *Store) issueExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, s.q, &one, `SELECT 1 FROM issues WHERE id = ? LIMIT 1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.WrapBackend("check issue existence", err)
	}
	return true, nil
}
