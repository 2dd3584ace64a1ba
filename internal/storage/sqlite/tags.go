package sqlite

import (
	"context"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// AddTag attaches a tag to an issue, recoloring it when already present.
// It reports whether the issue's tag set actually changed.
func (s *Store) AddTag(ctx context.Context, issueID int64, tag types.Tag) (bool, error) {
	if err := tag.Validate(); err != nil {
		return false, err
	}
	changed := false
	err := s.withTx(ctx, func(tx *Store) error {
		issue, err := tx.getIssue(ctx, issueID)
		if err != nil {
			return err
		}
		added, err := issue.AddTag(tag)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}
		if _, err := tx.q.ExecContext(ctx, `
			INSERT INTO issue_tags (issue_id, name, color) VALUES (?, ?, ?)
			ON CONFLICT (issue_id, name) DO UPDATE SET color = excluded.color
		`, issueID, tag.Name, tag.Color); err != nil {
			return storage.WrapBackend("add tag", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// RemoveTag detaches a tag by name, reporting whether it was present.
func (s *Store) RemoveTag(ctx context.Context, issueID int64, name string) (bool, error) {
	removed := false
	err := s.withTx(ctx, func(tx *Store) error {
		ok, err := tx.issueExists(ctx, issueID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.NotFoundf("issue %d", issueID)
		}
		res, err := tx.q.ExecContext(ctx, `
			DELETE FROM issue_tags WHERE issue_id = ? AND name = ?
		`, issueID, name)
		if err != nil {
			return storage.WrapBackend("remove tag", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check removed tag rows", err)
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
