package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// milestoneRow mirrors the milestones table. Membership lives in
// milestone_issues and is attached on read.
type milestoneRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	StartDate   string `db:"start_date"`
	EndDate     string `db:"end_date"`
}

// SaveMilestone inserts a fresh milestone (zero id) or replaces the scalar
// fields of an existing one. Issue membership is managed exclusively through
// AddIssueToMilestone and RemoveIssueFromMilestone.
func (s *Store) SaveMilestone(ctx context.Context, milestone *types.Milestone) (*types.Milestone, error) {
	if milestone == nil {
		return nil, types.Validationf("milestone must not be nil")
	}
	if err := milestone.Validate(); err != nil {
		return nil, err
	}

	stored := milestone.Clone()
	var out *types.Milestone
	err := s.withTx(ctx, func(tx *Store) error {
		if !stored.HasPersistentID() {
			res, err := tx.q.ExecContext(ctx, `
				INSERT INTO milestones (name, description, start_date, end_date)
				VALUES (?, ?, ?, ?)
			`, stored.Name, stored.Description, stored.StartDate, stored.EndDate)
			if err != nil {
				return storage.WrapBackend("insert milestone", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return storage.WrapBackend("read inserted milestone id", err)
			}
			if err := stored.AssignID(id); err != nil {
				return err
			}
		} else {
			res, err := tx.q.ExecContext(ctx, `
				UPDATE milestones SET name = ?, description = ?, start_date = ?, end_date = ?
				WHERE id = ?
			`, stored.Name, stored.Description, stored.StartDate, stored.EndDate, stored.ID)
			if err != nil {
				return storage.WrapBackend("update milestone", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return storage.WrapBackend("check updated milestone rows", err)
			}
			if n == 0 {
				return storage.NotFoundf("milestone %d", stored.ID)
			}
		}
		got, err := tx.getMilestone(ctx, stored.ID)
		if err != nil {
			return err
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetMilestone returns a milestone with its member issue ids or ErrNotFound.
func (s *Store) GetMilestone(ctx context.Context, id int64) (*types.Milestone, error) {
	return s.getMilestone(ctx, id)
}

func (s *Store) getMilestone(ctx context.Context, id int64) (*types.Milestone, error) {
	var row milestoneRow
	err := sqlx.GetContext(ctx, s.q, &row, `
		SELECT id, name, description, start_date, end_date FROM milestones WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundf("milestone %d", id)
	}
	if err != nil {
		return nil, storage.WrapBackend("get milestone", err)
	}

	milestone := &types.Milestone{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
	}
	if err := sqlx.SelectContext(ctx, s.q, &milestone.IssueIDs, `
		SELECT issue_id FROM milestone_issues WHERE milestone_id = ? ORDER BY issue_id ASC
	`, id); err != nil {
		return nil, storage.WrapBackend("load milestone issues", err)
	}
	return milestone, nil
}

// DeleteMilestone removes a milestone. With cascade set the member issues are
// deleted too, all in one transaction; without it only the milestone and its
// membership rows go away.
func (s *Store) DeleteMilestone(ctx context.Context, id int64, cascade bool) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(tx *Store) error {
		if cascade {
			var issueIDs []int64
			if err := sqlx.SelectContext(ctx, tx.q, &issueIDs, `
				SELECT issue_id FROM milestone_issues WHERE milestone_id = ?
			`, id); err != nil {
				return storage.WrapBackend("load milestone issues", err)
			}
			for _, issueID := range issueIDs {
				if _, err := tx.DeleteIssue(ctx, issueID); err != nil {
					return err
				}
			}
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
		if err != nil {
			return storage.WrapBackend("delete milestone", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check deleted milestone rows", err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// ListMilestones returns all milestones ordered by start date, then id.
func (s *Store) ListMilestones(ctx context.Context) ([]*types.Milestone, error) {
	var ids []int64
	if err := sqlx.SelectContext(ctx, s.q, &ids, `SELECT id FROM milestones ORDER BY start_date ASC, id ASC`); err != nil {
		return nil, storage.WrapBackend("list milestones", err)
	}
	milestones := make([]*types.Milestone, 0, len(ids))
	for _, id := range ids {
		m, err := s.getMilestone(ctx, id)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

// AddIssueToMilestone links an issue into a milestone. Both sides must exist.
// Linking an already-linked issue is a no-op reported as false.
func (s *Store) AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	added := false
	err := s.withTx(ctx, func(tx *Store) error {
		if _, err := tx.getMilestone(ctx, milestoneID); err != nil {
			return err
		}
		ok, err := tx.issueExists(ctx, issueID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.NotFoundf("issue %d", issueID)
		}
		res, err := tx.q.ExecContext(ctx, `
			INSERT INTO milestone_issues (milestone_id, issue_id) VALUES (?, ?)
			ON CONFLICT (milestone_id, issue_id) DO NOTHING
		`, milestoneID, issueID)
		if err != nil {
			return storage.WrapBackend("add issue to milestone", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check added membership rows", err)
		}
		added = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// RemoveIssueFromMilestone unlinks an issue, reporting whether it was linked.
// Both sides must exist, matching AddIssueToMilestone.
func (s *Store) RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	removed := false
	err := s.withTx(ctx, func(tx *Store) error {
		if _, err := tx.getMilestone(ctx, milestoneID); err != nil {
			return err
		}
		ok, err := tx.issueExists(ctx, issueID)
		if err != nil {
			return err
		}
		if !ok {
			return storage.NotFoundf("issue %d", issueID)
		}
		res, err := tx.q.ExecContext(ctx, `
			DELETE FROM milestone_issues WHERE milestone_id = ? AND issue_id = ?
		`, milestoneID, issueID)
		if err != nil {
			return storage.WrapBackend("remove issue from milestone", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.WrapBackend("check removed membership rows", err)
		}
		removed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// GetIssuesForMilestone returns the milestone's member issues hydrated,
// ordered by ascending issue id.
func (s *Store) GetIssuesForMilestone(ctx context.Context, milestoneID int64) ([]*types.HydratedIssue, error) {
	milestone, err := s.getMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	issues := make([]*types.HydratedIssue, 0, len(milestone.IssueIDs))
	for _, issueID := range milestone.IssueIDs {
		issue, err := s.getIssue(ctx, issueID)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
