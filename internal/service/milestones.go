package service

import (
	"context"

	"github.com/avigan/tracker/internal/types"
)

// MilestoneUpdate is a sparse edit: nil fields are left untouched. At least
// one field must be set.
type MilestoneUpdate struct {
	Name        *string
	Description *string
	StartDate   *string
	EndDate     *string
}

func (u MilestoneUpdate) empty() bool {
	return u.Name == nil && u.Description == nil && u.StartDate == nil && u.EndDate == nil
}

// CreateMilestone persists a milestone with non-empty name and dates.
func (s *Service) CreateMilestone(ctx context.Context, name, description, startDate, endDate string) (*types.Milestone, error) {
	milestone, err := types.NewMilestone(name, description, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.repo.SaveMilestone(ctx, milestone)
}

// GetMilestone returns a milestone with its member issue ids.
func (s *Service) GetMilestone(ctx context.Context, id int64) (*types.Milestone, error) {
	return s.repo.GetMilestone(ctx, id)
}

// UpdateMilestone applies a sparse edit.
func (s *Service) UpdateMilestone(ctx context.Context, id int64, update MilestoneUpdate) bool {
	if update.empty() {
		return false
	}
	milestone, err := s.repo.GetMilestone(ctx, id)
	if err != nil {
		return false
	}
	if update.Name != nil {
		if err := milestone.SetName(*update.Name); err != nil {
			return false
		}
	}
	if update.Description != nil {
		milestone.SetDescription(*update.Description)
	}
	if update.StartDate != nil {
		if err := milestone.SetStartDate(*update.StartDate); err != nil {
			return false
		}
	}
	if update.EndDate != nil {
		if err := milestone.SetEndDate(*update.EndDate); err != nil {
			return false
		}
	}
	_, err = s.repo.SaveMilestone(ctx, milestone)
	return err == nil
}

// DeleteMilestone removes a milestone, optionally deleting its member issues.
func (s *Service) DeleteMilestone(ctx context.Context, id int64, cascade bool) bool {
	deleted, err := s.repo.DeleteMilestone(ctx, id, cascade)
	return err == nil && deleted
}

// ListAllMilestones returns milestones ordered by start date, then id.
func (s *Service) ListAllMilestones(ctx context.Context) ([]*types.Milestone, error) {
	return s.repo.ListMilestones(ctx)
}

// AddIssueToMilestone links an existing issue into an existing milestone.
func (s *Service) AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) bool {
	added, err := s.repo.AddIssueToMilestone(ctx, milestoneID, issueID)
	return err == nil && added
}

// RemoveIssueFromMilestone unlinks an issue.
func (s *Service) RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) bool {
	removed, err := s.repo.RemoveIssueFromMilestone(ctx, milestoneID, issueID)
	return err == nil && removed
}

// GetIssuesForMilestone returns the milestone's member issues hydrated.
func (s *Service) GetIssuesForMilestone(ctx context.Context, milestoneID int64) ([]*types.HydratedIssue, error) {
	return s.repo.GetIssuesForMilestone(ctx, milestoneID)
}
