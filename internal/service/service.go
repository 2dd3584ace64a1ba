// Package service is the domain layer: coarse-grained operations over a
// repository, shared by every frontend.
//
// Error discipline follows two tiers. "Hard" operations (creating entities)
// return discriminated errors the caller can inspect with errors.Is. "Soft"
// operations (updates, deletes, assignments, links) return a plain boolean
// and swallow the cause: false covers not-found, validation failure and
// backend failure alike. The service never logs; logging belongs to the
// frontend.
package service

import (
	"context"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// Service exposes the tracker's domain operations. It is stateless apart
// from the repository reference and safe for concurrent use whenever the
// underlying repository is.
type Service struct {
	repo storage.Repository
}

// New wraps a repository.
func New(repo storage.Repository) *Service {
	return &Service{repo: repo}
}

// CreateIssue persists a new issue authored by an existing user. A non-empty
// description becomes the issue's first comment, linked as the description.
// The two saves are not jointly atomic: on a failure in between, the issue
// legally exists without a description link.
func (s *Service) CreateIssue(ctx context.Context, title, description, authorID string) (*types.HydratedIssue, error) {
	if authorID == "" {
		return nil, types.Validationf("issue author must not be empty")
	}
	if _, err := s.repo.GetUser(ctx, authorID); err != nil {
		return nil, types.Validationf("unknown user %q", authorID)
	}
	issue, err := types.NewIssue(authorID, title, 0)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveIssue(ctx, issue)
	if err != nil {
		return nil, err
	}
	if description == "" {
		return saved, nil
	}

	comment, err := types.NewComment(authorID, description, 0)
	if err != nil {
		return nil, err
	}
	persisted, err := s.repo.SaveComment(ctx, saved.ID, comment)
	if err != nil {
		return nil, err
	}
	row := saved.Issue.Clone()
	if err := row.SetDescriptionCommentID(persisted.ID); err != nil {
		return nil, err
	}
	return s.repo.SaveIssue(ctx, row)
}

// GetIssue returns a hydrated issue.
func (s *Service) GetIssue(ctx context.Context, id int64) (*types.HydratedIssue, error) {
	return s.repo.GetIssue(ctx, id)
}

// UpdateIssueField applies one named edit to an issue. Recognized fields:
//
//	title       non-empty replacement
//	description edits the description comment in place, creating and
//	            linking one (authored by the issue's author) when absent
//	status      literal status text, or the numeric aliases 1/2/3
//	assignedTo  existing user name, or the empty string to unassign
//
// Unknown fields, missing rows and invariant violations all report false.
func (s *Service) UpdateIssueField(ctx context.Context, id int64, field, value string) bool {
	issue, err := s.repo.GetIssue(ctx, id)
	if err != nil {
		return false
	}

	switch field {
	case "title":
		row := issue.Issue.Clone()
		if err := row.SetTitle(value); err != nil {
			return false
		}
		_, err = s.repo.SaveIssue(ctx, row)
		return err == nil

	case "description":
		return s.updateDescription(ctx, issue, value)

	case "status":
		status, err := types.ParseStatus(value)
		if err != nil {
			return false
		}
		row := issue.Issue.Clone()
		if err := row.SetStatus(status); err != nil {
			return false
		}
		_, err = s.repo.SaveIssue(ctx, row)
		return err == nil

	case "assignedTo":
		if value == "" {
			return s.UnassignUserFromIssue(ctx, id)
		}
		return s.AssignUserToIssue(ctx, id, value)

	default:
		return false
	}
}

func (s *Service) updateDescription(ctx context.Context, issue *types.HydratedIssue, text string) bool {
	if issue.HasDescription() {
		existing := issue.FindComment(issue.DescriptionCommentID)
		if existing == nil {
			return false
		}
		edited := existing.Clone()
		if err := edited.SetText(text); err != nil {
			return false
		}
		_, err := s.repo.SaveComment(ctx, issue.ID, edited)
		return err == nil
	}

	comment, err := types.NewComment(issue.AuthorID, text, 0)
	if err != nil {
		return false
	}
	persisted, err := s.repo.SaveComment(ctx, issue.ID, comment)
	if err != nil {
		return false
	}
	row := issue.Issue.Clone()
	if err := row.SetDescriptionCommentID(persisted.ID); err != nil {
		return false
	}
	_, err = s.repo.SaveIssue(ctx, row)
	return err == nil
}

// DeleteIssue removes an issue and everything hanging off it.
func (s *Service) DeleteIssue(ctx context.Context, id int64) bool {
	deleted, err := s.repo.DeleteIssue(ctx, id)
	return err == nil && deleted
}

// AssignUserToIssue sets the assignee after verifying the user exists.
func (s *Service) AssignUserToIssue(ctx context.Context, issueID int64, userName string) bool {
	if _, err := s.repo.GetUser(ctx, userName); err != nil {
		return false
	}
	issue, err := s.repo.GetIssue(ctx, issueID)
	if err != nil {
		return false
	}
	row := issue.Issue.Clone()
	if err := row.AssignTo(userName); err != nil {
		return false
	}
	_, err = s.repo.SaveIssue(ctx, row)
	return err == nil
}

// UnassignUserFromIssue clears the assignee.
func (s *Service) UnassignUserFromIssue(ctx context.Context, issueID int64) bool {
	issue, err := s.repo.GetIssue(ctx, issueID)
	if err != nil {
		return false
	}
	row := issue.Issue.Clone()
	row.Unassign()
	_, err = s.repo.SaveIssue(ctx, row)
	return err == nil
}

// AddCommentToIssue persists a comment by an existing user on an existing
// issue and returns it with its allocated id.
func (s *Service) AddCommentToIssue(ctx context.Context, issueID int64, text, authorID string) (*types.Comment, error) {
	if _, err := s.repo.GetUser(ctx, authorID); err != nil {
		return nil, types.Validationf("unknown user %q", authorID)
	}
	comment, err := types.NewComment(authorID, text, 0)
	if err != nil {
		return nil, err
	}
	return s.repo.SaveComment(ctx, issueID, comment)
}

// UpdateComment replaces a comment's text.
func (s *Service) UpdateComment(ctx context.Context, issueID, commentID int64, newText string) bool {
	comment, err := s.repo.GetComment(ctx, issueID, commentID)
	if err != nil {
		return false
	}
	edited := comment.Clone()
	if err := edited.SetText(newText); err != nil {
		return false
	}
	_, err = s.repo.SaveComment(ctx, issueID, edited)
	return err == nil
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(ctx context.Context, issueID, commentID int64) bool {
	deleted, err := s.repo.DeleteComment(ctx, issueID, commentID)
	return err == nil && deleted
}

// GetComment returns one comment.
func (s *Service) GetComment(ctx context.Context, issueID, commentID int64) (*types.Comment, error) {
	return s.repo.GetComment(ctx, issueID, commentID)
}

// GetAllComments returns an issue's comments ordered by id.
func (s *Service) GetAllComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	return s.repo.GetAllComments(ctx, issueID)
}

// ListAllIssues returns every issue ordered by id.
func (s *Service) ListAllIssues(ctx context.Context) ([]*types.HydratedIssue, error) {
	return s.repo.ListIssues(ctx)
}

// ListUnassignedIssues returns issues with no assignee.
func (s *Service) ListUnassignedIssues(ctx context.Context) ([]*types.HydratedIssue, error) {
	return storage.ListUnassigned(ctx, s.repo)
}

// FindIssuesByUser matches the author name case-insensitively.
func (s *Service) FindIssuesByUser(ctx context.Context, name string) ([]*types.HydratedIssue, error) {
	return storage.FindIssuesByAuthor(ctx, s.repo, name)
}

// FindIssuesByStatus matches the status exactly; aliases are not accepted
// here.
func (s *Service) FindIssuesByStatus(ctx context.Context, status types.Status) ([]*types.HydratedIssue, error) {
	return storage.FindIssuesByStatus(ctx, s.repo, status)
}

// FindIssuesByTag returns issues carrying the named tag.
func (s *Service) FindIssuesByTag(ctx context.Context, tag string) ([]*types.HydratedIssue, error) {
	return storage.FindIssuesByTag(ctx, s.repo, tag)
}

// FindIssuesByTags returns issues carrying every one of the named tags.
func (s *Service) FindIssuesByTags(ctx context.Context, tags []string) ([]*types.HydratedIssue, error) {
	return storage.FindIssuesByTags(ctx, s.repo, tags)
}

// AddTagToIssue attaches a tag, reporting false on any failure.
func (s *Service) AddTagToIssue(ctx context.Context, issueID int64, tag types.Tag) bool {
	added, err := s.repo.AddTag(ctx, issueID, tag)
	return err == nil && added
}

// RemoveTagFromIssue detaches a tag by name.
func (s *Service) RemoveTagFromIssue(ctx context.Context, issueID int64, tagName string) bool {
	removed, err := s.repo.RemoveTag(ctx, issueID, tagName)
	return err == nil && removed
}
