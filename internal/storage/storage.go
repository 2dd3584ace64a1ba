// Package storage defines the interface for issue tracker storage backends.
package storage

import (
	"context"
	"strings"

	"github.com/avigan/tracker/internal/types"
)

// Repository is the single contract through which all persistence flows.
// Two backends implement it with identical semantics: the relational SQLite
// store and the pure in-memory store.
//
// Returned entities are snapshots owned by the caller; the only legal
// mutation path is passing a modified snapshot back through a save method.
// Issues come back hydrated: scalar fields, the ascending comment id set, the
// tag set, and snapshots of all comments ordered by id.
type Repository interface {
	// Issue operations.
	//
	// SaveIssue with a zero id assigns a fresh positive id and persists all
	// scalar fields and tags. With a positive id it replaces the scalar
	// fields and the tag set of an existing row, failing with ErrNotFound
	// when the row does not exist; the comment set is never touched (comments
	// are managed by their own operations).
	SaveIssue(ctx context.Context, issue *types.Issue) (*types.HydratedIssue, error)
	GetIssue(ctx context.Context, id int64) (*types.HydratedIssue, error)
	// DeleteIssue cascades: comments, tag rows and milestone memberships of
	// the issue are removed atomically. Reports whether a row was removed.
	DeleteIssue(ctx context.Context, id int64) (bool, error)
	// ListIssues returns all issues hydrated, ordered by ascending id.
	ListIssues(ctx context.Context) ([]*types.HydratedIssue, error)
	// FindIssues filters the full hydrated list through the predicate,
	// preserving the ascending id order.
	FindIssues(ctx context.Context, keep func(*types.HydratedIssue) bool) ([]*types.HydratedIssue, error)

	// Comment operations, always scoped by issue. Comment ids are allocated
	// per issue: max existing id plus one, starting at 1.
	SaveComment(ctx context.Context, issueID int64, comment *types.Comment) (*types.Comment, error)
	GetComment(ctx context.Context, issueID, commentID int64) (*types.Comment, error)
	// GetAllComments returns the issue's comments ordered by ascending id.
	GetAllComments(ctx context.Context, issueID int64) ([]*types.Comment, error)
	// DeleteComment clears the issue's description link first when it points
	// at the deleted comment. Reports whether a row was removed.
	DeleteComment(ctx context.Context, issueID, commentID int64) (bool, error)

	// User operations. SaveUser upserts by name. DeleteUser is a raw removal
	// with no cascade; the rename cascade lives in the service layer.
	SaveUser(ctx context.Context, user *types.User) (*types.User, error)
	GetUser(ctx context.Context, name string) (*types.User, error)
	DeleteUser(ctx context.Context, name string) (bool, error)
	// ListUsers returns all users ordered by name.
	ListUsers(ctx context.Context) ([]*types.User, error)

	// Tag operations. Both persist the modified tag set immediately.
	// AddTag reports whether the set changed.
	AddTag(ctx context.Context, issueID int64, tag types.Tag) (bool, error)
	RemoveTag(ctx context.Context, issueID int64, tagName string) (bool, error)

	// Milestone operations. Membership adds are idempotent. Delete with
	// cascade additionally deletes every member issue in the same atomic
	// scope.
	SaveMilestone(ctx context.Context, milestone *types.Milestone) (*types.Milestone, error)
	GetMilestone(ctx context.Context, id int64) (*types.Milestone, error)
	DeleteMilestone(ctx context.Context, id int64, cascade bool) (bool, error)
	// ListMilestones returns all milestones ordered by start date, then id.
	ListMilestones(ctx context.Context) ([]*types.Milestone, error)
	AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error)
	RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error)
	GetIssuesForMilestone(ctx context.Context, milestoneID int64) ([]*types.HydratedIssue, error)

	Close() error
}

// Transactional is implemented by backends that can run a sequence of
// repository operations atomically. Not all backends support it; use
// AsTransactional to check before relying on it.
type Transactional interface {
	// InTransaction runs fn against a Repository bound to a single
	// transaction. When fn returns nil the transaction commits; any error or
	// panic rolls it back.
	InTransaction(ctx context.Context, fn func(Repository) error) error
}

// AsTransactional attempts to cast a Repository to Transactional.
func AsTransactional(r Repository) (Transactional, bool) {
	t, ok := r.(Transactional)
	return t, ok
}

// FindIssuesByAssignee is the default assignee lookup, expressed through the
// FindIssues predicate: issues whose assignee matches the name exactly.
func FindIssuesByAssignee(ctx context.Context, r Repository, name string) ([]*types.HydratedIssue, error) {
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		return issue.HasAssignee() && issue.AssignedTo == name
	})
}

// ListUnassigned is the default unassigned lookup, expressed through the
// FindIssues predicate.
func ListUnassigned(ctx context.Context, r Repository) ([]*types.HydratedIssue, error) {
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		return !issue.HasAssignee()
	})
}

// FindIssuesByAuthor matches the author id case-insensitively. This backs the
// "issues by user" lookup of the interactive surface.
func FindIssuesByAuthor(ctx context.Context, r Repository, name string) ([]*types.HydratedIssue, error) {
	target := strings.ToLower(name)
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		return strings.ToLower(issue.AuthorID) == target
	})
}

// FindIssuesByStatus matches the status exactly.
func FindIssuesByStatus(ctx context.Context, r Repository, status types.Status) ([]*types.HydratedIssue, error) {
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		return issue.Status == status
	})
}

// FindIssuesByTag matches issues carrying the named tag.
func FindIssuesByTag(ctx context.Context, r Repository, tagName string) ([]*types.HydratedIssue, error) {
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		return issue.HasTag(tagName)
	})
}

// FindIssuesByTags matches issues carrying every one of the named tags.
func FindIssuesByTags(ctx context.Context, r Repository, tagNames []string) ([]*types.HydratedIssue, error) {
	return r.FindIssues(ctx, func(issue *types.HydratedIssue) bool {
		for _, name := range tagNames {
			if !issue.HasTag(name) {
				return false
			}
		}
		return true
	})
}
