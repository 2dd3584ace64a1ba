package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avigan/tracker/internal/service"
	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/storage/memory"
	"github.com/avigan/tracker/internal/storage/sqlite"
	"github.com/avigan/tracker/internal/types"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	return service.New(memory.New())
}

func seedUsers(t *testing.T, svc *service.Service, users map[string]string) {
	t.Helper()
	for name, role := range users {
		_, err := svc.CreateUser(context.Background(), name, role)
		require.NoError(t, err)
	}
}

// Create an issue with a description, assign it, and walk it to Done.
func TestCreateDescribeAssignDone(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer", "bob": "Reporter"})

	issue, err := svc.CreateIssue(ctx, "Crash on save", "Repro: open, save, crash", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), issue.ID)
	assert.Equal(t, "Crash on save", issue.Title)
	assert.Equal(t, "bob", issue.AuthorID)
	assert.Equal(t, types.StatusToDo, issue.Status)
	assert.Equal(t, []int64{1}, issue.CommentIDs)
	assert.Equal(t, int64(1), issue.DescriptionCommentID)

	comment, err := svc.GetComment(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Repro: open, save, crash", comment.Text)

	require.True(t, svc.AssignUserToIssue(ctx, 1, "alice"))
	got, err := svc.GetIssue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AssignedTo)

	require.True(t, svc.UpdateIssueField(ctx, 1, "status", "Done"))
	got, err = svc.GetIssue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDone, got.Status)
}

// Deleting an issue takes its comments with it.
func TestDeleteIssueCascades(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer", "bob": "Reporter"})

	_, err := svc.CreateIssue(ctx, "Crash on save", "Repro: open, save, crash", "bob")
	require.NoError(t, err)

	comment, err := svc.AddCommentToIssue(ctx, 1, "Hi", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), comment.ID)

	require.True(t, svc.DeleteIssue(ctx, 1))
	_, err = svc.GetIssue(ctx, 1)
	assert.Error(t, err)
	_, err = svc.GetComment(ctx, 1, 2)
	assert.Error(t, err)
}

// A description update edits the existing comment in place rather than
// allocating a new one.
func TestDescriptionUpdateReusesComment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"bob": "Reporter"})

	_, err := svc.CreateIssue(ctx, "Crash on save", "Repro: open, save, crash", "bob")
	require.NoError(t, err)

	require.True(t, svc.UpdateIssueField(ctx, 1, "description", "New repro"))

	issue, err := svc.GetIssue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), issue.DescriptionCommentID)
	comment, err := svc.GetComment(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "New repro", comment.Text)
}

// A description update on an issue created without one allocates and links
// a comment authored by the issue's author.
func TestDescriptionUpdateCreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"bob": "Reporter"})

	issue, err := svc.CreateIssue(ctx, "Bare", "", "bob")
	require.NoError(t, err)
	assert.False(t, issue.HasDescription())

	require.True(t, svc.UpdateIssueField(ctx, issue.ID, "description", "added later"))

	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.True(t, got.HasDescription())
	assert.Equal(t, "added later", got.Description())
	desc := got.FindComment(got.DescriptionCommentID)
	require.NotNil(t, desc)
	assert.Equal(t, "bob", desc.Author)
}

// Renaming a user rewrites every reference before dropping the old row.
func TestRenamePropagates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"carol": "Dev"})

	_, err := svc.CreateIssue(ctx, "X", "d", "carol")
	require.NoError(t, err)

	require.True(t, svc.UpdateUser(ctx, "carol", "name", "carole"))

	_, err = svc.GetUser(ctx, "carol")
	assert.Error(t, err)
	_, err = svc.GetUser(ctx, "carole")
	assert.NoError(t, err)

	issue, err := svc.GetIssue(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "carole", issue.AuthorID)
	// The description comment's author is rewritten too.
	desc := issue.FindComment(issue.DescriptionCommentID)
	require.NotNil(t, desc)
	assert.Equal(t, "carole", desc.Author)
}

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "issues.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// The rename cascade over the relational backend runs inside a transaction
// and rewrites issue, assignee and comment references like the in-memory one.
func TestRenamePropagatesSQLite(t *testing.T) {
	ctx := context.Background()
	svc := service.New(newSQLiteStore(t))
	seedUsers(t, svc, map[string]string{"carol": "Dev", "erin": "Dev"})

	issue, err := svc.CreateIssue(ctx, "X", "d", "carol")
	require.NoError(t, err)
	require.True(t, svc.AssignUserToIssue(ctx, issue.ID, "carol"))
	_, err = svc.AddCommentToIssue(ctx, issue.ID, "looking", "erin")
	require.NoError(t, err)

	require.True(t, svc.UpdateUser(ctx, "carol", "name", "carole"))

	_, err = svc.GetUser(ctx, "carol")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.GetUser(ctx, "carole")
	assert.NoError(t, err)

	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "carole", got.AuthorID)
	assert.Equal(t, "carole", got.AssignedTo)
	desc := got.FindComment(got.DescriptionCommentID)
	require.NotNil(t, desc)
	assert.Equal(t, "carole", desc.Author)
	// Comments by other authors are untouched.
	other := got.FindComment(2)
	require.NotNil(t, other)
	assert.Equal(t, "erin", other.Author)
}

// brokenDeleteRepo fails every DeleteUser, forcing the rename cascade to
// error out after it has already rewritten references.
type brokenDeleteRepo struct {
	storage.Repository
}

func (brokenDeleteRepo) DeleteUser(context.Context, string) (bool, error) {
	return false, errors.New("delete user: disk I/O error")
}

// brokenDeleteStore exposes the sqlite transaction but hands the cascade a
// repository whose final DeleteUser fails.
type brokenDeleteStore struct {
	*sqlite.Store
}

func (b brokenDeleteStore) InTransaction(ctx context.Context, fn func(storage.Repository) error) error {
	return b.Store.InTransaction(ctx, func(r storage.Repository) error {
		return fn(brokenDeleteRepo{r})
	})
}

// A cascade that fails partway through must leave no trace: the transaction
// rolls back the already-rewritten references.
func TestRenameRollsBackOnFailureSQLite(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	svc := service.New(brokenDeleteStore{store})
	seedUsers(t, svc, map[string]string{"carol": "Dev"})

	issue, err := svc.CreateIssue(ctx, "X", "d", "carol")
	require.NoError(t, err)

	assert.False(t, svc.UpdateUser(ctx, "carol", "name", "carole"))

	_, err = store.GetUser(ctx, "carol")
	assert.NoError(t, err, "failed rename must leave the old user in place")
	_, err = store.GetUser(ctx, "carole")
	assert.ErrorIs(t, err, storage.ErrNotFound, "failed rename must not leave the new user behind")

	got, err := store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.AuthorID)
	desc := got.FindComment(got.DescriptionCommentID)
	require.NotNil(t, desc)
	assert.Equal(t, "carol", desc.Author)
}

func TestRenameToTakenNameFails(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"carol": "Dev", "dave": "Dev"})

	assert.False(t, svc.UpdateUser(ctx, "carol", "name", "dave"))
	_, err := svc.GetUser(ctx, "carol")
	assert.NoError(t, err, "failed rename must leave the old user in place")
}

// Milestone deletion: without cascade the member issue survives, with
// cascade it does not.
func TestMilestoneNonCascadeVsCascade(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer"})

	milestone, err := svc.CreateMilestone(ctx, "M1", "", "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), milestone.ID)
	issue, err := svc.CreateIssue(ctx, "A", "", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), issue.ID)
	require.True(t, svc.AddIssueToMilestone(ctx, milestone.ID, issue.ID))

	require.True(t, svc.DeleteMilestone(ctx, milestone.ID, false))
	_, err = svc.GetIssue(ctx, issue.ID)
	assert.NoError(t, err)

	milestone, err = svc.CreateMilestone(ctx, "M1", "", "2024-01-01", "2024-02-01")
	require.NoError(t, err)
	require.True(t, svc.AddIssueToMilestone(ctx, milestone.ID, issue.ID))
	require.True(t, svc.DeleteMilestone(ctx, milestone.ID, true))
	_, err = svc.GetIssue(ctx, issue.ID)
	assert.Error(t, err)
}

// The numeric aliases 1/2/3 are accepted only on the status field.
func TestNumericStatusAlias(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer"})

	issue, err := svc.CreateIssue(ctx, "t", "", "alice")
	require.NoError(t, err)

	require.True(t, svc.UpdateIssueField(ctx, issue.ID, "status", "2"))
	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, got.Status)

	assert.False(t, svc.UpdateIssueField(ctx, issue.ID, "status", "4"))
	assert.False(t, svc.UpdateIssueField(ctx, issue.ID, "status", "Nope"))
}

func TestUpdateIssueFieldRejections(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer"})

	issue, err := svc.CreateIssue(ctx, "t", "", "alice")
	require.NoError(t, err)

	assert.False(t, svc.UpdateIssueField(ctx, issue.ID, "priority", "high"), "unknown field")
	assert.False(t, svc.UpdateIssueField(ctx, issue.ID, "title", ""), "empty title")
	assert.False(t, svc.UpdateIssueField(ctx, 999, "title", "x"), "missing issue")
	assert.False(t, svc.UpdateIssueField(ctx, issue.ID, "assignedTo", "nobody"), "unknown assignee")

	// assignedTo with the empty value is the unassign path.
	require.True(t, svc.UpdateIssueField(ctx, issue.ID, "assignedTo", "alice"))
	require.True(t, svc.UpdateIssueField(ctx, issue.ID, "assignedTo", ""))
	got, err := svc.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.False(t, got.HasAssignee())
}

func TestCreateIssueRequiresKnownAuthor(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.CreateIssue(ctx, "t", "", "ghost")
	require.ErrorIs(t, err, types.ErrValidation)

	_, err = svc.AddCommentToIssue(ctx, 1, "text", "ghost")
	require.ErrorIs(t, err, types.ErrValidation)
}

func TestFindLookups(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer", "bob": "Reporter"})

	a, err := svc.CreateIssue(ctx, "one", "", "alice")
	require.NoError(t, err)
	b, err := svc.CreateIssue(ctx, "two", "", "bob")
	require.NoError(t, err)
	require.True(t, svc.AssignUserToIssue(ctx, a.ID, "bob"))
	require.True(t, svc.UpdateIssueField(ctx, b.ID, "status", "In Progress"))
	require.True(t, svc.AddTagToIssue(ctx, a.ID, types.Tag{Name: "bug", Color: "red"}))
	require.True(t, svc.AddTagToIssue(ctx, a.ID, types.Tag{Name: "ui"}))
	require.True(t, svc.AddTagToIssue(ctx, b.ID, types.Tag{Name: "bug"}))

	byUser, err := svc.FindIssuesByUser(ctx, "ALICE")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, a.ID, byUser[0].ID)

	unassigned, err := svc.ListUnassignedIssues(ctx)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, b.ID, unassigned[0].ID)

	byStatus, err := svc.FindIssuesByStatus(ctx, types.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, b.ID, byStatus[0].ID)

	byTag, err := svc.FindIssuesByTag(ctx, "bug")
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	byTags, err := svc.FindIssuesByTags(ctx, []string{"bug", "ui"})
	require.NoError(t, err)
	require.Len(t, byTags, 1)
	assert.Equal(t, a.ID, byTags[0].ID)
}

func TestUpdateMilestoneSparse(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	milestone, err := svc.CreateMilestone(ctx, "M1", "", "2024-01-01", "2024-02-01")
	require.NoError(t, err)

	assert.False(t, svc.UpdateMilestone(ctx, milestone.ID, service.MilestoneUpdate{}), "empty update")

	name := "M1 revised"
	desc := "stretch goals"
	require.True(t, svc.UpdateMilestone(ctx, milestone.ID, service.MilestoneUpdate{Name: &name, Description: &desc}))

	got, err := svc.GetMilestone(ctx, milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, "M1 revised", got.Name)
	assert.Equal(t, "stretch goals", got.Description)
	assert.Equal(t, "2024-01-01", got.StartDate, "untouched field survives")

	empty := ""
	assert.False(t, svc.UpdateMilestone(ctx, milestone.ID, service.MilestoneUpdate{Name: &empty}), "empty name rejected")
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	seedUsers(t, svc, map[string]string{"alice": "Developer"})

	issue, err := svc.CreateIssue(ctx, "t", "", "alice")
	require.NoError(t, err)
	comment, err := svc.AddCommentToIssue(ctx, issue.ID, "draft", "alice")
	require.NoError(t, err)

	require.True(t, svc.UpdateComment(ctx, issue.ID, comment.ID, "final"))
	got, err := svc.GetComment(ctx, issue.ID, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)

	assert.False(t, svc.UpdateComment(ctx, issue.ID, comment.ID, ""), "empty text")
	assert.False(t, svc.UpdateComment(ctx, issue.ID, 99, "x"), "missing comment")

	require.True(t, svc.DeleteComment(ctx, issue.ID, comment.ID))
	assert.False(t, svc.DeleteComment(ctx, issue.ID, comment.ID))
}
