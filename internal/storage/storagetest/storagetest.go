// Package storagetest exercises the Repository contract. Both backends run
// the same suite so their semantics cannot drift apart.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/types"
)

// Factory opens a fresh, empty repository for one subtest. Cleanup is the
// implementation's business (use t.Cleanup).
type Factory func(t *testing.T) storage.Repository

// Run drives the full contract suite against the backend under test.
func Run(t *testing.T, open Factory) {
	t.Run("IssueLifecycle", func(t *testing.T) { testIssueLifecycle(t, open(t)) })
	t.Run("IssueUpdateScalars", func(t *testing.T) { testIssueUpdateScalars(t, open(t)) })
	t.Run("IssueUnknownID", func(t *testing.T) { testIssueUnknownID(t, open(t)) })
	t.Run("CommentAllocation", func(t *testing.T) { testCommentAllocation(t, open(t)) })
	t.Run("CommentContainment", func(t *testing.T) { testCommentContainment(t, open(t)) })
	t.Run("CommentUpdateAndDelete", func(t *testing.T) { testCommentUpdateAndDelete(t, open(t)) })
	t.Run("DescriptionLink", func(t *testing.T) { testDescriptionLink(t, open(t)) })
	t.Run("CascadeOnIssueDelete", func(t *testing.T) { testCascadeOnIssueDelete(t, open(t)) })
	t.Run("Ordering", func(t *testing.T) { testOrdering(t, open(t)) })
	t.Run("TagIdempotence", func(t *testing.T) { testTagIdempotence(t, open(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("MilestoneLifecycle", func(t *testing.T) { testMilestoneLifecycle(t, open(t)) })
	t.Run("MilestoneMembership", func(t *testing.T) { testMilestoneMembership(t, open(t)) })
	t.Run("MilestoneCascade", func(t *testing.T) { testMilestoneCascade(t, open(t)) })
	t.Run("ValidationRejections", func(t *testing.T) { testValidationRejections(t, open(t)) })
}

func mustIssue(t *testing.T, title, author string) *types.Issue {
	t.Helper()
	issue, err := types.NewIssue(author, title, 0)
	if err != nil {
		t.Fatalf("NewIssue(%q, %q): %v", author, title, err)
	}
	return issue
}

func mustComment(t *testing.T, author, text string) *types.Comment {
	t.Helper()
	comment, err := types.NewComment(author, text, 0)
	if err != nil {
		t.Fatalf("NewComment(%q, %q): %v", author, text, err)
	}
	return comment
}

func mustMilestone(t *testing.T, name, start, end string) *types.Milestone {
	t.Helper()
	milestone, err := types.NewMilestone(name, "", start, end)
	if err != nil {
		t.Fatalf("NewMilestone(%q): %v", name, err)
	}
	return milestone
}

func saveIssue(t *testing.T, r storage.Repository, issue *types.Issue) *types.HydratedIssue {
	t.Helper()
	saved, err := r.SaveIssue(context.Background(), issue)
	if err != nil {
		t.Fatalf("SaveIssue: %v", err)
	}
	return saved
}

func saveComment(t *testing.T, r storage.Repository, issueID int64, c *types.Comment) *types.Comment {
	t.Helper()
	saved, err := r.SaveComment(context.Background(), issueID, c)
	if err != nil {
		t.Fatalf("SaveComment(issue %d): %v", issueID, err)
	}
	return saved
}

func testIssueLifecycle(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	fresh := mustIssue(t, "Crash on save", "bob")
	saved := saveIssue(t, r, fresh)
	if saved.ID <= 0 {
		t.Fatalf("saved issue id = %d, want positive", saved.ID)
	}
	if fresh.ID != 0 {
		t.Fatalf("input issue mutated: id = %d", fresh.ID)
	}
	if saved.CreatedAt == 0 {
		t.Fatalf("created_at not filled on first insert")
	}
	if saved.Status != types.StatusToDo {
		t.Fatalf("status = %q, want %q", saved.Status, types.StatusToDo)
	}

	got, err := r.GetIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetIssue(%d): %v", saved.ID, err)
	}
	if got.Title != saved.Title || got.AuthorID != saved.AuthorID ||
		got.Status != saved.Status || got.CreatedAt != saved.CreatedAt {
		t.Fatalf("round trip mismatch: got %+v, saved %+v", got.Issue, saved.Issue)
	}

	deleted, err := r.DeleteIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteIssue reported false for existing issue")
	}
	if _, err := r.GetIssue(ctx, saved.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetIssue after delete: err = %v, want ErrNotFound", err)
	}
	deleted, err = r.DeleteIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("DeleteIssue (second): %v", err)
	}
	if deleted {
		t.Fatalf("DeleteIssue reported true for missing issue")
	}
}

func testIssueUpdateScalars(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	saved := saveIssue(t, r, mustIssue(t, "X", "alice"))
	c := saveComment(t, r, saved.ID, mustComment(t, "alice", "first"))

	row := saved.Issue.Clone()
	if err := row.SetTitle("Y"); err != nil {
		t.Fatal(err)
	}
	if err := row.AssignTo("bob"); err != nil {
		t.Fatal(err)
	}
	if err := row.SetStatus(types.StatusInProgress); err != nil {
		t.Fatal(err)
	}
	if _, err := row.AddTag(types.Tag{Name: "urgent", Color: "red"}); err != nil {
		t.Fatal(err)
	}
	updated, err := r.SaveIssue(ctx, row)
	if err != nil {
		t.Fatalf("SaveIssue (update): %v", err)
	}

	if updated.Title != "Y" || updated.AssignedTo != "bob" || updated.Status != types.StatusInProgress {
		t.Fatalf("update not applied: %+v", updated.Issue)
	}
	if !updated.HasTag("urgent") {
		t.Fatalf("tag not persisted on update")
	}
	// Comments survive scalar updates untouched.
	if len(updated.CommentIDs) != 1 || updated.CommentIDs[0] != c.ID {
		t.Fatalf("comment ids after update = %v, want [%d]", updated.CommentIDs, c.ID)
	}

	// Unassign persists as NULL/absent and round-trips to the empty string.
	row = updated.Issue.Clone()
	row.Unassign()
	updated, err = r.SaveIssue(ctx, row)
	if err != nil {
		t.Fatalf("SaveIssue (unassign): %v", err)
	}
	if updated.HasAssignee() {
		t.Fatalf("assignee = %q after unassign", updated.AssignedTo)
	}
}

func testIssueUnknownID(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	ghost := mustIssue(t, "ghost", "alice")
	if err := ghost.AssignID(42); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveIssue(ctx, ghost); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("SaveIssue with unassigned id 42: err = %v, want ErrNotFound", err)
	}
	if _, err := r.GetIssue(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetIssue(42): err = %v, want ErrNotFound", err)
	}
}

func testCommentAllocation(t *testing.T, r storage.Repository) {
	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	other := saveIssue(t, r, mustIssue(t, "B", "alice"))

	first := saveComment(t, r, issue.ID, mustComment(t, "alice", "one"))
	if first.ID != 1 {
		t.Fatalf("first comment id = %d, want 1", first.ID)
	}
	if first.Timestamp == 0 {
		t.Fatalf("timestamp not filled on first insert")
	}
	second := saveComment(t, r, issue.ID, mustComment(t, "alice", "two"))
	if second.ID != 2 {
		t.Fatalf("second comment id = %d, want 2", second.ID)
	}

	// Ids are scoped per issue, not store-wide.
	otherFirst := saveComment(t, r, other.ID, mustComment(t, "alice", "elsewhere"))
	if otherFirst.ID != 1 {
		t.Fatalf("first comment on second issue id = %d, want 1", otherFirst.ID)
	}
}

func testCommentContainment(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	c := saveComment(t, r, issue.ID, mustComment(t, "alice", "body"))

	got, err := r.GetComment(ctx, issue.ID, c.ID)
	if err != nil {
		t.Fatalf("GetComment: %v", err)
	}
	if got.Text != "body" || got.Author != "alice" {
		t.Fatalf("comment round trip mismatch: %+v", got)
	}

	hydrated, err := r.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	found := false
	for _, id := range hydrated.CommentIDs {
		if id == c.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("comment %d not in issue's id set %v", c.ID, hydrated.CommentIDs)
	}
	if hydrated.FindComment(c.ID) == nil {
		t.Fatalf("comment %d not hydrated", c.ID)
	}

	if _, err := r.SaveComment(ctx, 999, mustComment(t, "alice", "orphan")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("SaveComment on missing issue: err = %v, want ErrNotFound", err)
	}
}

func testCommentUpdateAndDelete(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	c := saveComment(t, r, issue.ID, mustComment(t, "alice", "draft"))

	edited := c.Clone()
	if err := edited.SetText("final"); err != nil {
		t.Fatal(err)
	}
	if err := edited.SetAuthor("bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveComment(ctx, issue.ID, edited); err != nil {
		t.Fatalf("SaveComment (update): %v", err)
	}
	got, err := r.GetComment(ctx, issue.ID, c.ID)
	if err != nil {
		t.Fatalf("GetComment: %v", err)
	}
	if got.Text != "final" || got.Author != "bob" {
		t.Fatalf("comment update not applied: %+v", got)
	}

	missing := c.Clone()
	if err := missing.SetText("?"); err != nil {
		t.Fatal(err)
	}
	missing.ID = 99
	if _, err := r.SaveComment(ctx, issue.ID, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("SaveComment with unknown id: err = %v, want ErrNotFound", err)
	}

	deleted, err := r.DeleteComment(ctx, issue.ID, c.ID)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteComment reported false for existing comment")
	}
	if _, err := r.GetComment(ctx, issue.ID, c.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetComment after delete: err = %v, want ErrNotFound", err)
	}
}

func testDescriptionLink(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	desc := saveComment(t, r, issue.ID, mustComment(t, "alice", "long form"))

	row := issue.Issue.Clone()
	if err := row.SetDescriptionCommentID(desc.ID); err != nil {
		t.Fatal(err)
	}
	updated, err := r.SaveIssue(ctx, row)
	if err != nil {
		t.Fatalf("SaveIssue (link description): %v", err)
	}
	if updated.DescriptionCommentID != desc.ID {
		t.Fatalf("description_comment_id = %d, want %d", updated.DescriptionCommentID, desc.ID)
	}
	if updated.Description() != "long form" {
		t.Fatalf("Description() = %q, want %q", updated.Description(), "long form")
	}
	// The invariant: the link always resolves through the comment id set.
	if updated.FindComment(updated.DescriptionCommentID) == nil {
		t.Fatalf("description comment %d not in hydrated set", updated.DescriptionCommentID)
	}

	// Deleting the description comment clears the link.
	if _, err := r.DeleteComment(ctx, issue.ID, desc.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	got, err := r.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if got.HasDescription() {
		t.Fatalf("description link survived comment deletion: %d", got.DescriptionCommentID)
	}
}

func testCascadeOnIssueDelete(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	c := saveComment(t, r, issue.ID, mustComment(t, "alice", "gone soon"))
	if _, err := r.AddTag(ctx, issue.ID, types.Tag{Name: "bug"}); err != nil {
		t.Fatalf("AddTag: %v", err)
	}

	milestone, err := r.SaveMilestone(ctx, mustMilestone(t, "M1", "2024-01-01", "2024-02-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	if _, err := r.AddIssueToMilestone(ctx, milestone.ID, issue.ID); err != nil {
		t.Fatalf("AddIssueToMilestone: %v", err)
	}

	if _, err := r.DeleteIssue(ctx, issue.ID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	if _, err := r.GetComment(ctx, issue.ID, c.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("comment survived issue delete: err = %v", err)
	}
	m, err := r.GetMilestone(ctx, milestone.ID)
	if err != nil {
		t.Fatalf("GetMilestone: %v", err)
	}
	if m.HasIssue(issue.ID) {
		t.Fatalf("milestone still references deleted issue %d", issue.ID)
	}
}

func testOrdering(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	var issueIDs []int64
	for _, title := range []string{"c", "a", "b"} {
		issueIDs = append(issueIDs, saveIssue(t, r, mustIssue(t, title, "alice")).ID)
	}
	issues, err := r.ListIssues(ctx)
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("ListIssues returned %d issues, want 3", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].ID >= issues[i].ID {
			t.Fatalf("issues out of order: %d before %d", issues[i-1].ID, issues[i].ID)
		}
	}

	target := issueIDs[0]
	for _, text := range []string{"one", "two", "three"} {
		saveComment(t, r, target, mustComment(t, "alice", text))
	}
	comments, err := r.GetAllComments(ctx, target)
	if err != nil {
		t.Fatalf("GetAllComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("GetAllComments returned %d comments, want 3", len(comments))
	}
	for i := 1; i < len(comments); i++ {
		if comments[i-1].ID >= comments[i].ID {
			t.Fatalf("comments out of order: %d before %d", comments[i-1].ID, comments[i].ID)
		}
	}
}

func testTagIdempotence(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	tag := types.Tag{Name: "urgent", Color: "red"}

	changed, err := r.AddTag(ctx, issue.ID, tag)
	if err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if !changed {
		t.Fatalf("first AddTag reported no change")
	}
	changed, err = r.AddTag(ctx, issue.ID, tag)
	if err != nil {
		t.Fatalf("AddTag (repeat): %v", err)
	}
	if changed {
		t.Fatalf("repeated AddTag reported a change")
	}

	// Recoloring counts as a change and replaces the color in place.
	changed, err = r.AddTag(ctx, issue.ID, types.Tag{Name: "urgent", Color: "orange"})
	if err != nil {
		t.Fatalf("AddTag (recolor): %v", err)
	}
	if !changed {
		t.Fatalf("recolor reported no change")
	}
	got, err := r.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Color != "orange" {
		t.Fatalf("tags after recolor = %v", got.Tags)
	}

	removed, err := r.RemoveTag(ctx, issue.ID, "urgent")
	if err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	if !removed {
		t.Fatalf("RemoveTag reported false for present tag")
	}
	removed, err = r.RemoveTag(ctx, issue.ID, "urgent")
	if err != nil {
		t.Fatalf("RemoveTag (repeat): %v", err)
	}
	if removed {
		t.Fatalf("RemoveTag reported true for absent tag")
	}
}

func testUsers(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	alice, err := types.NewUser("alice", "Developer")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveUser(ctx, alice); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	got, err := r.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Role != "Developer" {
		t.Fatalf("role = %q, want Developer", got.Role)
	}

	// Saving the same name again upserts the role.
	if err := alice.SetRole("Owner"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveUser(ctx, alice); err != nil {
		t.Fatalf("SaveUser (upsert): %v", err)
	}
	got, err = r.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Role != "Owner" {
		t.Fatalf("role after upsert = %q, want Owner", got.Role)
	}

	bob, err := types.NewUser("bob", "Reporter")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.SaveUser(ctx, bob); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	users, err := r.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Name != "alice" || users[1].Name != "bob" {
		t.Fatalf("ListUsers = %v, want [alice bob]", users)
	}

	deleted, err := r.DeleteUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted {
		t.Fatalf("DeleteUser reported true for unknown user")
	}
	deleted, err = r.DeleteUser(ctx, "bob")
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteUser reported false for existing user")
	}
	if _, err := r.GetUser(ctx, "bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetUser after delete: err = %v, want ErrNotFound", err)
	}
}

func testMilestoneLifecycle(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	saved, err := r.SaveMilestone(ctx, mustMilestone(t, "M1", "2024-01-01", "2024-02-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	if saved.ID <= 0 {
		t.Fatalf("milestone id = %d, want positive", saved.ID)
	}
	got, err := r.GetMilestone(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetMilestone: %v", err)
	}
	if got.StartDate != "2024-01-01" || got.EndDate != "2024-02-01" {
		t.Fatalf("dates did not round-trip: start %q, end %q", got.StartDate, got.EndDate)
	}

	row := saved.Clone()
	if err := row.SetName("M1 revised"); err != nil {
		t.Fatal(err)
	}
	row.SetDescription("second pass")
	updated, err := r.SaveMilestone(ctx, row)
	if err != nil {
		t.Fatalf("SaveMilestone (update): %v", err)
	}
	if updated.Name != "M1 revised" || updated.Description != "second pass" {
		t.Fatalf("milestone update not applied: %+v", updated)
	}

	later, err := r.SaveMilestone(ctx, mustMilestone(t, "M0", "2023-06-01", "2023-07-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	milestones, err := r.ListMilestones(ctx)
	if err != nil {
		t.Fatalf("ListMilestones: %v", err)
	}
	if len(milestones) != 2 || milestones[0].ID != later.ID {
		t.Fatalf("ListMilestones not ordered by start date: %v", milestones)
	}
}

func testMilestoneMembership(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	milestone, err := r.SaveMilestone(ctx, mustMilestone(t, "M1", "2024-01-01", "2024-02-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))

	added, err := r.AddIssueToMilestone(ctx, milestone.ID, issue.ID)
	if err != nil {
		t.Fatalf("AddIssueToMilestone: %v", err)
	}
	if !added {
		t.Fatalf("first link reported false")
	}
	added, err = r.AddIssueToMilestone(ctx, milestone.ID, issue.ID)
	if err != nil {
		t.Fatalf("AddIssueToMilestone (repeat): %v", err)
	}
	if added {
		t.Fatalf("repeated link reported true")
	}

	got, err := r.GetMilestone(ctx, milestone.ID)
	if err != nil {
		t.Fatalf("GetMilestone: %v", err)
	}
	if len(got.IssueIDs) != 1 || got.IssueIDs[0] != issue.ID {
		t.Fatalf("membership = %v, want [%d]", got.IssueIDs, issue.ID)
	}

	members, err := r.GetIssuesForMilestone(ctx, milestone.ID)
	if err != nil {
		t.Fatalf("GetIssuesForMilestone: %v", err)
	}
	if len(members) != 1 || members[0].ID != issue.ID {
		t.Fatalf("GetIssuesForMilestone = %v", members)
	}

	if _, err := r.AddIssueToMilestone(ctx, milestone.ID, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("linking missing issue: err = %v, want ErrNotFound", err)
	}
	if _, err := r.AddIssueToMilestone(ctx, 999, issue.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("linking into missing milestone: err = %v, want ErrNotFound", err)
	}

	removed, err := r.RemoveIssueFromMilestone(ctx, milestone.ID, issue.ID)
	if err != nil {
		t.Fatalf("RemoveIssueFromMilestone: %v", err)
	}
	if !removed {
		t.Fatalf("unlink reported false for linked issue")
	}
	removed, err = r.RemoveIssueFromMilestone(ctx, milestone.ID, issue.ID)
	if err != nil {
		t.Fatalf("RemoveIssueFromMilestone (repeat): %v", err)
	}
	if removed {
		t.Fatalf("unlink reported true for unlinked issue")
	}

	if _, err := r.RemoveIssueFromMilestone(ctx, milestone.ID, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unlinking missing issue: err = %v, want ErrNotFound", err)
	}
	if _, err := r.RemoveIssueFromMilestone(ctx, 999, issue.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unlinking from missing milestone: err = %v, want ErrNotFound", err)
	}
}

func testMilestoneCascade(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	milestone, err := r.SaveMilestone(ctx, mustMilestone(t, "M1", "2024-01-01", "2024-02-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	if _, err := r.AddIssueToMilestone(ctx, milestone.ID, issue.ID); err != nil {
		t.Fatalf("AddIssueToMilestone: %v", err)
	}

	// Non-cascade delete leaves the member issues alone.
	deleted, err := r.DeleteMilestone(ctx, milestone.ID, false)
	if err != nil {
		t.Fatalf("DeleteMilestone: %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteMilestone reported false for existing milestone")
	}
	if _, err := r.GetIssue(ctx, issue.ID); err != nil {
		t.Fatalf("member issue vanished on non-cascade delete: %v", err)
	}

	// Cascade delete takes the member issues with it.
	milestone, err = r.SaveMilestone(ctx, mustMilestone(t, "M2", "2024-03-01", "2024-04-01"))
	if err != nil {
		t.Fatalf("SaveMilestone: %v", err)
	}
	if _, err := r.AddIssueToMilestone(ctx, milestone.ID, issue.ID); err != nil {
		t.Fatalf("AddIssueToMilestone: %v", err)
	}
	if _, err := r.DeleteMilestone(ctx, milestone.ID, true); err != nil {
		t.Fatalf("DeleteMilestone (cascade): %v", err)
	}
	if _, err := r.GetIssue(ctx, issue.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("member issue survived cascade delete: err = %v", err)
	}

	deleted, err = r.DeleteMilestone(ctx, 999, false)
	if err != nil {
		t.Fatalf("DeleteMilestone(999): %v", err)
	}
	if deleted {
		t.Fatalf("DeleteMilestone reported true for missing milestone")
	}
}

func testValidationRejections(t *testing.T, r storage.Repository) {
	ctx := context.Background()

	if _, err := r.SaveIssue(ctx, &types.Issue{Title: "no author"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("SaveIssue without author: err = %v, want ErrValidation", err)
	}
	if _, err := r.SaveIssue(ctx, &types.Issue{AuthorID: "alice", Title: "bad status", Status: "Nope"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("SaveIssue with bad status: err = %v, want ErrValidation", err)
	}
	if _, err := r.SaveUser(ctx, &types.User{Name: "", Role: "Dev"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("SaveUser without name: err = %v, want ErrValidation", err)
	}
	if _, err := r.SaveMilestone(ctx, &types.Milestone{Name: "M", StartDate: "", EndDate: "d"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("SaveMilestone without start date: err = %v, want ErrValidation", err)
	}

	issue := saveIssue(t, r, mustIssue(t, "A", "alice"))
	if _, err := r.SaveComment(ctx, issue.ID, &types.Comment{Author: "alice"}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("SaveComment without text: err = %v, want ErrValidation", err)
	}
	if _, err := r.AddTag(ctx, issue.ID, types.Tag{}); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("AddTag with empty name: err = %v, want ErrValidation", err)
	}
}
