package types

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"To Be Done", StatusToDo, false},
		{"In Progress", StatusInProgress, false},
		{"Done", StatusDone, false},
		{"1", StatusToDo, false},
		{"2", StatusInProgress, false},
		{"3", StatusDone, false},
		{" 2 ", StatusInProgress, false},
		{"4", "", true},
		{"done", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ParseStatus(%q): err = %v, want ErrValidation", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAssignIDOneShot(t *testing.T) {
	issue, err := NewIssue("alice", "t", 0)
	if err != nil {
		t.Fatal(err)
	}
	if issue.HasPersistentID() {
		t.Fatalf("fresh issue claims a persistent id")
	}
	if err := issue.AssignID(7); err != nil {
		t.Fatalf("AssignID: %v", err)
	}
	if err := issue.AssignID(8); !errors.Is(err, ErrConflict) {
		t.Fatalf("second AssignID: err = %v, want ErrConflict", err)
	}
	if issue.ID != 7 {
		t.Fatalf("id changed by failed reassignment: %d", issue.ID)
	}

	comment, err := NewComment("alice", "x", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := comment.AssignID(0); !errors.Is(err, ErrValidation) {
		t.Fatalf("AssignID(0): err = %v, want ErrValidation", err)
	}
	if err := comment.AssignID(1); err != nil {
		t.Fatal(err)
	}
	if err := comment.AssignID(2); !errors.Is(err, ErrConflict) {
		t.Fatalf("second comment AssignID: err = %v, want ErrConflict", err)
	}
}

func TestConstructorValidation(t *testing.T) {
	if _, err := NewIssue("", "t", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("empty author: err = %v", err)
	}
	if _, err := NewIssue("alice", "", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("empty title: err = %v", err)
	}
	if _, err := NewIssue("alice", "t", -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative timestamp: err = %v", err)
	}
	if _, err := NewComment("", "x", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("empty comment author: err = %v", err)
	}
	if _, err := NewComment("alice", "", 0); !errors.Is(err, ErrValidation) {
		t.Errorf("empty comment text: err = %v", err)
	}
	if _, err := NewUser("alice", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty role: err = %v", err)
	}
	if _, err := NewTag("", "red"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty tag name: err = %v", err)
	}
	if _, err := NewMilestone("m", "", "", "2024-02-01"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty start date: err = %v", err)
	}
}

func TestCommentIDSet(t *testing.T) {
	issue, err := NewIssue("alice", "t", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{3, 1, 2, 2} {
		if err := issue.AddCommentID(id); err != nil {
			t.Fatalf("AddCommentID(%d): %v", id, err)
		}
	}
	want := []int64{1, 2, 3}
	if len(issue.CommentIDs) != 3 {
		t.Fatalf("CommentIDs = %v, want %v", issue.CommentIDs, want)
	}
	for i, id := range want {
		if issue.CommentIDs[i] != id {
			t.Fatalf("CommentIDs = %v, want %v", issue.CommentIDs, want)
		}
	}
	if err := issue.AddCommentID(0); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddCommentID(0): err = %v, want ErrValidation", err)
	}

	if err := issue.SetDescriptionCommentID(2); err != nil {
		t.Fatalf("SetDescriptionCommentID: %v", err)
	}
	if !issue.RemoveCommentID(2) {
		t.Fatalf("RemoveCommentID(2) = false")
	}
	if issue.HasDescription() {
		t.Fatalf("description link survived removal of its comment id")
	}
	if issue.RemoveCommentID(2) {
		t.Fatalf("RemoveCommentID of absent id = true")
	}

	// Linking a detached comment id attaches it.
	if err := issue.SetDescriptionCommentID(9); err != nil {
		t.Fatalf("SetDescriptionCommentID(9): %v", err)
	}
	if issue.DescriptionCommentID != 9 {
		t.Fatalf("DescriptionCommentID = %d, want 9", issue.DescriptionCommentID)
	}
	attached := false
	for _, id := range issue.CommentIDs {
		if id == 9 {
			attached = true
		}
	}
	if !attached {
		t.Fatalf("CommentIDs = %v, want the id 9 attached", issue.CommentIDs)
	}
	if err := issue.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestTagSet(t *testing.T) {
	issue, err := NewIssue("alice", "t", 0)
	if err != nil {
		t.Fatal(err)
	}
	changed, err := issue.AddTag(Tag{Name: "urgent", Color: "red"})
	if err != nil || !changed {
		t.Fatalf("AddTag = (%v, %v), want (true, nil)", changed, err)
	}
	changed, err = issue.AddTag(Tag{Name: "urgent", Color: "red"})
	if err != nil || changed {
		t.Fatalf("duplicate AddTag = (%v, %v), want (false, nil)", changed, err)
	}
	changed, err = issue.AddTag(Tag{Name: "urgent", Color: "blue"})
	if err != nil || !changed {
		t.Fatalf("recolor AddTag = (%v, %v), want (true, nil)", changed, err)
	}
	if len(issue.Tags) != 1 || issue.Tags[0].Color != "blue" {
		t.Fatalf("Tags = %v", issue.Tags)
	}
	if _, err := issue.AddTag(Tag{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddTag with empty name: err = %v", err)
	}

	if _, err := issue.AddTag(Tag{Name: "api"}); err != nil {
		t.Fatal(err)
	}
	if issue.Tags[0].Name != "api" || issue.Tags[1].Name != "urgent" {
		t.Fatalf("Tags not sorted by name: %v", issue.Tags)
	}
	if !issue.RemoveTag("api") || issue.RemoveTag("api") {
		t.Fatalf("RemoveTag misreported presence")
	}
}

func TestHydratedIssue(t *testing.T) {
	issue, err := NewIssue("alice", "t", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := issue.AssignID(1); err != nil {
		t.Fatal(err)
	}
	h := &HydratedIssue{Issue: *issue}

	if err := h.UpsertComment(&Comment{Author: "alice", Text: "x"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("UpsertComment without id: err = %v, want ErrValidation", err)
	}

	for _, c := range []*Comment{
		{ID: 2, Author: "alice", Text: "second"},
		{ID: 1, Author: "alice", Text: "first"},
	} {
		if err := h.UpsertComment(c); err != nil {
			t.Fatalf("UpsertComment(%d): %v", c.ID, err)
		}
	}
	if h.Comments[0].ID != 1 || h.Comments[1].ID != 2 {
		t.Fatalf("comments not ordered by id: %v", h.Comments)
	}
	if len(h.CommentIDs) != 2 {
		t.Fatalf("id set not synced: %v", h.CommentIDs)
	}

	if err := h.SetDescriptionCommentID(1); err != nil {
		t.Fatal(err)
	}
	if h.Description() != "first" {
		t.Fatalf("Description() = %q, want first", h.Description())
	}

	if !h.RemoveComment(1) {
		t.Fatalf("RemoveComment(1) = false")
	}
	if h.HasDescription() {
		t.Fatalf("description link survived RemoveComment")
	}
	if h.Description() != "" {
		t.Fatalf("Description() after removal = %q", h.Description())
	}

	clone := h.Clone()
	clone.Comments[0].Text = "scribbled"
	if h.Comments[0].Text == "scribbled" {
		t.Fatalf("Clone shares comment storage")
	}
}
