package memory_test

import (
	"context"
	"testing"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/storage/memory"
	"github.com/avigan/tracker/internal/storage/storagetest"
	"github.com/avigan/tracker/internal/types"
)

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		return memory.New()
	})
}

// Returned snapshots must be detached from the store: mutating one must not
// change what a later read observes.
func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	issue, err := types.NewIssue("alice", "original", 0)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := store.SaveIssue(ctx, issue)
	if err != nil {
		t.Fatalf("SaveIssue: %v", err)
	}
	if _, err := store.SaveComment(ctx, saved.ID, mustComment(t, "alice", "untouched")); err != nil {
		t.Fatalf("SaveComment: %v", err)
	}

	got, err := store.GetIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	got.Title = "scribbled"
	got.Comments[0].Text = "scribbled"

	fresh, err := store.GetIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if fresh.Title != "original" {
		t.Fatalf("store title = %q, snapshot mutation leaked", fresh.Title)
	}
	if fresh.Comments[0].Text != "untouched" {
		t.Fatalf("store comment = %q, snapshot mutation leaked", fresh.Comments[0].Text)
	}
}

// The memory backend deliberately does not implement Transactional; the
// service layer checks for the capability before using it.
func TestNotTransactional(t *testing.T) {
	if _, ok := storage.AsTransactional(memory.New()); ok {
		t.Fatalf("memory store unexpectedly claims transaction support")
	}
}

func mustComment(t *testing.T, author, text string) *types.Comment {
	t.Helper()
	c, err := types.NewComment(author, text, 0)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
