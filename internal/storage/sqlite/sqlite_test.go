package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/storage/sqlite"
	"github.com/avigan/tracker/internal/storage/storagetest"
	"github.com/avigan/tracker/internal/types"
)

func open(t *testing.T) storage.Repository {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "issues.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestContract(t *testing.T) {
	storagetest.Run(t, open)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "issues.db")

	store, err := sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	issue, err := types.NewIssue("alice", "survives restarts", 0)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := store.SaveIssue(ctx, issue)
	if err != nil {
		t.Fatalf("SaveIssue: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("sqlite.New (reopen): %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetIssue(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetIssue after reopen: %v", err)
	}
	if got.Title != "survives restarts" {
		t.Fatalf("title after reopen = %q", got.Title)
	}
}

func TestMemoryPath(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.New(%q): %v", sqlite.MemoryPath, err)
	}
	defer store.Close()

	issue, err := types.NewIssue("alice", "ephemeral", 0)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := store.SaveIssue(ctx, issue)
	if err != nil {
		t.Fatalf("SaveIssue: %v", err)
	}
	if _, err := store.GetIssue(ctx, saved.ID); err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "issues.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer store.Close()

	boom := errors.New("boom")
	err = store.InTransaction(ctx, func(r storage.Repository) error {
		issue, err := types.NewIssue("alice", "rolled back", 0)
		if err != nil {
			return err
		}
		if _, err := r.SaveIssue(ctx, issue); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTransaction err = %v, want boom", err)
	}

	issues, err := store.ListIssues(ctx)
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("rolled-back issue is visible: %v", issues)
	}
}

func TestTransactionCommit(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "issues.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer store.Close()

	err = store.InTransaction(ctx, func(r storage.Repository) error {
		user, err := types.NewUser("alice", "Developer")
		if err != nil {
			return err
		}
		if _, err := r.SaveUser(ctx, user); err != nil {
			return err
		}
		issue, err := types.NewIssue("alice", "committed", 0)
		if err != nil {
			return err
		}
		_, err = r.SaveIssue(ctx, issue)
		return err
	})
	if err != nil {
		t.Fatalf("InTransaction: %v", err)
	}

	issues, err := store.ListIssues(ctx)
	if err != nil {
		t.Fatalf("ListIssues: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "committed" {
		t.Fatalf("committed issue not visible: %v", issues)
	}
}
