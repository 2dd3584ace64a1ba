// Package sqlite implements the storage interface on an embedded SQLite
// database, using the pure-Go ncruces driver.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/avigan/tracker/internal/storage"
)

// MemoryPath selects the in-process variant: the same schema and semantics
// with no on-disk file. The schema is recreated per process.
const MemoryPath = ":memory:"

// Verify the interfaces at compile time.
var (
	_ storage.Repository    = (*Store)(nil)
	_ storage.Transactional = (*Store)(nil)
)

// Store is the relational repository. All methods run their statements
// through q, which is either the pooled database or, inside InTransaction,
// a single open transaction.
type Store struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// schema is the on-disk contract. Referential integrity is on for every
// connection (see the DSN pragma in New); issue deletion cascades to
// comments, tag rows and milestone memberships through the foreign keys.
// description_comment_id = -1 means "none".
var schema = []string{
	`CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description_comment_id INTEGER NOT NULL DEFAULT -1,
		assigned_to TEXT,
		status TEXT NOT NULL DEFAULT 'To Be Done',
		created_at INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		issue_id INTEGER NOT NULL,
		id INTEGER NOT NULL,
		author_id TEXT NOT NULL,
		text TEXT NOT NULL,
		timestamp INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (issue_id, id),
		FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		name TEXT PRIMARY KEY,
		role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS milestones (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS milestone_issues (
		milestone_id INTEGER NOT NULL,
		issue_id INTEGER NOT NULL,
		PRIMARY KEY (milestone_id, issue_id),
		FOREIGN KEY (milestone_id) REFERENCES milestones(id) ON DELETE CASCADE,
		FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS issue_tags (
		issue_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (issue_id, name),
		FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id)`,
}

// New opens (or creates) the database at path and ensures the schema exists.
// The parent directory is created when missing. Passing MemoryPath yields the
// in-process variant.
func New(ctx context.Context, path string) (*Store, error) {
	memory := path == MemoryPath
	if !memory {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, storage.WrapBackend("create database directory", err)
			}
		}
	}

	// _pragma applies to every pooled connection; _txlock=immediate makes
	// writes take the reserved lock up front, which serializes id allocation
	// across concurrent writers.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", path)
	if memory {
		dsn = "file::memory:?_pragma=foreign_keys(1)&_txlock=immediate"
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, storage.WrapBackend("open database", err)
	}
	if memory {
		// A second pooled connection would see a different empty database.
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, storage.WrapBackend("initialize schema", err)
		}
	}

	return &Store{db: db, q: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTransaction runs fn against a Store bound to one transaction. A nested
// call joins the ambient transaction instead of opening a second one.
func (s *Store) InTransaction(ctx context.Context, fn func(storage.Repository) error) error {
	return s.withTx(ctx, func(tx *Store) error { return fn(tx) })
}

// withTx is the internal transaction helper used by every multi-statement
// operation.
func (s *Store) withTx(ctx context.Context, fn func(*Store) error) error {
	if _, inTx := s.q.(*sqlx.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storage.WrapBackend("begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storage.WrapBackend("commit transaction", err)
	}
	committed = true
	return nil
}

// nowMillis is the timestamp filled in for entities saved with the zero
// "unknown" sentinel.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
