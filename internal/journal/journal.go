// Package journal keeps a local record of every mutating operation this
// tool performs against the tracker: creates, updates, comments,
// transitions, deletions and attachments. It records what was done, not
// what the tracker currently looks like; tracker state is never cached.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry is one journaled operation.
type Entry struct {
	ID        string    `db:"id"`
	Operation string    `db:"operation"`
	IssueKey  string    `db:"issue_key"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// Journal appends and lists operation entries in a local SQLite
// database.
type Journal struct {
	db *sqlx.DB
}

// Open opens (or creates) the journal database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Journal, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	j := &Journal{db: db}
	if err := j.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (j *Journal) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := j.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = j.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := j.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Record appends one operation entry. detail may be any JSON-shaped
// value describing what was sent; nil records an empty detail.
func (j *Journal) Record(
	ctx context.Context,
	operation string,
	issueKey string,
	detail any,
) error {
	detailJSON := []byte("{}")
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshaling journal detail: %w", err)
		}
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (id, operation, issue_key, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), operation, issueKey, string(detailJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording %s for %s: %w", operation, issueKey, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}

	var entries []Entry
	err := j.db.SelectContext(ctx, &entries,
		`SELECT id, operation, issue_key, detail, created_at
		 FROM entries ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return entries, nil
}

// ForIssue returns all entries recorded for one issue, oldest first.
func (j *Journal) ForIssue(ctx context.Context, issueKey string) ([]Entry, error) {
	var entries []Entry
	err := j.db.SelectContext(ctx, &entries,
		`SELECT id, operation, issue_key, detail, created_at
		 FROM entries WHERE issue_key = ? ORDER BY created_at`, issueKey,
	)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries for %s: %w", issueKey, err)
	}
	return entries, nil
}
