// Package archive persists a history of reconciliation runs in SQLite.
//
// The state file only holds the current view of the world; the archive
// answers "what did run X change" long after the changelog is gone.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/civicsignal/hearingwatch/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	started_at      TEXT NOT NULL,
	finished_at     TEXT NOT NULL,
	fetched         INTEGER NOT NULL,
	skipped         INTEGER NOT NULL,
	new_count       INTEGER NOT NULL,
	deferred_count  INTEGER NOT NULL,
	resched_count   INTEGER NOT NULL,
	moved_count     INTEGER NOT NULL,
	confirmed_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_entries (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	category   TEXT NOT NULL,
	event_id   TEXT NOT NULL,
	related_id TEXT,
	detail     TEXT
);

CREATE INDEX IF NOT EXISTS idx_run_entries_run ON run_entries(run_id);
`

// Run summarizes one archived reconciliation run.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	Fetched         int
	Skipped         int
	NewCount        int
	DeferredCount   int
	RescheduleCount int
	MovedCount      int
	ConfirmedCount  int
}

// Entry is one changelog item within an archived run.
type Entry struct {
	RunID     string
	Category  string
	EventID   string
	RelatedID string
	Detail    string
}

// Archive is a SQLite-backed run history.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordRun writes the run row and one entry per changelog item,
// returning the generated run id.
func (a *Archive) RecordRun(ctx context.Context, startedAt, finishedAt time.Time, fetched int, changelog *types.Changelog) (string, error) {
	runID := uuid.New().String()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, fetched, skipped,
			new_count, deferred_count, resched_count, moved_count, confirmed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		startedAt.UTC().Format(time.RFC3339),
		finishedAt.UTC().Format(time.RFC3339),
		fetched,
		changelog.SkippedRecords,
		len(changelog.NewlyAdded),
		len(changelog.NewlyDeferred),
		len(changelog.NewlyRescheduled),
		len(changelog.DateChanged),
		len(changelog.DateConfirmed),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	insert := func(category, eventID, relatedID, detail string) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_entries (run_id, category, event_id, related_id, detail)
			VALUES (?, ?, ?, ?, ?)`,
			runID, category, eventID, relatedID, detail)
		return err
	}

	for _, id := range changelog.NewlyAdded {
		if err := insert("new", id, "", ""); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}
	for _, id := range changelog.NewlyDeferred {
		if err := insert("deferred", id, "", ""); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}
	for _, pair := range changelog.NewlyRescheduled {
		detail := fmt.Sprintf("similarity=%.3f", pair.Similarity)
		if err := insert("rescheduled", pair.DeferredID, pair.ReplacementID, detail); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}
	for _, dc := range changelog.DateChanged {
		detail := fmt.Sprintf("%s -> %s", dc.OldDate, dc.NewDate)
		if err := insert("date_changed", dc.ID, "", detail); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}
	for _, id := range changelog.DateConfirmed {
		if err := insert("date_confirmed", id, "", ""); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (a *Archive) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, fetched, skipped,
			new_count, deferred_count, resched_count, moved_count, confirmed_count
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Fetched, &r.Skipped,
			&r.NewCount, &r.DeferredCount, &r.RescheduleCount, &r.MovedCount, &r.ConfirmedCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEntries returns the changelog items archived under runID.
func (a *Archive) RunEntries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT run_id, category, event_id, COALESCE(related_id, ''), COALESCE(detail, '')
		FROM run_entries WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Category, &e.EventID, &e.RelatedID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
