package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

// MigrateActiveTimerTable moves the running timer out of time_entries into a
// single-row table.
//
// Older stores marked the running timer as a time_entries row with ended_at
// NULL and nothing stopped two such rows from coexisting. The newest open row
// becomes the active timer; every other open row is closed with the time it
// has been running, so no tracked time is lost.
func MigrateActiveTimerTable(db *sql.DB) error {
	exists, err := tableExists(db, "active_timer")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin active_timer migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		CREATE TABLE active_timer (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			issue_id INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create active_timer table: %w", err)
	}

	var (
		entryID   int64
		issueID   int64
		startedAt string
	)
	err = tx.QueryRow(`
		SELECT id, issue_id, started_at FROM time_entries
		WHERE ended_at IS NULL
		ORDER BY id DESC LIMIT 1
	`).Scan(&entryID, &issueID, &startedAt)
	switch {
	case err == sql.ErrNoRows:
		// Nothing running.
	case err != nil:
		return fmt.Errorf("failed to find open time entry: %w", err)
	default:
		if _, err := tx.Exec(`INSERT INTO active_timer (id, issue_id, started_at) VALUES (1, ?, ?)`,
			issueID, startedAt); err != nil {
			return fmt.Errorf("failed to move running timer: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM time_entries WHERE id = ?`, entryID); err != nil {
			return fmt.Errorf("failed to remove migrated time entry: %w", err)
		}
	}

	endedAt := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.Exec(`
		UPDATE time_entries
		SET ended_at = ?1,
		    duration_seconds = MAX(0, COALESCE(CAST((julianday(?1) - julianday(started_at)) * 86400 AS INTEGER), 0))
		WHERE ended_at IS NULL
	`, endedAt)
	if err != nil {
		return fmt.Errorf("failed to close stray time entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit active_timer migration: %w", err)
	}
	return nil
}
