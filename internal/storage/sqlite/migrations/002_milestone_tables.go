package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateMilestoneTables adds milestones and their issue membership table.
func MigrateMilestoneTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS milestones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'open',
			created_at TEXT NOT NULL,
			closed_at TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create milestones table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS milestone_issues (
			milestone_id INTEGER NOT NULL,
			issue_id INTEGER NOT NULL,
			PRIMARY KEY (milestone_id, issue_id),
			FOREIGN KEY (milestone_id) REFERENCES milestones(id) ON DELETE CASCADE,
			FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create milestone_issues table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_milestone_issues_issue ON milestone_issues(issue_id)`)
	if err != nil {
		return fmt.Errorf("failed to create milestone_issues index: %w", err)
	}

	return nil
}
