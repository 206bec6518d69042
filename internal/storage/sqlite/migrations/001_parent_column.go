package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateParentColumn adds issues.parent_id to stores created before
// subissues existed, then indexes it.
func MigrateParentColumn(db *sql.DB) error {
	exists, err := columnExists(db, "issues", "parent_id")
	if err != nil {
		return err
	}

	if !exists {
		_, err = db.Exec(`ALTER TABLE issues ADD COLUMN parent_id INTEGER REFERENCES issues(id) ON DELETE CASCADE`)
		if err != nil {
			return fmt.Errorf("failed to add parent_id column: %w", err)
		}
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_issues_parent ON issues(parent_id)`)
	if err != nil {
		return fmt.Errorf("failed to create parent_id index: %w", err)
	}

	return nil
}
