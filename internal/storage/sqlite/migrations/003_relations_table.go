package migrations

import (
	"database/sql"
	"fmt"
)

// MigrateRelationsTable adds the undirected "related" link table.
// Each pair is stored once with issue_a < issue_b.
func MigrateRelationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS relations (
			issue_a INTEGER NOT NULL,
			issue_b INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (issue_a, issue_b),
			CHECK (issue_a < issue_b),
			FOREIGN KEY (issue_a) REFERENCES issues(id) ON DELETE CASCADE,
			FOREIGN KEY (issue_b) REFERENCES issues(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create relations table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_relations_b ON relations(issue_b)`)
	if err != nil {
		return fmt.Errorf("failed to create relations index: %w", err)
	}

	return nil
}
