// Package migrations holds the ordered, idempotent schema steps applied by
// the sqlite store. Each step checks the live schema before changing it.
package migrations

import (
	"database/sql"
	"fmt"
)

func columnExists(db *sql.DB, table, column string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s.%s column: %w", table, column, err)
	}
	return exists, nil
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name = ?
	`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s table: %w", table, err)
	}
	return true, nil
}
