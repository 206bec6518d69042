package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the base layout every store version shares. Tables introduced
// later (milestones, relations, active_timer) and indexes over columns that
// older files lack are created by migrations, so applying this to an old
// file never fails.
const schema = `
-- Issues table
CREATE TABLE IF NOT EXISTS issues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'medium',
    parent_id INTEGER,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    closed_at TEXT,
    FOREIGN KEY (parent_id) REFERENCES issues(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_issues_priority ON issues(priority);

-- Labels table
CREATE TABLE IF NOT EXISTS labels (
    issue_id INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (issue_id, label),
    FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_labels_issue ON labels(issue_id);

-- Dependencies table (blocker blocks blocked)
CREATE TABLE IF NOT EXISTS dependencies (
    blocker_id INTEGER NOT NULL,
    blocked_id INTEGER NOT NULL,
    PRIMARY KEY (blocker_id, blocked_id),
    FOREIGN KEY (blocker_id) REFERENCES issues(id) ON DELETE CASCADE,
    FOREIGN KEY (blocked_id) REFERENCES issues(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_deps_blocker ON dependencies(blocker_id);
CREATE INDEX IF NOT EXISTS idx_deps_blocked ON dependencies(blocked_id);

-- Comments table
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id);

-- Sessions table
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TEXT NOT NULL,
    ended_at TEXT,
    active_issue_id INTEGER,
    handoff_notes TEXT,
    FOREIGN KEY (active_issue_id) REFERENCES issues(id)
);

-- Time entries table (closed entries; the running timer lives in active_timer)
CREATE TABLE IF NOT EXISTS time_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_id INTEGER NOT NULL,
    started_at TEXT NOT NULL,
    ended_at TEXT,
    duration_seconds INTEGER,
    FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_time_entries_issue ON time_entries(issue_id);
`

func applyBaseSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", wrapDBError("apply schema", err))
	}
	return nil
}

// schemaProbes are the columns every query in this package relies on.
var schemaProbes = map[string][]string{
	"issues":           {"id", "title", "description", "status", "priority", "parent_id", "created_at", "updated_at", "closed_at"},
	"labels":           {"issue_id", "label"},
	"dependencies":     {"blocker_id", "blocked_id"},
	"comments":         {"id", "issue_id", "content", "created_at"},
	"sessions":         {"id", "started_at", "ended_at", "active_issue_id", "handoff_notes"},
	"time_entries":     {"id", "issue_id", "started_at", "ended_at", "duration_seconds"},
	"milestones":       {"id", "name", "description", "status", "created_at", "closed_at"},
	"milestone_issues": {"milestone_id", "issue_id"},
	"relations":        {"issue_a", "issue_b", "created_at"},
	"active_timer":     {"id", "issue_id", "started_at"},
}

// verifySchema checks that every table and column the store queries exists.
func verifySchema(ctx context.Context, db *sql.DB) error {
	for table, columns := range schemaProbes {
		rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
		if err != nil {
			return wrapDBErrorf(err, "probe table %s", table)
		}
		have := make(map[string]bool)
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				_ = rows.Close()
				return wrapDBErrorf(err, "probe table %s", table)
			}
			have[name] = true
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return wrapDBErrorf(err, "probe table %s", table)
		}
		_ = rows.Close()

		if len(have) == 0 {
			return fmt.Errorf("table %s is missing", table)
		}
		for _, col := range columns {
			if !have[col] {
				return fmt.Errorf("column %s.%s is missing", table, col)
			}
		}
	}
	return nil
}
