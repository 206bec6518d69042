package sqlite

import (
	"context"
	"database/sql"
)

// DeleteIssue permanently deletes an issue, its whole subissue tree and
// every row that references any of them, in one transaction.
// Returns false if the issue does not exist.
func (s *SQLiteStorage) DeleteIssue(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		exists, err := issueExists(ctx, conn, id)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		ids, err := collectSubtree(ctx, conn, id)
		if err != nil {
			return err
		}

		// Dependents first, issues last. Sessions only lose their pointer.
		statements := []struct {
			what  string
			query string
		}{
			{"labels", `DELETE FROM labels WHERE issue_id IN (%s)`},
			{"comments", `DELETE FROM comments WHERE issue_id IN (%s)`},
			{"dependencies", `DELETE FROM dependencies WHERE blocker_id IN (%s) OR blocked_id IN (%s)`},
			{"relations", `DELETE FROM relations WHERE issue_a IN (%s) OR issue_b IN (%s)`},
			{"milestone memberships", `DELETE FROM milestone_issues WHERE issue_id IN (%s)`},
			{"time entries", `DELETE FROM time_entries WHERE issue_id IN (%s)`},
			{"active timer", `DELETE FROM active_timer WHERE issue_id IN (%s)`},
			{"session references", `UPDATE sessions SET active_issue_id = NULL WHERE active_issue_id IN (%s)`},
			{"issues", `DELETE FROM issues WHERE id IN (%s)`},
		}
		for _, st := range statements {
			if _, err := execInBatches(ctx, conn, ids, st.query); err != nil {
				return wrapDBErrorf(err, "delete %s", st.what)
			}
		}

		deleted = true
		return nil
	})
	return deleted, err
}

// collectSubtree returns root and every descendant, breadth first.
// The walk uses an explicit queue so depth is bounded only by memory.
func collectSubtree(ctx context.Context, q dbExecer, root int64) ([]int64, error) {
	seen := map[int64]bool{root: true}
	out := []int64{root}
	queue := []int64{root}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := queryIDs(ctx, q, `SELECT id FROM issues WHERE parent_id = ? ORDER BY id`, parent)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out, nil
}
