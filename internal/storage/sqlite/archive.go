package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// ArchiveIssue moves a closed issue to archived. closed_at is kept.
// Only closed issues can be archived; archiving twice returns false.
func (s *SQLiteStorage) ArchiveIssue(ctx context.Context, id int64) (bool, error) {
	changed := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		status, err := issueStatus(ctx, conn, id)
		if err != nil {
			return err
		}
		switch status {
		case types.StatusArchived:
			return nil
		case types.StatusOpen:
			return invalidf("issue #%d is open; only closed issues can be archived", id)
		}
		_, err = conn.ExecContext(ctx, `
			UPDATE issues SET status = ?, updated_at = ? WHERE id = ?
		`, string(types.StatusArchived), formatTime(now()), id)
		if err != nil {
			return wrapDBErrorf(err, "archive issue #%d", id)
		}
		changed = true
		return nil
	})
	return changed, err
}

// UnarchiveIssue returns an archived issue to closed.
// Returns false if the issue is absent or not archived.
func (s *SQLiteStorage) UnarchiveIssue(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE issues SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(types.StatusClosed), formatTime(now()), id, string(types.StatusArchived))
	if err != nil {
		return false, wrapDBErrorf(err, "unarchive issue #%d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// ListArchivedIssues returns archived issues, newest first.
func (s *SQLiteStorage) ListArchivedIssues(ctx context.Context) ([]*types.Issue, error) {
	iq := (&issueQuery{newest: true}).where(predStatus, string(types.StatusArchived))
	return s.queryIssues(ctx, s.db, iq)
}

// ArchiveClosedBefore archives every closed issue whose closed_at is before
// cutoff and returns how many were archived.
//
// closed_at is compared as a parsed time rather than as text, since older
// stores wrote it with a numeric offset.
func (s *SQLiteStorage) ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var archived int64
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT id, closed_at FROM issues WHERE status = ? AND closed_at IS NOT NULL
		`, string(types.StatusClosed))
		if err != nil {
			return wrapDBError("find closed issues", err)
		}

		var ids []int64
		for rows.Next() {
			var (
				id       int64
				closedAt string
			)
			if err := rows.Scan(&id, &closedAt); err != nil {
				_ = rows.Close()
				return wrapDBError("scan closed issue", err)
			}
			if t := parseTimeString(closedAt); !t.IsZero() && t.Before(cutoff) {
				ids = append(ids, id)
			}
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return wrapDBError("iterate closed issues", err)
		}
		_ = rows.Close()

		if len(ids) == 0 {
			return nil
		}

		archived, err = execInBatches(ctx, conn, ids,
			`UPDATE issues SET status = ?, updated_at = ? WHERE id IN (%s)`,
			string(types.StatusArchived), formatTime(now()))
		if err != nil {
			return wrapDBError("archive closed issues", err)
		}
		return nil
	})
	return archived, err
}
