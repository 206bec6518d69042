package sqlite

import (
	"context"
	"database/sql"
)

// AddDependency records that blocker blocks blocked.
//
// Cycles are not rejected: every issue on a cycle keeps an open blocker and
// stays out of the ready set until an edge is removed or a member is closed.
// Returns false if the edge already existed.
func (s *SQLiteStorage) AddDependency(ctx context.Context, blockedID, blockerID int64) (bool, error) {
	if blockedID == blockerID {
		return false, invalidf("issue #%d cannot block itself", blockedID)
	}

	added := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		for _, id := range []int64{blockedID, blockerID} {
			exists, err := issueExists(ctx, conn, id)
			if err != nil {
				return err
			}
			if !exists {
				return notFoundf("issue #%d", id)
			}
		}

		res, err := conn.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)
		`, blockerID, blockedID)
		if err != nil {
			return wrapDBErrorf(err, "add dependency #%d -> #%d", blockerID, blockedID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDBError("rows affected", err)
		}
		added = n > 0
		return nil
	})
	return added, err
}

// RemoveDependency deletes the blocker -> blocked edge.
// Returns false if there was no such edge.
func (s *SQLiteStorage) RemoveDependency(ctx context.Context, blockedID, blockerID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM dependencies WHERE blocker_id = ? AND blocked_id = ?
	`, blockerID, blockedID)
	if err != nil {
		return false, wrapDBErrorf(err, "remove dependency #%d -> #%d", blockerID, blockedID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// GetBlockers returns the ids of issues that directly block issueID.
func (s *SQLiteStorage) GetBlockers(ctx context.Context, issueID int64) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT blocker_id FROM dependencies WHERE blocked_id = ? ORDER BY blocker_id
	`, issueID)
}

// GetBlocking returns the ids of issues that issueID directly blocks.
func (s *SQLiteStorage) GetBlocking(ctx context.Context, issueID int64) ([]int64, error) {
	return s.queryIDs(ctx, `
		SELECT blocked_id FROM dependencies WHERE blocker_id = ? ORDER BY blocked_id
	`, issueID)
}

func (s *SQLiteStorage) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	return queryIDs(ctx, s.db, query, args...)
}

func queryIDs(ctx context.Context, q dbExecer, query string, args ...interface{}) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("query ids", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scan id", err)
		}
		ids = append(ids, id)
	}
	return ids, wrapDBError("iterate ids", rows.Err())
}
