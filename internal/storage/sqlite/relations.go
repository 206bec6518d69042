package sqlite

import (
	"context"
	"database/sql"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// Relations are undirected. Each pair is stored once, smaller id first.
func orderPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// AddRelation links two distinct issues as related.
// Returns false if they were already related.
func (s *SQLiteStorage) AddRelation(ctx context.Context, issueID, relatedID int64) (bool, error) {
	if issueID == relatedID {
		return false, invalidf("issue #%d cannot be related to itself", issueID)
	}

	added := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		for _, id := range []int64{issueID, relatedID} {
			exists, err := issueExists(ctx, conn, id)
			if err != nil {
				return err
			}
			if !exists {
				return notFoundf("issue #%d", id)
			}
		}

		a, b := orderPair(issueID, relatedID)
		res, err := conn.ExecContext(ctx, `
			INSERT OR IGNORE INTO relations (issue_a, issue_b, created_at) VALUES (?, ?, ?)
		`, a, b, formatTime(now()))
		if err != nil {
			return wrapDBErrorf(err, "relate #%d and #%d", a, b)
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

// RemoveRelation unlinks two issues. Returns false if they were not related.
func (s *SQLiteStorage) RemoveRelation(ctx context.Context, issueID, relatedID int64) (bool, error) {
	a, b := orderPair(issueID, relatedID)
	res, err := s.db.ExecContext(ctx, `DELETE FROM relations WHERE issue_a = ? AND issue_b = ?`, a, b)
	if err != nil {
		return false, wrapDBErrorf(err, "unrelate #%d and #%d", a, b)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// GetRelatedIssues returns the issues related to issueID, ascending by id.
func (s *SQLiteStorage) GetRelatedIssues(ctx context.Context, issueID int64) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		WHERE i.id IN (
			SELECT issue_b FROM relations WHERE issue_a = ?
			UNION
			SELECT issue_a FROM relations WHERE issue_b = ?
		)
		ORDER BY i.id ASC
	`, issueID, issueID)
	if err != nil {
		return nil, wrapDBErrorf(err, "related issues of #%d", issueID)
	}
	return scanIssues(rows)
}
