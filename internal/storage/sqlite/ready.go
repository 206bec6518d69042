package sqlite

import (
	"context"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// An issue is blocked while at least one of its blockers is open. Closed and
// archived blockers no longer count. Readiness is computed on every call;
// nothing is cached, so a close is visible to the next query.

// GetReadyIssues returns open issues with no open blocker, ascending by id.
func (s *SQLiteStorage) GetReadyIssues(ctx context.Context) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		WHERE i.status = 'open'
		  AND NOT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN issues b ON b.id = d.blocker_id
			WHERE d.blocked_id = i.id AND b.status = 'open'
		  )
		ORDER BY i.id ASC
	`)
	if err != nil {
		return nil, wrapDBError("get ready issues", err)
	}
	return scanIssues(rows)
}

// GetBlockedIssues returns open issues with at least one open blocker, ascending by id.
func (s *SQLiteStorage) GetBlockedIssues(ctx context.Context) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		WHERE i.status = 'open'
		  AND EXISTS (
			SELECT 1 FROM dependencies d
			JOIN issues b ON b.id = d.blocker_id
			WHERE d.blocked_id = i.id AND b.status = 'open'
		  )
		ORDER BY i.id ASC
	`)
	if err != nil {
		return nil, wrapDBError("get blocked issues", err)
	}
	return scanIssues(rows)
}
