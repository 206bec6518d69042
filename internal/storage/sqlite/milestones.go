package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

const milestoneColumns = `id, name, description, status, created_at, closed_at`

func scanMilestone(r rowScanner) (*types.Milestone, error) {
	var (
		m           types.Milestone
		description sql.NullString
		status      string
		createdAt   string
		closedAt    sql.NullString
	)
	if err := r.Scan(&m.ID, &m.Name, &description, &status, &createdAt, &closedAt); err != nil {
		return nil, err
	}
	m.Description = nullStringPtr(description)
	m.Status = types.MilestoneStatus(status)
	m.CreatedAt = parseTimeString(createdAt)
	m.ClosedAt = parseNullableTimeString(closedAt)
	return &m, nil
}

func milestoneExists(ctx context.Context, q dbExecer, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM milestones WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, wrapDBErrorf(err, "check milestone #%d", id)
	}
	return exists, nil
}

// CreateMilestone creates an open milestone and returns its id.
func (s *SQLiteStorage) CreateMilestone(ctx context.Context, name string, description *string) (int64, error) {
	if name == "" {
		return 0, invalidf("milestone name is required")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO milestones (name, description, status, created_at) VALUES (?, ?, ?, ?)
	`, name, optString(description), string(types.MilestoneOpen), formatTime(now()))
	if err != nil {
		return 0, wrapDBError("insert milestone", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapDBError("get milestone id", err)
	}
	return id, nil
}

// GetMilestone returns the milestone with id, or nil if there is none.
func (s *SQLiteStorage) GetMilestone(ctx context.Context, id int64) (*types.Milestone, error) {
	m, err := scanMilestone(s.db.QueryRowContext(ctx, `
		SELECT `+milestoneColumns+` FROM milestones WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "get milestone #%d", id)
	}
	return m, nil
}

// ListMilestones returns milestones, newest first. status "" or "all" lists
// every milestone; otherwise it must match exactly.
func (s *SQLiteStorage) ListMilestones(ctx context.Context, status string) ([]*types.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones`
	var args []interface{}
	if status != "" && status != types.StatusAll {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list milestones", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, wrapDBError("scan milestone", err)
		}
		out = append(out, m)
	}
	return out, wrapDBError("iterate milestones", rows.Err())
}

// AddIssueToMilestone adds an issue to a milestone.
// Returns false if the issue was already a member.
func (s *SQLiteStorage) AddIssueToMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	added := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		ok, err := milestoneExists(ctx, conn, milestoneID)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundf("milestone #%d", milestoneID)
		}
		ok, err = issueExists(ctx, conn, issueID)
		if err != nil {
			return err
		}
		if !ok {
			return notFoundf("issue #%d", issueID)
		}

		res, err := conn.ExecContext(ctx, `
			INSERT OR IGNORE INTO milestone_issues (milestone_id, issue_id) VALUES (?, ?)
		`, milestoneID, issueID)
		if err != nil {
			return wrapDBErrorf(err, "add #%d to milestone #%d", issueID, milestoneID)
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

// RemoveIssueFromMilestone removes an issue from a milestone.
// Returns false if it was not a member.
func (s *SQLiteStorage) RemoveIssueFromMilestone(ctx context.Context, milestoneID, issueID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM milestone_issues WHERE milestone_id = ? AND issue_id = ?
	`, milestoneID, issueID)
	if err != nil {
		return false, wrapDBErrorf(err, "remove #%d from milestone #%d", issueID, milestoneID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// GetMilestoneIssues returns a milestone's member issues, ascending by id.
func (s *SQLiteStorage) GetMilestoneIssues(ctx context.Context, milestoneID int64) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues i
		JOIN milestone_issues mi ON mi.issue_id = i.id
		WHERE mi.milestone_id = ?
		ORDER BY i.id ASC
	`, milestoneID)
	if err != nil {
		return nil, wrapDBErrorf(err, "get issues of milestone #%d", milestoneID)
	}
	return scanIssues(rows)
}

// GetMilestoneProgress counts closed member issues. Archived members count
// toward the total only.
func (s *SQLiteStorage) GetMilestoneProgress(ctx context.Context, milestoneID int64) (*types.Progress, error) {
	ok, err := milestoneExists(ctx, s.db, milestoneID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFoundf("milestone #%d", milestoneID)
	}

	var p types.Progress
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN i.status = 'closed' THEN 1 ELSE 0 END), 0)
		FROM milestone_issues mi
		JOIN issues i ON i.id = mi.issue_id
		WHERE mi.milestone_id = ?
	`, milestoneID).Scan(&p.Total, &p.Done)
	if err != nil {
		return nil, wrapDBErrorf(err, "progress of milestone #%d", milestoneID)
	}
	return &p, nil
}

// CloseMilestone marks an open milestone closed.
// Returns false if it does not exist or is already closed.
func (s *SQLiteStorage) CloseMilestone(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE milestones SET status = ?, closed_at = ? WHERE id = ? AND status = ?
	`, string(types.MilestoneClosed), formatTime(now()), id, string(types.MilestoneOpen))
	if err != nil {
		return false, wrapDBErrorf(err, "close milestone #%d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// DeleteMilestone removes a milestone and its memberships. Member issues are kept.
func (s *SQLiteStorage) DeleteMilestone(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM milestone_issues WHERE milestone_id = ?`, id); err != nil {
			return wrapDBErrorf(err, "delete memberships of milestone #%d", id)
		}
		res, err := conn.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id)
		if err != nil {
			return wrapDBErrorf(err, "delete milestone #%d", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDBError("rows affected", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}
