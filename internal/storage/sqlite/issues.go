package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// issueColumns is the projection every issue query selects, in scanIssue order.
const issueColumns = `i.id, i.title, i.description, i.status, i.priority, i.parent_id, i.created_at, i.updated_at, i.closed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(r rowScanner) (*types.Issue, error) {
	var (
		issue       types.Issue
		description sql.NullString
		parentID    sql.NullInt64
		createdAt   string
		updatedAt   string
		closedAt    sql.NullString
		status      string
		priority    string
	)
	if err := r.Scan(&issue.ID, &issue.Title, &description, &status, &priority,
		&parentID, &createdAt, &updatedAt, &closedAt); err != nil {
		return nil, err
	}
	issue.Description = nullStringPtr(description)
	issue.Status = types.Status(status)
	issue.Priority = types.Priority(priority)
	issue.ParentID = nullInt64Ptr(parentID)
	issue.CreatedAt = parseTimeString(createdAt)
	issue.UpdatedAt = parseTimeString(updatedAt)
	issue.ClosedAt = parseNullableTimeString(closedAt)
	return &issue, nil
}

func scanIssues(rows *sql.Rows) ([]*types.Issue, error) {
	defer func() { _ = rows.Close() }()

	var issues []*types.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, wrapDBError("scan issue", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate issues", err)
	}
	return issues, nil
}

// optString converts an optional string into a driver value.
func optString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// optInt64 converts an optional id into a driver value.
func optInt64(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// issueExists reports whether an issue row with id exists.
func issueExists(ctx context.Context, q dbExecer, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM issues WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, wrapDBErrorf(err, "check issue #%d", id)
	}
	return exists, nil
}

// issueStatus returns the status of issue id, or ErrNotFound.
func issueStatus(ctx context.Context, q dbExecer, id int64) (types.Status, error) {
	var status string
	err := q.QueryRowContext(ctx, `SELECT status FROM issues WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", wrapDBErrorf(err, "issue #%d", id)
	}
	return types.Status(status), nil
}

func getIssue(ctx context.Context, q dbExecer, id int64) (*types.Issue, error) {
	row := q.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues i WHERE i.id = ?`, id)
	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "get issue #%d", id)
	}
	return issue, nil
}

func validateNewIssue(title string, priority types.Priority) error {
	if title == "" {
		return invalidf("title is required")
	}
	if !priority.IsValid() {
		return invalidf("invalid priority %q (want one of %s)", priority, priorityList())
	}
	return nil
}

func priorityList() string {
	names := make([]string, len(types.Priorities))
	for i, p := range types.Priorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// CreateIssue creates a new open, top-level issue and returns its id.
func (s *SQLiteStorage) CreateIssue(ctx context.Context, title string, description *string, priority types.Priority) (int64, error) {
	return s.createIssue(ctx, title, description, priority, nil)
}

func (s *SQLiteStorage) createIssue(ctx context.Context, title string, description *string, priority types.Priority, parentID *int64) (int64, error) {
	if err := validateNewIssue(title, priority); err != nil {
		return 0, err
	}

	var id int64
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		if parentID != nil {
			exists, err := issueExists(ctx, conn, *parentID)
			if err != nil {
				return err
			}
			if !exists {
				return notFoundf("parent issue #%d", *parentID)
			}
		}

		ts := formatTime(now())
		res, err := conn.ExecContext(ctx, `
			INSERT INTO issues (title, description, status, priority, parent_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, title, optString(description), string(types.StatusOpen), string(priority), optInt64(parentID), ts, ts)
		if err != nil {
			return wrapDBError("insert issue", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return wrapDBError("get issue id", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetIssue returns the issue with id, or nil if there is none.
func (s *SQLiteStorage) GetIssue(ctx context.Context, id int64) (*types.Issue, error) {
	return getIssue(ctx, s.db, id)
}

// UpdateIssue applies a patch to title, description and priority.
// updated_at is refreshed on every successful call. Returns false when the
// issue does not exist.
func (s *SQLiteStorage) UpdateIssue(ctx context.Context, id int64, update types.IssueUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, invalidf("nothing to update")
	}

	updated := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		// Validation runs under the write lock alongside the write it guards.
		setClauses := []string{"updated_at = ?"}
		args := []interface{}{formatTime(now())}

		if update.Title != nil {
			if *update.Title == "" {
				return invalidf("title cannot be empty")
			}
			setClauses = append(setClauses, "title = ?")
			args = append(args, *update.Title)
		}
		if update.Description != nil {
			setClauses = append(setClauses, "description = ?")
			args = append(args, *update.Description)
		}
		if update.Priority != nil {
			if !update.Priority.IsValid() {
				return invalidf("invalid priority %q (want one of %s)", *update.Priority, priorityList())
			}
			setClauses = append(setClauses, "priority = ?")
			args = append(args, string(*update.Priority))
		}

		args = append(args, id)
		// #nosec G202 -- setClauses are fixed column names, values are bound
		query := fmt.Sprintf(`UPDATE issues SET %s WHERE id = ?`, strings.Join(setClauses, ", "))
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return wrapDBErrorf(err, "update issue #%d", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDBError("rows affected", err)
		}
		updated = n > 0
		return nil
	})
	return updated, err
}

// CloseIssue moves an open issue to closed and stamps closed_at.
// Returns false when the issue is not open.
func (s *SQLiteStorage) CloseIssue(ctx context.Context, id int64) (bool, error) {
	changed := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		status, err := issueStatus(ctx, conn, id)
		if err != nil {
			return err
		}
		if status != types.StatusOpen {
			return nil
		}
		ts := formatTime(now())
		_, err = conn.ExecContext(ctx, `
			UPDATE issues SET status = ?, closed_at = ?, updated_at = ? WHERE id = ?
		`, string(types.StatusClosed), ts, ts, id)
		if err != nil {
			return wrapDBErrorf(err, "close issue #%d", id)
		}
		changed = true
		return nil
	})
	return changed, err
}

// ReopenIssue moves a closed issue back to open and clears closed_at.
// Archived issues must be unarchived first.
func (s *SQLiteStorage) ReopenIssue(ctx context.Context, id int64) (bool, error) {
	changed := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		status, err := issueStatus(ctx, conn, id)
		if err != nil {
			return err
		}
		switch status {
		case types.StatusOpen:
			return nil
		case types.StatusArchived:
			return invalidf("issue #%d is archived; unarchive it first", id)
		}
		_, err = conn.ExecContext(ctx, `
			UPDATE issues SET status = ?, closed_at = NULL, updated_at = ? WHERE id = ?
		`, string(types.StatusOpen), formatTime(now()), id)
		if err != nil {
			return wrapDBErrorf(err, "reopen issue #%d", id)
		}
		changed = true
		return nil
	})
	return changed, err
}
