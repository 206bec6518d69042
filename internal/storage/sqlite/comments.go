package sqlite

import (
	"context"
	"database/sql"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// AddComment appends a comment to an issue and returns the comment id.
func (s *SQLiteStorage) AddComment(ctx context.Context, issueID int64, content string) (int64, error) {
	if content == "" {
		return 0, invalidf("comment cannot be empty")
	}

	var id int64
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		exists, err := issueExists(ctx, conn, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundf("issue #%d", issueID)
		}

		res, err := conn.ExecContext(ctx, `
			INSERT INTO comments (issue_id, content, created_at) VALUES (?, ?, ?)
		`, issueID, content, formatTime(now()))
		if err != nil {
			return wrapDBErrorf(err, "insert comment on #%d", issueID)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return wrapDBError("get comment id", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetComments returns an issue's comments, oldest first.
func (s *SQLiteStorage) GetComments(ctx context.Context, issueID int64) ([]*types.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_id, content, created_at
		FROM comments
		WHERE issue_id = ?
		ORDER BY id ASC
	`, issueID)
	if err != nil {
		return nil, wrapDBErrorf(err, "get comments for #%d", issueID)
	}
	defer func() { _ = rows.Close() }()

	var comments []*types.Comment
	for rows.Next() {
		var (
			c         types.Comment
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.IssueID, &c.Content, &createdAt); err != nil {
			return nil, wrapDBError("scan comment", err)
		}
		c.CreatedAt = parseTimeString(createdAt)
		comments = append(comments, &c)
	}
	return comments, wrapDBError("iterate comments", rows.Err())
}
