package sqlite

import (
	"context"
	"database/sql"
)

// AddLabel attaches label to an issue. Returns false if it was already there.
func (s *SQLiteStorage) AddLabel(ctx context.Context, issueID int64, label string) (bool, error) {
	if label == "" {
		return false, invalidf("label cannot be empty")
	}

	added := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		exists, err := issueExists(ctx, conn, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundf("issue #%d", issueID)
		}

		res, err := conn.ExecContext(ctx, `
			INSERT OR IGNORE INTO labels (issue_id, label) VALUES (?, ?)
		`, issueID, label)
		if err != nil {
			return wrapDBErrorf(err, "add label %q to #%d", label, issueID)
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

// RemoveLabel detaches label from an issue. Returns false if it was not there.
func (s *SQLiteStorage) RemoveLabel(ctx context.Context, issueID int64, label string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE issue_id = ? AND label = ?`, issueID, label)
	if err != nil {
		return false, wrapDBErrorf(err, "remove label %q from #%d", label, issueID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// GetLabels returns the labels on an issue in lexical order.
func (s *SQLiteStorage) GetLabels(ctx context.Context, issueID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label FROM labels WHERE issue_id = ? ORDER BY label
	`, issueID)
	if err != nil {
		return nil, wrapDBErrorf(err, "get labels for #%d", issueID)
	}
	defer func() { _ = rows.Close() }()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, wrapDBError("scan label", err)
		}
		labels = append(labels, label)
	}
	return labels, wrapDBError("iterate labels", rows.Err())
}
