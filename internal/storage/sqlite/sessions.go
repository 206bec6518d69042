package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

const sessionColumns = `id, started_at, ended_at, active_issue_id, handoff_notes`

func scanSession(r rowScanner) (*types.Session, error) {
	var (
		sess      types.Session
		startedAt string
		endedAt   sql.NullString
		issueID   sql.NullInt64
		notes     sql.NullString
	)
	if err := r.Scan(&sess.ID, &startedAt, &endedAt, &issueID, &notes); err != nil {
		return nil, err
	}
	sess.StartedAt = parseTimeString(startedAt)
	sess.EndedAt = parseNullableTimeString(endedAt)
	sess.ActiveIssueID = nullInt64Ptr(issueID)
	sess.HandoffNotes = nullStringPtr(notes)
	return &sess, nil
}

// StartSession opens a new work session. Only one session may be open at a
// time; starting a second one fails with storage.ErrConflict.
func (s *SQLiteStorage) StartSession(ctx context.Context) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		var openID int64
		err := conn.QueryRowContext(ctx, `
			SELECT id FROM sessions WHERE ended_at IS NULL ORDER BY id DESC LIMIT 1
		`).Scan(&openID)
		switch {
		case err == nil:
			return fmt.Errorf("session #%d is still open: %w", openID, storage.ErrConflict)
		case !errors.Is(err, sql.ErrNoRows):
			return wrapDBError("find open session", err)
		}

		res, err := conn.ExecContext(ctx, `INSERT INTO sessions (started_at) VALUES (?)`, formatTime(now()))
		if err != nil {
			return wrapDBError("insert session", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return wrapDBError("get session id", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// EndSession closes an open session and stores its handoff notes.
// Returns false if the session does not exist or has already ended.
func (s *SQLiteStorage) EndSession(ctx context.Context, id int64, notes *string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = ?, handoff_notes = ?
		WHERE id = ? AND ended_at IS NULL
	`, formatTime(now()), optString(notes), id)
	if err != nil {
		return false, wrapDBErrorf(err, "end session #%d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBError("rows affected", err)
	}
	return n > 0, nil
}

// GetCurrentSession returns the most recently started open session, or nil.
func (s *SQLiteStorage) GetCurrentSession(ctx context.Context) (*types.Session, error) {
	return s.getSession(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE ended_at IS NULL ORDER BY id DESC LIMIT 1
	`)
}

// GetLastSession returns the most recently started ended session, or nil.
// Its handoff notes are what the next session picks up from.
func (s *SQLiteStorage) GetLastSession(ctx context.Context) (*types.Session, error) {
	return s.getSession(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE ended_at IS NOT NULL ORDER BY id DESC LIMIT 1
	`)
}

func (s *SQLiteStorage) getSession(ctx context.Context, query string) (*types.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError("get session", err)
	}
	return sess, nil
}

// SetSessionIssue points a session at the issue being worked on.
// Returns false if the session does not exist.
func (s *SQLiteStorage) SetSessionIssue(ctx context.Context, sessionID, issueID int64) (bool, error) {
	updated := false
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		exists, err := issueExists(ctx, conn, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundf("issue #%d", issueID)
		}

		res, err := conn.ExecContext(ctx, `
			UPDATE sessions SET active_issue_id = ? WHERE id = ?
		`, issueID, sessionID)
		if err != nil {
			return wrapDBErrorf(err, "set issue on session #%d", sessionID)
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
