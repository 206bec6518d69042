package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

// The tracker has one global timer. Its running state is the single row
// id = 1 of active_timer: no row means idle. time_entries only ever holds
// finished stretches of work.

// StartTimer starts the timer on issueID.
func (s *SQLiteStorage) StartTimer(ctx context.Context, issueID int64) error {
	return s.withTx(ctx, func(conn *sql.Conn) error {
		exists, err := issueExists(ctx, conn, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundf("issue #%d", issueID)
		}

		var activeID int64
		err = conn.QueryRowContext(ctx, `SELECT issue_id FROM active_timer WHERE id = 1`).Scan(&activeID)
		switch {
		case err == nil:
			return &storage.TimerConflictError{ActiveIssueID: activeID, SameIssue: activeID == issueID}
		case !errors.Is(err, sql.ErrNoRows):
			return wrapDBError("read active timer", err)
		}

		_, err = conn.ExecContext(ctx, `
			INSERT INTO active_timer (id, issue_id, started_at) VALUES (1, ?, ?)
		`, issueID, formatTime(now()))
		if err != nil {
			return wrapDBErrorf(err, "start timer on #%d", issueID)
		}
		return nil
	})
}

// StopTimer stops the running timer, records the finished entry and returns
// the elapsed seconds together with the issue's new total.
func (s *SQLiteStorage) StopTimer(ctx context.Context) (*types.TimerStop, error) {
	var result *types.TimerStop
	err := s.withTx(ctx, func(conn *sql.Conn) error {
		var (
			issueID   int64
			startedAt string
		)
		err := conn.QueryRowContext(ctx, `
			SELECT issue_id, started_at FROM active_timer WHERE id = 1
		`).Scan(&issueID, &startedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNoActiveTimer
		}
		if err != nil {
			return wrapDBError("read active timer", err)
		}

		start := parseTimeString(startedAt)
		end := now()
		elapsed := elapsedSeconds(start, end)

		_, err = conn.ExecContext(ctx, `
			INSERT INTO time_entries (issue_id, started_at, ended_at, duration_seconds)
			VALUES (?, ?, ?, ?)
		`, issueID, startedAt, formatTime(end), elapsed)
		if err != nil {
			return wrapDBErrorf(err, "record time entry for #%d", issueID)
		}
		if _, err := conn.ExecContext(ctx, `DELETE FROM active_timer WHERE id = 1`); err != nil {
			return wrapDBError("clear active timer", err)
		}

		total, err := totalTime(ctx, conn, issueID)
		if err != nil {
			return err
		}
		result = &types.TimerStop{IssueID: issueID, ElapsedSeconds: elapsed, TotalSeconds: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// elapsedSeconds is whole seconds from start to end, never negative.
// An unreadable start time counts as no time.
func elapsedSeconds(start, end time.Time) int64 {
	if start.IsZero() {
		return 0
	}
	secs := int64(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// GetTimerState reports whether the timer is running, on what and for how long.
func (s *SQLiteStorage) GetTimerState(ctx context.Context) (*types.TimerState, error) {
	var (
		issueID   int64
		startedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT issue_id, started_at FROM active_timer WHERE id = 1
	`).Scan(&issueID, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.TimerState{}, nil
	}
	if err != nil {
		return nil, wrapDBError("read active timer", err)
	}

	start := parseTimeString(startedAt)
	return &types.TimerState{
		Running:        true,
		IssueID:        issueID,
		StartedAt:      start,
		ElapsedSeconds: elapsedSeconds(start, now()),
	}, nil
}

// GetTotalTime sums the finished time entries of an issue, in seconds.
func (s *SQLiteStorage) GetTotalTime(ctx context.Context, issueID int64) (int64, error) {
	return totalTime(ctx, s.db, issueID)
}

func totalTime(ctx context.Context, q dbExecer, issueID int64) (int64, error) {
	var total int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_seconds), 0)
		FROM time_entries
		WHERE issue_id = ? AND duration_seconds IS NOT NULL
	`, issueID).Scan(&total)
	if err != nil {
		return 0, wrapDBErrorf(err, "total time for #%d", issueID)
	}
	return total, nil
}

// GetTimeEntries returns the finished time entries of an issue, oldest first.
func (s *SQLiteStorage) GetTimeEntries(ctx context.Context, issueID int64) ([]*types.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_id, started_at, ended_at, COALESCE(duration_seconds, 0)
		FROM time_entries
		WHERE issue_id = ? AND ended_at IS NOT NULL
		ORDER BY id ASC
	`, issueID)
	if err != nil {
		return nil, wrapDBErrorf(err, "time entries for #%d", issueID)
	}
	defer func() { _ = rows.Close() }()

	var entries []*types.TimeEntry
	for rows.Next() {
		var (
			e                  types.TimeEntry
			startedAt, endedAt string
		)
		if err := rows.Scan(&e.ID, &e.IssueID, &startedAt, &endedAt, &e.DurationSeconds); err != nil {
			return nil, wrapDBError("scan time entry", err)
		}
		e.StartedAt = parseTimeString(startedAt)
		e.EndedAt = parseTimeString(endedAt)
		entries = append(entries, &e)
	}
	return entries, wrapDBError("iterate time entries", rows.Err())
}
