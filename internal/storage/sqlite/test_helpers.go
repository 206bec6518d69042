package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// newTestStore creates a file-backed SQLiteStorage in a per-test temp dir.
//
// File-based databases are used instead of ":memory:" because the shared
// in-memory cache would leak state between tests in the same process.
// Pass a dbPath to reopen an existing file.
func newTestStore(t *testing.T, dbPath string) *SQLiteStorage {
	t.Helper()

	if dbPath == "" {
		dbPath = t.TempDir() + "/test.db"
	}

	store, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}

// mustCreate creates a top-level issue or fails the test.
func mustCreate(t *testing.T, s *SQLiteStorage, title string, priority types.Priority) int64 {
	t.Helper()
	id, err := s.CreateIssue(context.Background(), title, nil, priority)
	if err != nil {
		t.Fatalf("CreateIssue(%q) failed: %v", title, err)
	}
	return id
}

// mustCreateSub creates a subissue or fails the test.
func mustCreateSub(t *testing.T, s *SQLiteStorage, parent int64, title string) int64 {
	t.Helper()
	id, err := s.CreateSubissue(context.Background(), parent, title, nil, types.PriorityMedium)
	if err != nil {
		t.Fatalf("CreateSubissue(%d, %q) failed: %v", parent, title, err)
	}
	return id
}

// mustClose closes an issue or fails the test.
func mustClose(t *testing.T, s *SQLiteStorage, id int64) {
	t.Helper()
	ok, err := s.CloseIssue(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("CloseIssue(%d) = %v, %v", id, ok, err)
	}
}

// withFrozenClock pins the store clock for the duration of the test and
// returns a function that moves it forward.
func withFrozenClock(t *testing.T, start time.Time) func(time.Duration) {
	t.Helper()
	orig := now
	current := start.UTC()
	now = func() time.Time { return current }
	t.Cleanup(func() { now = orig })
	return func(d time.Duration) { current = current.Add(d) }
}

func issueIDs(issues []*types.Issue) []int64 {
	ids := make([]int64, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
	}
	return ids
}

func strPtr(s string) *string { return &s }

func priorityPtr(p types.Priority) *types.Priority { return &p }

// seedIssues inserts n issues in one statement and returns their ids in
// ascending order. parentID may be nil; closedAt non-empty marks them closed.
func seedIssues(t *testing.T, s *SQLiteStorage, n int, parentID *int64, closedAt string) []int64 {
	t.Helper()
	ctx := context.Background()

	status, closed := string(types.StatusOpen), interface{}(nil)
	if closedAt != "" {
		status, closed = string(types.StatusClosed), closedAt
	}
	var before int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM issues`).Scan(&before); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := formatTime(now())
	_, err := s.db.ExecContext(ctx, `
		WITH RECURSIVE seq(i) AS (SELECT 1 UNION ALL SELECT i + 1 FROM seq WHERE i < ?)
		INSERT INTO issues (title, status, priority, parent_id, created_at, updated_at, closed_at)
		SELECT 'seeded ' || i, ?, 'medium', ?, ?, ?, ? FROM seq
	`, n, status, optInt64(parentID), ts, ts, closed)
	if err != nil {
		t.Fatalf("seed %d issues: %v", n, err)
	}

	ids, err := queryIDs(ctx, s.db, `SELECT id FROM issues WHERE id > ? ORDER BY id`, before)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("seeded %d issues, want %d", len(ids), n)
	}
	return ids
}
