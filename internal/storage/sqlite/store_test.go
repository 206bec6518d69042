package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

// writeLegacyStore creates a database file the way an older release left it.
func writeLegacyStore(t *testing.T, ddl string, version int) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec(ddl)
	require.NoError(t, err, "legacy fixture")
	_, err = db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	require.NoError(t, err)
	return dbPath
}

const legacyFlatSchema = `
CREATE TABLE issues (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'medium',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    closed_at TEXT
);
CREATE TABLE labels (issue_id INTEGER NOT NULL, label TEXT NOT NULL, PRIMARY KEY (issue_id, label));
CREATE TABLE dependencies (blocker_id INTEGER NOT NULL, blocked_id INTEGER NOT NULL, PRIMARY KEY (blocker_id, blocked_id));
CREATE TABLE comments (id INTEGER PRIMARY KEY AUTOINCREMENT, issue_id INTEGER NOT NULL, content TEXT NOT NULL, created_at TEXT NOT NULL);
CREATE TABLE sessions (id INTEGER PRIMARY KEY AUTOINCREMENT, started_at TEXT NOT NULL, ended_at TEXT, active_issue_id INTEGER, handoff_notes TEXT);
CREATE TABLE time_entries (id INTEGER PRIMARY KEY AUTOINCREMENT, issue_id INTEGER NOT NULL, started_at TEXT NOT NULL, ended_at TEXT, duration_seconds INTEGER);
INSERT INTO issues (title, status, priority, created_at, updated_at)
VALUES ('from the old days', 'open', 'high', '2024-05-01 10:00:00', '2024-05-01 10:00:00');
INSERT INTO labels (issue_id, label) VALUES (1, 'legacy');
`

func TestFreshStoreIsAtCurrentVersion(t *testing.T) {
	store := newTestStore(t, "")
	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
	assert.Equal(t, 4, CurrentSchemaVersion)
	assert.NoError(t, verifySchema(context.Background(), store.db))
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := New(ctx, dbPath)
	require.NoError(t, err)
	id, err := first.CreateIssue(ctx, "persisted", nil, types.PriorityCritical)
	require.NoError(t, err)
	require.NoError(t, first.StartTimer(ctx, id))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "Close is idempotent")
	assert.True(t, first.IsClosed())

	second := newTestStore(t, dbPath)
	issue, err := second.GetIssue(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "persisted", issue.Title)

	state, err := second.GetTimerState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Running)
	assert.Equal(t, id, state.IssueID)
	assert.Equal(t, dbPath, second.Path())
}

func TestOpenUnversionedFlatStore(t *testing.T) {
	dbPath := writeLegacyStore(t, legacyFlatSchema, 0)
	store := newTestStore(t, dbPath)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	old, err := store.GetIssue(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.Nil(t, old.ParentID)
	assert.Equal(t, 2024, old.CreatedAt.Year(), "space-separated timestamps still parse")

	labels, err := store.GetLabels(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, labels)

	child, err := store.CreateSubissue(ctx, 1, "new child", nil, types.PriorityLow)
	require.NoError(t, err)
	subs, err := store.GetSubissues(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{child}, issueIDs(subs))
}

func TestOpenLegacyStoreMovesRunningTimer(t *testing.T) {
	ddl := strings.Replace(legacyFlatSchema, "closed_at TEXT\n);",
		"closed_at TEXT,\n    parent_id INTEGER\n);", 1) + `
INSERT INTO issues (title, status, priority, created_at, updated_at)
VALUES ('second', 'open', 'low', '2025-01-01T09:00:00+00:00', '2025-01-01T09:00:00+00:00');
INSERT INTO time_entries (issue_id, started_at, ended_at, duration_seconds)
VALUES (1, '2024-12-31T10:00:00+00:00', '2024-12-31T10:10:00+00:00', 600);
INSERT INTO time_entries (issue_id, started_at) VALUES (1, '2025-01-01T10:00:00+00:00');
INSERT INTO time_entries (issue_id, started_at) VALUES (2, '2025-01-01T11:00:00+00:00');
`
	dbPath := writeLegacyStore(t, ddl, legacyVersion)
	store := newTestStore(t, dbPath)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	state, err := store.GetTimerState(ctx)
	require.NoError(t, err)
	require.True(t, state.Running, "newest open entry becomes the running timer")
	assert.Equal(t, int64(2), state.IssueID)
	assert.Equal(t, 11, state.StartedAt.Hour())

	var open int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM time_entries WHERE ended_at IS NULL`).Scan(&open))
	assert.Zero(t, open, "stray open entries are closed")

	entries, err := store.GetTimeEntries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	total, err := store.GetTotalTime(ctx, 1)
	require.NoError(t, err)
	assert.Greater(t, total, int64(600), "the stray entry's running time is kept")

	// the store is fully usable after the upgrade
	_, err = store.CreateMilestone(ctx, "post-upgrade", nil)
	require.NoError(t, err)
	_, err = store.AddRelation(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.StopTimer(ctx)
	require.NoError(t, err)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	id := mustCreate(t, store, "survivor", types.PriorityMedium)

	require.NoError(t, setUserVersion(ctx, store.db, 0))
	require.NoError(t, RunMigrations(ctx, store.db))
	require.NoError(t, RunMigrations(ctx, store.db))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	issue, err := store.GetIssue(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, issue)
}

func TestListMigrationsIsOrdered(t *testing.T) {
	list := ListMigrations()
	require.NotEmpty(t, list)
	for i, m := range list {
		assert.Equal(t, i+1, m.Version, m.Name)
		assert.NotNil(t, m.Func, m.Name)
	}
	list[0].Name = "mutated"
	assert.NotEqual(t, "mutated", ListMigrations()[0].Name, "ListMigrations returns a copy")
}

func TestSchemaProbeRepairsMissingTable(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `DROP TABLE relations`)
	require.NoError(t, err)

	err = verifySchema(ctx, store.db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relations")

	require.NoError(t, initSchema(ctx, store.db))
	assert.NoError(t, verifySchema(ctx, store.db))
}

func TestConcurrentCreatesAllSucceed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrent test in short mode")
	}
	store := newTestStore(t, "")
	ctx := context.Background()

	const workers, perWorker = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := store.CreateIssue(ctx, fmt.Sprintf("w%d-%d", w, j), nil, types.PriorityLow); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent create: %v", err)
	}
	assert.Equal(t, workers*perWorker, countIssues(t, store))
}

func TestConcurrentTimerStartsAdmitOne(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrent test in short mode")
	}
	store := newTestStore(t, "")
	ctx := context.Background()

	const n = 8
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = mustCreate(t, store, fmt.Sprintf("task %d", i), types.PriorityMedium)
	}

	var (
		wg        sync.WaitGroup
		started   atomic.Int64
		conflicts atomic.Int64
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			err := store.StartTimer(ctx, id)
			switch {
			case err == nil:
				started.Add(1)
			case errors.Is(err, storage.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("StartTimer(%d): %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int64(1), started.Load())
	assert.Equal(t, int64(n-1), conflicts.Load())
}
