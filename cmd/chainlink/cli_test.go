package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

// runCLI executes the root command with args against the database at path.
func runCLI(t *testing.T, path string, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--db", path, "--no-color"}, args...))
	err := rootCmd.Execute()
	if err != nil {
		closeStore()
	}
	return err
}

// resetFlags restores every flag to its default; cobra keeps values between
// Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func openForCheck(t *testing.T, path string) *sqlite.SQLiteStorage {
	t.Helper()
	s, err := sqlite.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCLIIssueWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".chainlink", "issues.db")
	t.Setenv("CHAINLINK_EVENTS_LOG", "false")

	require.NoError(t, runCLI(t, path, "init"))
	require.NoError(t, runCLI(t, path, "create", "Write parser", "-p", "high"))
	require.NoError(t, runCLI(t, path, "create", "Crash on empty input", "--template", "bug", "-p", "medium"))
	require.NoError(t, runCLI(t, path, "subissue", "1", "Tokenizer", "-p", "low"))
	require.NoError(t, runCLI(t, path, "block", "2", "1"))
	require.NoError(t, runCLI(t, path, "label", "1", "core"))
	require.NoError(t, runCLI(t, path, "comment", "1", "started on this"))

	s := openForCheck(t, path)
	ctx := context.Background()

	bug, err := s.GetIssue(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, bug)
	assert.Equal(t, types.PriorityHigh, bug.Priority, "bug template priority applies over the default")
	require.NotNil(t, bug.Description)

	labels, err := s.GetLabels(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"bug"}, labels)

	sub, err := s.GetSubissues(ctx, 1)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, "Tokenizer", sub[0].Title)

	blockers, err := s.GetBlockers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, blockers)
	require.NoError(t, s.Close())

	// The store rejects what the CLI passes through.
	assert.Error(t, runCLI(t, path, "block", "3", "3"))
	assert.Error(t, runCLI(t, path, "show", "99"))
	assert.Error(t, runCLI(t, path, "create", "x", "-p", "urgent"))
	assert.Error(t, runCLI(t, path, "create", "x", "-p", "High"), "priority names are case-sensitive")

	// Non-interactive delete needs --force.
	assert.Error(t, runCLI(t, path, "delete", "1"))
	require.NoError(t, runCLI(t, path, "delete", "1", "--force"))

	s = openForCheck(t, path)
	gone, err := s.GetIssue(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, gone, "subissue is removed with its parent")
}

func TestCLITimerAndSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".chainlink", "issues.db")

	require.NoError(t, runCLI(t, path, "init"))
	require.NoError(t, runCLI(t, path, "create", "Timed work"))
	require.NoError(t, runCLI(t, path, "create", "Other work"))

	require.NoError(t, runCLI(t, path, "start", "1"))
	assert.Error(t, runCLI(t, path, "start", "2"), "only one timer may run")
	require.NoError(t, runCLI(t, path, "stop"))
	assert.Error(t, runCLI(t, path, "stop"), "nothing left to stop")

	require.NoError(t, runCLI(t, path, "session", "start"))
	assert.Error(t, runCLI(t, path, "session", "start"), "only one session may be open")
	require.NoError(t, runCLI(t, path, "session", "work", "2"))
	require.NoError(t, runCLI(t, path, "session", "end", "--notes", "pick up #2"))

	s := openForCheck(t, path)
	ctx := context.Background()

	entries, err := s.GetTimeEntries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	last, err := s.GetLastSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.NotNil(t, last.HandoffNotes)
	assert.Equal(t, "pick up #2", *last.HandoffNotes)
	require.NotNil(t, last.ActiveIssueID)
	assert.Equal(t, int64(2), *last.ActiveIssueID)

	assert.FileExists(t, filepath.Join(filepath.Dir(path), "events.log"))
}
