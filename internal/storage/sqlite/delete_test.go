package sqlite

import (
	"context"
	"testing"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// Scenario C: deleting a parent removes its subissues.
func TestDeleteParentRemovesSubissues(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	p := mustCreate(t, store, "P", types.PriorityMedium)
	s1 := mustCreateSub(t, store, p, "S1")
	s2 := mustCreateSub(t, store, p, "S2")

	deleted, err := store.DeleteIssue(ctx, p)
	if err != nil || !deleted {
		t.Fatalf("DeleteIssue = %v, %v", deleted, err)
	}

	for _, id := range []int64{p, s1, s2} {
		issue, err := store.GetIssue(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if issue != nil {
			t.Errorf("issue #%d still exists after delete", id)
		}
	}
}

func TestDeleteMissingIssueReturnsFalse(t *testing.T) {
	store := newTestStore(t, "")
	deleted, err := store.DeleteIssue(context.Background(), 31337)
	if err != nil || deleted {
		t.Errorf("DeleteIssue = %v, %v; want false, nil", deleted, err)
	}
}

func TestDeleteCascadeLeavesNoReferences(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	root := mustCreate(t, store, "root", types.PriorityHigh)
	child := mustCreateSub(t, store, root, "child")
	grandchild := mustCreateSub(t, store, child, "grandchild")
	survivor := mustCreate(t, store, "survivor", types.PriorityLow)

	subtree := []int64{root, child, grandchild}
	for _, id := range subtree {
		if _, err := store.AddLabel(ctx, id, "doomed"); err != nil {
			t.Fatal(err)
		}
		if _, err := store.AddComment(ctx, id, "note"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.AddLabel(ctx, survivor, "kept"); err != nil {
		t.Fatal(err)
	}

	// edges in both directions between the subtree and the survivor
	if _, err := store.AddDependency(ctx, survivor, grandchild); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddDependency(ctx, child, survivor); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddRelation(ctx, survivor, root); err != nil {
		t.Fatal(err)
	}

	m, err := store.CreateMilestone(ctx, "v1", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{grandchild, survivor} {
		if _, err := store.AddIssueToMilestone(ctx, m, id); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.StartTimer(ctx, child); err != nil {
		t.Fatal(err)
	}
	if _, err := store.StopTimer(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.StartTimer(ctx, grandchild); err != nil {
		t.Fatal(err)
	}

	sess, err := store.StartSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetSessionIssue(ctx, sess, grandchild); err != nil {
		t.Fatal(err)
	}

	if deleted, err := store.DeleteIssue(ctx, root); err != nil || !deleted {
		t.Fatalf("DeleteIssue = %v, %v", deleted, err)
	}

	inClause, args := buildSQLInClause(subtree)
	checks := map[string]string{
		"labels":           `SELECT COUNT(*) FROM labels WHERE issue_id IN (` + inClause + `)`,
		"comments":         `SELECT COUNT(*) FROM comments WHERE issue_id IN (` + inClause + `)`,
		"blocker edges":    `SELECT COUNT(*) FROM dependencies WHERE blocker_id IN (` + inClause + `)`,
		"blocked edges":    `SELECT COUNT(*) FROM dependencies WHERE blocked_id IN (` + inClause + `)`,
		"relations a":      `SELECT COUNT(*) FROM relations WHERE issue_a IN (` + inClause + `)`,
		"relations b":      `SELECT COUNT(*) FROM relations WHERE issue_b IN (` + inClause + `)`,
		"milestone rows":   `SELECT COUNT(*) FROM milestone_issues WHERE issue_id IN (` + inClause + `)`,
		"time entries":     `SELECT COUNT(*) FROM time_entries WHERE issue_id IN (` + inClause + `)`,
		"active timer":     `SELECT COUNT(*) FROM active_timer WHERE issue_id IN (` + inClause + `)`,
		"session pointers": `SELECT COUNT(*) FROM sessions WHERE active_issue_id IN (` + inClause + `)`,
		"issues":           `SELECT COUNT(*) FROM issues WHERE id IN (` + inClause + `)`,
	}
	for what, query := range checks {
		var n int
		if err := store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", what, err)
		}
		if n != 0 {
			t.Errorf("%s: %d rows still reference the deleted subtree", what, n)
		}
	}

	// The session survives with its pointer cleared.
	current, err := store.GetCurrentSession(ctx)
	if err != nil || current == nil || current.ID != sess {
		t.Fatalf("GetCurrentSession = %v, %v", current, err)
	}
	if current.ActiveIssueID != nil {
		t.Errorf("session still points at #%d", *current.ActiveIssueID)
	}

	// The timer on the deleted grandchild is gone.
	state, err := store.GetTimerState(ctx)
	if err != nil || state.Running {
		t.Errorf("timer state = %+v, %v; want idle", state, err)
	}

	// The survivor keeps its own data and is no longer blocked.
	labels, _ := store.GetLabels(ctx, survivor)
	if len(labels) != 1 || labels[0] != "kept" {
		t.Errorf("survivor labels = %v", labels)
	}
	ready, _ := store.GetReadyIssues(ctx)
	if got := issueIDs(ready); !equalIDs(got, []int64{survivor}) {
		t.Errorf("ready = %v, want [%d]", got, survivor)
	}
	progress, err := store.GetMilestoneProgress(ctx, m)
	if err != nil || progress.Total != 1 {
		t.Errorf("milestone progress = %+v, %v; want total 1", progress, err)
	}

	list, _ := store.ListIssues(ctx, types.IssueFilter{Status: types.StatusAll})
	if got := issueIDs(list); !equalIDs(got, []int64{survivor}) {
		t.Errorf("ListIssues = %v, want [%d]", got, survivor)
	}
}

func TestDeleteSubissueKeepsParent(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	p := mustCreate(t, store, "P", types.PriorityMedium)
	s1 := mustCreateSub(t, store, p, "S1")
	s2 := mustCreateSub(t, store, p, "S2")

	if deleted, err := store.DeleteIssue(ctx, s1); err != nil || !deleted {
		t.Fatalf("DeleteIssue = %v, %v", deleted, err)
	}
	subs, _ := store.GetSubissues(ctx, p)
	if got := issueIDs(subs); !equalIDs(got, []int64{s2}) {
		t.Errorf("GetSubissues = %v, want [%d]", got, s2)
	}
}

func TestDeleteWideSubtree(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	root := mustCreate(t, store, "root", types.PriorityMedium)
	children := seedIssues(t, store, 1000, &root, "")
	// one grandchild level so the walk crosses more than one batch of parents
	grandchildren := seedIssues(t, store, 300, &children[len(children)-1], "")
	survivor := mustCreate(t, store, "survivor", types.PriorityLow)

	// Both id lists of the dependency and relation deletes carry every batch.
	if _, err := store.db.ExecContext(ctx, `
		INSERT INTO dependencies (blocker_id, blocked_id)
		SELECT id, ? FROM issues WHERE parent_id = ?
	`, survivor, root); err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.ExecContext(ctx, `
		INSERT INTO labels (issue_id, label) SELECT id, 'bulk' FROM issues WHERE id != ?
	`, survivor); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteIssue(ctx, root)
	if err != nil || !deleted {
		t.Fatalf("DeleteIssue = %v, %v", deleted, err)
	}

	var remaining, labels, edges int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues`).Scan(&remaining); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels`).Scan(&labels); err != nil {
		t.Fatal(err)
	}
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies`).Scan(&edges); err != nil {
		t.Fatal(err)
	}
	if remaining != 1 || labels != 0 || edges != 0 {
		t.Errorf("after delete: %d issues, %d labels, %d edges; want 1, 0, 0", remaining, labels, edges)
	}
	if issue, _ := store.GetIssue(ctx, grandchildren[0]); issue != nil {
		t.Errorf("grandchild #%d survived", grandchildren[0])
	}

	ready, err := store.GetReadyIssues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := issueIDs(ready); !equalIDs(got, []int64{survivor}) {
		t.Errorf("ready = %v, want [%d]", got, survivor)
	}
}
