package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

func TestAddDependencyIsIdempotent(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityHigh)
	b := mustCreate(t, store, "B", types.PriorityLow)

	added, err := store.AddDependency(ctx, b, a)
	if err != nil || !added {
		t.Fatalf("first AddDependency = %v, %v", added, err)
	}
	added, err = store.AddDependency(ctx, b, a)
	if err != nil || added {
		t.Fatalf("second AddDependency = %v, %v; want false, nil", added, err)
	}

	var edges int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies`).Scan(&edges); err != nil {
		t.Fatal(err)
	}
	if edges != 1 {
		t.Errorf("expected exactly one edge, got %d", edges)
	}
}

func TestAddDependencyErrors(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityHigh)

	if _, err := store.AddDependency(ctx, a, a); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Errorf("self dependency error = %v, want ErrInvalidArgument", err)
	}
	if _, err := store.AddDependency(ctx, a, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing blocker error = %v, want ErrNotFound", err)
	}
	if _, err := store.AddDependency(ctx, 999, a); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing blocked error = %v, want ErrNotFound", err)
	}
}

func TestRemoveDependency(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityHigh)
	b := mustCreate(t, store, "B", types.PriorityLow)

	if removed, err := store.RemoveDependency(ctx, b, a); err != nil || removed {
		t.Errorf("removing absent edge = %v, %v; want false, nil", removed, err)
	}
	if _, err := store.AddDependency(ctx, b, a); err != nil {
		t.Fatal(err)
	}
	if removed, err := store.RemoveDependency(ctx, b, a); err != nil || !removed {
		t.Errorf("RemoveDependency = %v, %v; want true, nil", removed, err)
	}
	ready, _ := store.GetReadyIssues(ctx)
	if len(ready) != 2 {
		t.Errorf("both issues should be ready after removal, got %v", issueIDs(ready))
	}
}

func TestBlockersAndBlockingAreDirect(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityMedium)
	b := mustCreate(t, store, "B", types.PriorityMedium)
	c := mustCreate(t, store, "C", types.PriorityMedium)

	// a blocks b, b blocks c
	for _, e := range [][2]int64{{b, a}, {c, b}} {
		if _, err := store.AddDependency(ctx, e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	blockers, err := store.GetBlockers(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(blockers) != 1 || blockers[0] != b {
		t.Errorf("GetBlockers(c) = %v, want [%d] (no transitive closure)", blockers, b)
	}

	blocking, err := store.GetBlocking(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocking) != 1 || blocking[0] != b {
		t.Errorf("GetBlocking(a) = %v, want [%d]", blocking, b)
	}
}

// Scenario B: a blocked issue becomes ready when its blocker closes.
func TestReadyAfterBlockerCloses(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityHigh)
	c := mustCreate(t, store, "C", types.PriorityMedium)
	if _, err := store.AddDependency(ctx, c, a); err != nil {
		t.Fatal(err)
	}

	ready, _ := store.GetReadyIssues(ctx)
	if ids := issueIDs(ready); len(ids) != 1 || ids[0] != a {
		t.Fatalf("ready = %v, want [%d]", ids, a)
	}
	blocked, _ := store.GetBlockedIssues(ctx)
	if ids := issueIDs(blocked); len(ids) != 1 || ids[0] != c {
		t.Fatalf("blocked = %v, want [%d]", ids, c)
	}

	mustClose(t, store, a)

	ready, _ = store.GetReadyIssues(ctx)
	if ids := issueIDs(ready); len(ids) != 1 || ids[0] != c {
		t.Fatalf("after close ready = %v, want [%d]", ids, c)
	}
	blocked, _ = store.GetBlockedIssues(ctx)
	if len(blocked) != 0 {
		t.Errorf("after close blocked = %v, want none", issueIDs(blocked))
	}
}

func TestReadinessPredicate(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	openBlocker := mustCreate(t, store, "open blocker", types.PriorityLow)
	closedBlocker := mustCreate(t, store, "closed blocker", types.PriorityLow)
	archivedBlocker := mustCreate(t, store, "archived blocker", types.PriorityLow)
	mustClose(t, store, closedBlocker)
	mustClose(t, store, archivedBlocker)
	if _, err := store.ArchiveIssue(ctx, archivedBlocker); err != nil {
		t.Fatal(err)
	}

	blockedByOpen := mustCreate(t, store, "blocked by open", types.PriorityLow)
	blockedByClosed := mustCreate(t, store, "blocked by closed", types.PriorityLow)
	blockedByArchived := mustCreate(t, store, "blocked by archived", types.PriorityLow)
	mixed := mustCreate(t, store, "mixed", types.PriorityLow)
	closedIssue := mustCreate(t, store, "closed, no blockers", types.PriorityLow)
	mustClose(t, store, closedIssue)

	edges := [][2]int64{
		{blockedByOpen, openBlocker},
		{blockedByClosed, closedBlocker},
		{blockedByArchived, archivedBlocker},
		{mixed, closedBlocker},
		{mixed, openBlocker},
	}
	for _, e := range edges {
		if _, err := store.AddDependency(ctx, e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}

	ready, err := store.GetReadyIssues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{openBlocker, blockedByClosed, blockedByArchived}
	if got := issueIDs(ready); !equalIDs(got, want) {
		t.Errorf("ready = %v, want %v", got, want)
	}

	blocked, err := store.GetBlockedIssues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := issueIDs(blocked); !equalIDs(got, []int64{blockedByOpen, mixed}) {
		t.Errorf("blocked = %v, want %v", got, []int64{blockedByOpen, mixed})
	}
}

func TestCycleLeavesParticipantsBlocked(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	a := mustCreate(t, store, "A", types.PriorityMedium)
	b := mustCreate(t, store, "B", types.PriorityMedium)

	if _, err := store.AddDependency(ctx, a, b); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddDependency(ctx, b, a); err != nil {
		t.Fatalf("cycle-closing edge should be accepted: %v", err)
	}

	ready, _ := store.GetReadyIssues(ctx)
	if len(ready) != 0 {
		t.Errorf("cycle members should not be ready, got %v", issueIDs(ready))
	}

	mustClose(t, store, a)
	ready, _ = store.GetReadyIssues(ctx)
	if got := issueIDs(ready); !equalIDs(got, []int64{b}) {
		t.Errorf("closing one member frees the other: ready = %v", got)
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
