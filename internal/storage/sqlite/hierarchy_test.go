package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

func TestCreateSubissue(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	parent := mustCreate(t, store, "Parent", types.PriorityHigh)

	sub1 := mustCreateSub(t, store, parent, "Child 1")
	sub2 := mustCreateSub(t, store, parent, "Child 2")

	child, _ := store.GetIssue(ctx, sub1)
	if child.ParentID == nil || *child.ParentID != parent || !child.IsSubissue() {
		t.Errorf("ParentID = %v, want %d", child.ParentID, parent)
	}

	subs, err := store.GetSubissues(ctx, parent)
	if err != nil {
		t.Fatal(err)
	}
	if got := issueIDs(subs); !equalIDs(got, []int64{sub1, sub2}) {
		t.Errorf("GetSubissues = %v, want [%d %d]", got, sub1, sub2)
	}
}

func TestCreateSubissueMissingParent(t *testing.T) {
	store := newTestStore(t, "")
	_, err := store.CreateSubissue(context.Background(), 404, "Orphan", nil, types.PriorityLow)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetTreeDepthFirst(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	p1 := mustCreate(t, store, "P1", types.PriorityMedium)
	p2 := mustCreate(t, store, "P2", types.PriorityMedium)
	c11 := mustCreateSub(t, store, p1, "C1.1")
	c12 := mustCreateSub(t, store, p1, "C1.2")
	g111 := mustCreateSub(t, store, c11, "G1.1.1")
	c21 := mustCreateSub(t, store, p2, "C2.1")

	// A closed child is still shown; an archived one is not.
	mustClose(t, store, c21)
	archivedChild := mustCreateSub(t, store, p2, "archived")
	mustClose(t, store, archivedChild)
	if _, err := store.ArchiveIssue(ctx, archivedChild); err != nil {
		t.Fatal(err)
	}

	nodes, err := store.GetTree(ctx, "")
	if err != nil {
		t.Fatal(err)
	}

	type entry struct {
		id    int64
		depth int
	}
	// Newest root first, children oldest first.
	want := []entry{{p2, 0}, {c21, 1}, {p1, 0}, {c11, 1}, {g111, 2}, {c12, 1}}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(want))
	}
	for i, n := range nodes {
		if n.Issue.ID != want[i].id || n.Depth != want[i].depth {
			t.Errorf("node %d = (#%d, depth %d), want (#%d, depth %d)",
				i, n.Issue.ID, n.Depth, want[i].id, want[i].depth)
		}
	}
}

func TestGetTreeStatusFiltersRoots(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	open := mustCreate(t, store, "open root", types.PriorityMedium)
	closed := mustCreate(t, store, "closed root", types.PriorityMedium)
	mustClose(t, store, closed)

	nodes, err := store.GetTree(ctx, "closed")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Issue.ID != closed {
		t.Errorf("closed tree = %v", nodes)
	}

	nodes, err = store.GetTree(ctx, "open")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 || nodes[0].Issue.ID != open {
		t.Errorf("open tree = %v", nodes)
	}

	mustClose(t, store, open)
	if _, err := store.ArchiveIssue(ctx, open); err != nil {
		t.Fatal(err)
	}
	for _, status := range []string{"", types.StatusAll, "archived"} {
		nodes, err := store.GetTree(ctx, status)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range nodes {
			if n.Issue.Status == types.StatusArchived {
				t.Errorf("GetTree(%q) included archived #%d", status, n.Issue.ID)
			}
		}
	}
}

func TestGetTreeDeepChainHasNoRecursionLimit(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()

	const depth = 300
	parent := mustCreate(t, store, "root", types.PriorityLow)
	for i := 1; i <= depth; i++ {
		parent = mustCreateSub(t, store, parent, fmt.Sprintf("level %d", i))
	}

	nodes, err := store.GetTree(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != depth+1 {
		t.Fatalf("got %d nodes, want %d", len(nodes), depth+1)
	}
	if last := nodes[len(nodes)-1]; last.Depth != depth {
		t.Errorf("deepest node depth = %d, want %d", last.Depth, depth)
	}
}
