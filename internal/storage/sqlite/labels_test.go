package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
)

func TestLabelsAreASet(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	id := mustCreate(t, store, "labelled", types.PriorityLow)

	for _, label := range []string{"ui", "bug", "ui"} {
		if _, err := store.AddLabel(ctx, id, label); err != nil {
			t.Fatalf("AddLabel(%q) failed: %v", label, err)
		}
	}
	if added, err := store.AddLabel(ctx, id, "bug"); err != nil || added {
		t.Errorf("duplicate AddLabel = %v, %v, want false, nil", added, err)
	}

	labels, err := store.GetLabels(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 2 || labels[0] != "bug" || labels[1] != "ui" {
		t.Errorf("GetLabels = %v, want [bug ui]", labels)
	}

	removed, err := store.RemoveLabel(ctx, id, "ui")
	if err != nil || !removed {
		t.Errorf("RemoveLabel = %v, %v", removed, err)
	}
	removed, err = store.RemoveLabel(ctx, id, "ui")
	if err != nil || removed {
		t.Errorf("second RemoveLabel = %v, %v, want false, nil", removed, err)
	}
}

func TestLabelErrors(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	id := mustCreate(t, store, "x", types.PriorityLow)

	tests := []struct {
		name    string
		issueID int64
		label   string
		want    error
	}{
		{"empty label", id, "", storage.ErrInvalidArgument},
		{"missing issue", 404, "bug", storage.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.AddLabel(ctx, tt.issueID, tt.label); !errors.Is(err, tt.want) {
				t.Errorf("AddLabel error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCommentsKeepInsertionOrder(t *testing.T) {
	store := newTestStore(t, "")
	ctx := context.Background()
	id := mustCreate(t, store, "discussed", types.PriorityLow)

	for _, body := range []string{"first", "second 🚀", "third"} {
		if _, err := store.AddComment(ctx, id, body); err != nil {
			t.Fatalf("AddComment(%q) failed: %v", body, err)
		}
	}

	comments, err := store.GetComments(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	for i, want := range []string{"first", "second 🚀", "third"} {
		if comments[i].Content != want || comments[i].IssueID != id {
			t.Errorf("comment %d = %+v, want %q on #%d", i, comments[i], want, id)
		}
	}

	if _, err := store.AddComment(ctx, id, ""); !errors.Is(err, storage.ErrInvalidArgument) {
		t.Errorf("empty comment error = %v", err)
	}
	if _, err := store.AddComment(ctx, 404, "hi"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("comment on missing issue error = %v", err)
	}
}
