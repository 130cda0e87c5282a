package todo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTempStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, CreateInput{Title: "  "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	created, err := store.Create(ctx, CreateInput{
		Title:            "  Buy milk  ",
		Notes:            "2 liters",
		DueDate:          "2024-06-01",
		NotifyOnComplete: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Title != "Buy milk" || created.Completed {
		t.Fatalf("bad created todo: %+v", created)
	}
	if created.Notes == nil || *created.Notes != "2 liters" {
		t.Errorf("notes = %v", created.Notes)
	}
	if created.DueDate == nil || *created.DueDate != "2024-06-01" {
		t.Errorf("due date = %v", created.DueDate)
	}
	if !created.NotifyOnComplete {
		t.Error("notify flag lost")
	}
	if created.CompletedAt != nil {
		t.Error("new todo should have nil CompletedAt")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != created.Title || got.CreatedAt.IsZero() {
		t.Errorf("roundtrip mismatch: %+v", got)
	}

	if _, err := store.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_CompleteReopen(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, CreateInput{Title: "task"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed, err := store.SetCompleted(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !completed.Completed || completed.CompletedAt == nil {
		t.Fatalf("completed_at must be set iff completed: %+v", completed)
	}

	reopened, err := store.SetCompleted(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != nil {
		t.Fatalf("reopen must clear completed_at: %+v", reopened)
	}

	if _, err := store.SetCompleted(ctx, 999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	a, _ := store.Create(ctx, CreateInput{Title: "open one"})
	b, _ := store.Create(ctx, CreateInput{Title: "done one"})
	if _, err := store.SetCompleted(ctx, b.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	active, err := store.List(ctx, StatusActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("active = %+v", active)
	}

	completed, err := store.List(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != b.ID {
		t.Errorf("completed = %+v", completed)
	}

	all, err := store.List(ctx, StatusAll)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %+v", all)
	}
	if all[0].Completed {
		t.Errorf("open tasks should sort first: %+v", all)
	}
}

func TestSQLiteStore_CompletedInRange(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"first", "second", "outside"} {
		created, err := store.Create(ctx, CreateInput{Title: title})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, created.ID)
	}
	for _, id := range ids {
		if _, err := store.SetCompleted(ctx, id, true); err != nil {
			t.Fatalf("complete %d: %v", id, err)
		}
	}

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	got, err := store.CompletedInRange(ctx, start, end)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 in range, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CompletedAt.Before(*got[i-1].CompletedAt) {
			t.Errorf("range results not ascending: %+v", got)
		}
	}

	// Half-open: a window ending before the completions excludes them.
	got, err = store.CompletedInRange(ctx, start.Add(-24*time.Hour), start)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty window, got %d", len(got))
	}
}

func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, CreateInput{Title: "draft", Notes: "v1"})

	updated, err := store.UpdateDetails(ctx, created.ID, "final", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Notes != nil {
		t.Errorf("update result: %+v", updated)
	}

	if _, err := store.UpdateDetails(ctx, created.ID, "", "x"); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := store.UpdateDetails(ctx, 999, "x", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestSQLiteStore_EmailRecipient(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	email, err := store.EmailRecipient(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if email != "" {
		t.Errorf("fresh store should have no recipient, got %q", email)
	}

	if err := store.SetEmailRecipient(ctx, "a@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetEmailRecipient(ctx, "b@example.com"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	email, err = store.EmailRecipient(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if email != "b@example.com" {
		t.Errorf("recipient = %q, want last write", email)
	}
}

func TestSQLiteStore_ReopenIsIdempotent(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()

	created, _ := store.Create(ctx, CreateInput{Title: "task"})
	for i := 0; i < 2; i++ {
		got, err := store.SetCompleted(ctx, created.ID, false)
		if err != nil {
			t.Fatalf("reopen %d: %v", i, err)
		}
		if got.Completed || got.CompletedAt != nil {
			t.Fatalf("reopen %d: %+v", i, got)
		}
	}
}
