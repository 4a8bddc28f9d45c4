package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/quillmind/quillmind/server/internal/model"
	"github.com/quillmind/quillmind/server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	notes := s.Notes()

	if lst, err := notes.List(ctx); err != nil || len(lst) != 0 {
		t.Fatalf("List on empty store: n=%d err=%v", len(lst), err)
	}

	a, err := notes.Create(ctx, &model.Note{Title: "Groceries", Content: "milk, eggs", Embedding: []float32{0.1, 0.2, 0.3}})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if a.ID <= 0 {
		t.Fatalf("Create a: non-positive id %d", a.ID)
	}
	b, err := notes.Create(ctx, &model.Note{Title: "Work", Content: "standup"})
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not increasing: a=%d b=%d", a.ID, b.ID)
	}

	got, err := notes.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Groceries" || got.Content != "milk, eggs" {
		t.Fatalf("Get: unexpected fields %+v", got)
	}
	if len(got.Embedding) != 3 || got.Embedding[2] != 0.3 {
		t.Fatalf("Get: embedding not round-tripped: %v", got.Embedding)
	}
	if got.CreationTime.IsZero() {
		t.Fatalf("Get: creation time not set")
	}

	lst, err := notes.List(ctx)
	if err != nil || len(lst) != 2 {
		t.Fatalf("List: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != a.ID || lst[1].ID != b.ID {
		t.Fatalf("List: not in id order: %d, %d", lst[0].ID, lst[1].ID)
	}

	upd, err := notes.Update(ctx, &model.Note{ID: a.ID, Title: "Groceries", Content: "milk, eggs, bread", Embedding: []float32{1}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.ID != a.ID || upd.Content != "milk, eggs, bread" {
		t.Fatalf("Update: unexpected %+v", upd)
	}
	if got, _ := notes.Get(ctx, a.ID); got == nil || len(got.Embedding) != 1 {
		t.Fatalf("Update: embedding not replaced: %+v", got)
	}
	if lst, _ := notes.List(ctx); len(lst) != 2 {
		t.Fatalf("Update must not insert: n=%d", len(lst))
	}

	if _, err := notes.Update(ctx, &model.Note{ID: b.ID + 1000, Title: "x"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}

	if err := notes.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := notes.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete twice must succeed: %v", err)
	}
	if _, err := notes.Get(ctx, a.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get deleted: expected ErrNotFound, got %v", err)
	}
	if lst, _ := notes.List(ctx); len(lst) != 1 || lst[0].ID != b.ID {
		t.Fatalf("List after delete: %+v", lst)
	}
}
