package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
	"github.com/plauder-dev/plauder/pkg/storage"
)

func record(id string) *storage.Record {
	return &storage.Record{
		ID:    id,
		Title: "test " + id,
		Model: "llama3.1",
		Messages: []api.Message{
			{Role: api.RoleUser, Content: "hi"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	if err := s.Save(ctx, record("conv_a")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "test conv_a" || len(got.Messages) != 1 {
		t.Errorf("record = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set on save")
	}
}

func TestSaveUpserts(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	rec := record("conv_a")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := s.Get(ctx, "conv_a")

	rec.Messages = append(rec.Messages, api.Message{Role: api.RoleAssistant, Content: "hello"})
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	got, err := s.Get(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(got.Messages))
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Error("update rewrote CreatedAt")
	}
}

func TestGetUnknown(t *testing.T) {
	s := New(0)
	if _, err := s.Get(context.Background(), "conv_ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := New(0)
	ctx := context.Background()
	_ = s.Save(ctx, record("conv_a"))

	if err := s.Delete(ctx, "conv_a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "conv_a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete: err = %v", err)
	}
	if err := s.Delete(ctx, "conv_a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete: err = %v", err)
	}
}

func TestLRUEviction(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	_ = s.Save(ctx, record("conv_a"))
	_ = s.Save(ctx, record("conv_b"))

	// Touch a so b becomes the eviction candidate.
	if _, err := s.Get(ctx, "conv_a"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	_ = s.Save(ctx, record("conv_c"))

	if _, err := s.Get(ctx, "conv_b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("least recently used record survived eviction: err = %v", err)
	}
	if _, err := s.Get(ctx, "conv_a"); err != nil {
		t.Errorf("recently used record evicted: %v", err)
	}
}

func TestListOrderAndPagination(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	for _, id := range []string{"conv_a", "conv_b", "conv_c"} {
		_ = s.Save(ctx, record(id))
		time.Sleep(2 * time.Millisecond) // distinct update times
	}

	recs, err := s.List(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d", len(recs))
	}
	if recs[0].ID != "conv_c" || recs[2].ID != "conv_a" {
		t.Errorf("order: %s, %s, %s", recs[0].ID, recs[1].ID, recs[2].ID)
	}

	page, err := s.List(ctx, storage.ListOptions{Limit: 1, After: "conv_c"})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "conv_b" {
		t.Errorf("page = %+v", page)
	}
}

func TestStoredRecordIsolated(t *testing.T) {
	s := New(0)
	ctx := context.Background()

	rec := record("conv_a")
	_ = s.Save(ctx, rec)

	// Mutating the caller's copy must not affect stored state.
	rec.Messages[0].Content = "tampered"

	got, _ := s.Get(ctx, "conv_a")
	if got.Messages[0].Content != "hi" {
		t.Errorf("stored record shares memory with caller: %q", got.Messages[0].Content)
	}
}
