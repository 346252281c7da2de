package profile

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/partygames/truthordare/internal/domain"
	"github.com/partygames/truthordare/internal/storage"
)

func newTestCache(t *testing.T, kv storage.KV) *Cache {
	t.Helper()
	c, err := Open(context.Background(), kv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return c
}

func strPtr(v string) *string { return &v }

func TestEmptyCacheIsNotPopulated(t *testing.T) {
	c := newTestCache(t, storage.NewMemoryKV())
	if _, ok := c.Get(); ok {
		t.Fatal("expected empty cache")
	}
}

func TestSavePersistsWholeRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	c := newTestCache(t, kv)

	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	err := c.Save(ctx, domain.LocalProfile{
		ID:          7,
		Name:        "Ann",
		Surname:     "Lee",
		Email:       "ann@example.com",
		Description: strPtr("likes dares"),
		CreatedAt:   &created,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.Len() != 1 {
		t.Fatalf("expected a single persisted entry, got %d", kv.Len())
	}

	reopened := newTestCache(t, kv)
	got, ok := reopened.Get()
	if !ok {
		t.Fatal("expected populated cache after reopen")
	}
	if got.ID != 7 || got.Name != "Ann" || got.Email != "ann@example.com" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.Description == nil || *got.Description != "likes dares" {
		t.Fatalf("description lost: %v", got.Description)
	}
	if got.CreatedAt == nil || !got.CreatedAt.Equal(created) {
		t.Fatalf("created at lost: %v", got.CreatedAt)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected updated at to be stamped")
	}
}

func TestUpdateKeepsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, storage.NewMemoryKV())
	if err := c.Save(ctx, domain.LocalProfile{Name: "Ann", Surname: "Lee", Email: "ann@example.com"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.Update(ctx, domain.ProfileUpdate{Surname: strPtr("Park")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Ann" || got.Surname != "Park" || got.Email != "ann@example.com" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.User().ID != domain.DefaultProfileID {
		t.Fatalf("expected default id, got %d", got.User().ID)
	}
}

func TestClearRemovesRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	c := newTestCache(t, kv)
	if err := c.Save(ctx, domain.LocalProfile{Name: "Ann"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.Get(); ok {
		t.Fatal("expected empty cache after clear")
	}
	if kv.Len() != 0 {
		t.Fatalf("expected no persisted entries, got %d", kv.Len())
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestUnreadableRecordIsDiscarded(t *testing.T) {
	kv := storage.NewMemoryKV()
	if err := storage.Set(context.Background(), kv, Key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := newTestCache(t, kv)
	if _, ok := c.Get(); ok {
		t.Fatal("expected unreadable record to be ignored")
	}
}
