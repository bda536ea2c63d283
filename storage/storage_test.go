package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"medboard-api/domain"
)

func sampleItems() []domain.BoardItem {
	return []domain.BoardItem{
		{ID: "item-1", Type: domain.TypeTodo, X: 4260, Y: 60, Width: 440, Height: 380, CreatedAt: 1, UpdatedAt: 1},
		{ID: "item-2", Type: domain.TypeSticky, X: 100, Y: 200, Width: 220, Height: 220, CreatedAt: 2, UpdatedAt: 3},
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	items, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty board, got %d items", len(items))
	}

	want := sampleItems()
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected items: %#v", got)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.SaveAll(ctx, sampleItems()); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, _ := store.LoadAll(ctx)
	first[0].X = -999

	second, _ := store.LoadAll(ctx)
	if second[0].X == -999 {
		t.Fatal("mutating a loaded slice must not affect the store")
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "boards", "main.json")
	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	items, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty board, got %d items", len(items))
	}

	want := sampleItems()
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].X != want[i].X || got[i].Type != want[i].Type {
			t.Fatalf("item %d mismatch: %#v", i, got[i])
		}
	}
}

func TestFileLoadRejectsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := store.LoadAll(ctx); err == nil {
		t.Fatal("expected error for corrupt board file")
	}
}
