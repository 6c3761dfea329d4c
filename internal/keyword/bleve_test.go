package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/shashin/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	records := []models.EmbeddingRecord{
		{ID: 1, Date: "03/03/2024", Description: "Spicy miso ramen in Ghent"},
		{ID: 2, Date: "05/03/2024", Description: "Fish tacos with lime"},
		{ID: 3, Date: "09/04/2025", Description: "Homemade ramen with chashu"},
	}
	if err := idx.Build(context.Background(), records); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestBleveIndex_SearchFindsCaption(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "tacos", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != 2 {
		t.Fatalf("Search tacos = %+v, want only ID 2", results)
	}

	results, err = idx.Search(context.Background(), "RAMEN", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search ramen: got %d results, want 2", len(results))
	}
}

func TestBleveIndex_SearchFindsDate(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "2025", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != 3 {
		t.Errorf("Search 2025 = %+v, want only ID 3", results)
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newTestIndex(t)
	exact, err := idx.Search(context.Background(), "tacoz", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(exact) != 0 {
		t.Errorf("exact search for typo returned %d results", len(exact))
	}
	fuzzy, err := idx.Search(context.Background(), "tacoz", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(fuzzy) != 1 || fuzzy[0].ID != 2 {
		t.Errorf("fuzzy search = %+v, want ID 2", fuzzy)
	}
}

func TestBleveIndex_Limit(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "ramen", 1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestBleveIndex_IndexAndDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	if err := idx.Index(ctx, &models.EmbeddingRecord{ID: 4, Date: "01/05/2025", Description: "Waffles"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if n, _ := idx.DocCount(); n != 4 {
		t.Errorf("DocCount = %d, want 4", n)
	}
	if err := idx.Delete(ctx, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	results, _ := idx.Search(ctx, "waffles", 10, nil)
	if len(results) != 0 {
		t.Errorf("deleted record still found: %+v", results)
	}
}

func TestTokenizeQuery(t *testing.T) {
	got := tokenizeQuery("  Miso  RAMEN ")
	if len(got) != 2 || got[0] != "miso" || got[1] != "ramen" {
		t.Errorf("tokenizeQuery = %v", got)
	}
}
