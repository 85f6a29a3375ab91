package vectorindex

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAddAndSearch(t *testing.T) {
	idx := New()
	idx.Add("a", []float32{1, 0, 0})
	idx.Add("b", []float32{0, 1, 0})
	idx.Add("c", []float32{0.9, 0.1, 0})

	matches, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
	if matches[0].ChunkID != "a" {
		t.Errorf("top match = %s, want a", matches[0].ChunkID)
	}
}

func TestSearchRespectsEligible(t *testing.T) {
	idx := New()
	idx.Add("a", []float32{1, 0, 0})
	idx.Add("b", []float32{1, 0, 0})

	matches, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10, map[string]bool{"b": true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].ChunkID != "b" {
		t.Errorf("matches = %v, want only b", matches)
	}
}

func TestDeleteAndDeleteMany(t *testing.T) {
	idx := New()
	idx.Add("a", []float32{1, 0})
	idx.Add("b", []float32{0, 1})
	idx.Add("c", []float32{1, 1})

	idx.Delete("a")
	if idx.Len() != 2 {
		t.Errorf("Len() after Delete = %d, want 2", idx.Len())
	}

	idx.DeleteMany([]string{"b", "c"})
	if idx.Len() != 0 {
		t.Errorf("Len() after DeleteMany = %d, want 0", idx.Len())
	}
}

func TestPruneExcept(t *testing.T) {
	idx := New()
	idx.Add("a", []float32{1, 0})
	idx.Add("b", []float32{0, 1})
	idx.Add("c", []float32{1, 1})

	removed := idx.PruneExcept(map[string]bool{"a": true})
	if removed != 2 {
		t.Errorf("PruneExcept removed = %d, want 2", removed)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() after PruneExcept = %d, want 1", idx.Len())
	}
	if idx.Score("a", []float32{1, 0}) == 0 {
		t.Error("kept vector 'a' should still be scoreable")
	}
}

func TestSaveToAndLoadFromRoundTrip(t *testing.T) {
	idx := New()
	idx.Add("a", []float32{1, 0, 0})
	idx.Add("b", []float32{0, 1, 0})

	path := filepath.Join(t.TempDir(), "index.bin")
	if err := idx.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("loaded.Len() = %d, want 2", loaded.Len())
	}
	if got := loaded.Score("a", []float32{1, 0, 0}); got < 0.99 {
		t.Errorf("loaded score for 'a' = %v, want ~1.0", got)
	}
}

func TestLoadFromMissingFileIsEmptyIndex(t *testing.T) {
	idx, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	if err != nil {
		t.Fatalf("LoadFrom(missing): %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a missing file", idx.Len())
	}
}
