package ai

import (
	"testing"

	"receiptserver/receipt"
)

func TestExactCacheRoundTrip(t *testing.T) {
	cache := NewExactCache(8)

	if _, ok := cache.Get("mleko uht"); ok {
		t.Fatal("empty cache reported a hit")
	}

	cache.Add("mleko uht", receipt.ModelSuggestion{Name: "Mleko"})

	suggestion, ok := cache.Get("mleko uht")
	if !ok {
		t.Fatal("cached entry not found")
	}
	if suggestion.Name != "Mleko" {
		t.Errorf("Name = %q, want %q", suggestion.Name, "Mleko")
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestExactCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewExactCache(2)

	cache.Add("a", receipt.ModelSuggestion{Name: "A"})
	cache.Add("b", receipt.ModelSuggestion{Name: "B"})
	cache.Get("a")
	cache.Add("c", receipt.ModelSuggestion{Name: "C"})

	if _, ok := cache.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestApproxCacheAcceptsAboveThreshold(t *testing.T) {
	v := NewVectorizer()
	// one substituted rune scores 0.80, below the default 0.92 threshold
	// but above a relaxed one
	cache := NewApproxCache(8, 0.75)

	cache.Add("mleko uht 3.2", v.Vectorize("mleko uht 3.2"), receipt.ModelSuggestion{Name: "Mleko"})

	suggestion, ok := cache.Lookup(v.Vectorize("mleko uht 3,2"))
	if !ok {
		t.Fatal("near-identical vector missed at a 0.75 threshold")
	}
	if suggestion.Name != "Mleko" {
		t.Errorf("Name = %q, want %q", suggestion.Name, "Mleko")
	}
}

func TestApproxCacheRejectsBelowThreshold(t *testing.T) {
	v := NewVectorizer()
	cache := NewApproxCache(8, 0.92)

	cache.Add("mleko uht 3.2", v.Vectorize("mleko uht 3.2"), receipt.ModelSuggestion{Name: "Mleko"})

	if _, ok := cache.Lookup(v.Vectorize("mleko uht 3,2")); ok {
		t.Error("a 0.80 similarity passed the 0.92 threshold")
	}

	hits, misses := cache.Stats()
	if hits != 0 || misses != 1 {
		t.Errorf("stats = (%d, %d), want (0, 1)", hits, misses)
	}
}

func TestApproxCachePicksClosestEntry(t *testing.T) {
	v := NewVectorizer()
	cache := NewApproxCache(8, 0.5)

	cache.Add("jogurt naturalny", v.Vectorize("jogurt naturalny"), receipt.ModelSuggestion{Name: "Jogurt"})
	cache.Add("jogurt naturalny 400g", v.Vectorize("jogurt naturalny 400g"), receipt.ModelSuggestion{Name: "Jogurt duży"})

	suggestion, ok := cache.Lookup(v.Vectorize("jogurt naturalny 400"))
	if !ok {
		t.Fatal("no entry matched")
	}
	if suggestion.Name != "Jogurt duży" {
		t.Errorf("Name = %q, want the closest entry %q", suggestion.Name, "Jogurt duży")
	}
}
