package normalization

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	sm := NewSimilarityMetrics()

	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"mleko", "", 5},
		{"mleko", "mleko", 0},
		{"mleko", "mleka", 1},
		{"mlkeo", "mleko", 2},
		{"masło", "maslo", 1},
	}

	for _, tt := range tests {
		if got := sm.LevenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func TestDamerauLevenshteinCountsTranspositionAsOne(t *testing.T) {
	sm := NewSimilarityMetrics()

	if got := sm.DamerauLevenshteinDistance("mlkeo", "mleko"); got != 1 {
		t.Errorf("DamerauLevenshteinDistance(mlkeo, mleko) = %d, want 1", got)
	}
	if got := sm.LevenshteinDistance("mlkeo", "mleko"); got != 2 {
		t.Errorf("LevenshteinDistance(mlkeo, mleko) = %d, want 2", got)
	}
}

func TestCombinedSimilarity(t *testing.T) {
	sm := NewSimilarityMetrics()

	t.Run("identical strings short-circuit", func(t *testing.T) {
		if got := sm.CombinedSimilarity("Mleko Łaciate", "mleko łaciate"); got != 1.0 {
			t.Errorf("CombinedSimilarity = %v, want 1.0", got)
		}
	})

	t.Run("ocr confusion stays high", func(t *testing.T) {
		got := sm.CombinedSimilarity("maslo extra", "masto extra")
		if got < 0.7 {
			t.Errorf("CombinedSimilarity = %v, want at least 0.7", got)
		}
	})

	t.Run("unrelated names stay low", func(t *testing.T) {
		got := sm.CombinedSimilarity("mleko", "papier toaletowy")
		if got > 0.4 {
			t.Errorf("CombinedSimilarity = %v, want at most 0.4", got)
		}
	})

	t.Run("similar beats dissimilar", func(t *testing.T) {
		similar := sm.CombinedSimilarity("jogurt naturalny", "jogurt naturany")
		dissimilar := sm.CombinedSimilarity("jogurt naturalny", "woda gazowana")
		if similar <= dissimilar {
			t.Errorf("similar pair scored %v, dissimilar %v", similar, dissimilar)
		}
	})

	t.Run("empty versus non-empty", func(t *testing.T) {
		if got := sm.CombinedSimilarity("", "mleko"); got > 0.1 {
			t.Errorf("CombinedSimilarity = %v, want near zero", got)
		}
	})
}

func TestCosineSimilarityMatchesInflectedForms(t *testing.T) {
	sm := NewSimilarityMetrics()

	// stemming folds the inflections onto the same tokens
	got := sm.CosineSimilarity("banany luzem", "bananami luzem")
	if got < 0.99 {
		t.Errorf("CosineSimilarity = %v, want 1.0 for stem-identical tokens", got)
	}
}

func TestJaccardShortStringsUseBigrams(t *testing.T) {
	sm := NewSimilarityMetrics()

	got := sm.JaccardIndex("mleko", "mleczko")
	if got <= 0 || got >= 1 {
		t.Errorf("JaccardIndex = %v, want a partial overlap in (0, 1)", got)
	}
}
