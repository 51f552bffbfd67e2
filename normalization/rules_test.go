package normalization

import (
	"regexp"
	"testing"
)

func TestDefaultRuleSetMatch(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		name           string
		key            string
		store          string
		wantCanonical  string
		wantConfidence float64
		wantMatch      bool
	}{
		{
			name:           "exact whole-key match",
			key:            "mleko",
			wantCanonical:  "Mleko",
			wantConfidence: TierExact,
			wantMatch:      true,
		},
		{
			name:           "exact multi-word beats word rule",
			key:            "mleko czekoladowe",
			wantCanonical:  "Mleko czekoladowe",
			wantConfidence: TierExact,
			wantMatch:      true,
		},
		{
			name:           "word match with extra descriptors",
			key:            "mleko wiejskie swieze",
			wantCanonical:  "Mleko",
			wantConfidence: TierWord,
			wantMatch:      true,
		},
		{
			name:           "brand word match",
			key:            "laciate swieze",
			wantCanonical:  "Mleko",
			wantConfidence: TierWord,
			wantMatch:      true,
		},
		{
			name:           "water brand outranks beer brand by specificity",
			key:            "zywiec zdroj niegazowany",
			wantCanonical:  "Woda",
			wantConfidence: TierWord,
			wantMatch:      true,
		},
		{
			name:           "beer brand alone",
			key:            "zywiec puszka",
			wantCanonical:  "Piwo",
			wantConfidence: TierWord,
			wantMatch:      true,
		},
		{
			name:           "partial match on inflected form",
			key:            "pomidorki koktajlowe",
			wantCanonical:  "Pomidory",
			wantConfidence: TierPartial,
			wantMatch:      true,
		},
		{
			name:           "store variant matches in its store",
			key:            "pilos waniliowy",
			store:          "Lidl",
			wantCanonical:  "Nabiał",
			wantConfidence: TierStore,
			wantMatch:      true,
		},
		{
			name:      "store variant skipped elsewhere",
			key:       "pilos waniliowy",
			store:     "Biedronka",
			wantMatch: false,
		},
		{
			name:      "no rule matches",
			key:       "zarowka led",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, confidence, ok := rs.Match(tt.key, tt.store)
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q, %q) ok = %v, want %v", tt.key, tt.store, ok, tt.wantMatch)
			}
			if !tt.wantMatch {
				return
			}
			if canonical != tt.wantCanonical {
				t.Errorf("canonical = %q, want %q", canonical, tt.wantCanonical)
			}
			if confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", confidence, tt.wantConfidence)
			}
		})
	}
}

func TestDefaultRuleSetSize(t *testing.T) {
	if n := DefaultRuleSet().Len(); n < 150 {
		t.Errorf("rule set has %d rules, expected the full built-in tables", n)
	}
}

func TestRuleSetTieBreakBySpecificity(t *testing.T) {
	rs := NewRuleSet([]Rule{
		{Pattern: regexp.MustCompile(`\bkawa\b`), Canonical: "Kawa", Confidence: TierWord},
		{Pattern: regexp.MustCompile(`\bkawa zbozowa\b`), Canonical: "Kawa zbożowa", Confidence: TierWord},
	})

	canonical, _, ok := rs.Match("kawa zbozowa anatol", "")
	if !ok {
		t.Fatal("expected a match")
	}
	if canonical != "Kawa zbożowa" {
		t.Errorf("canonical = %q, want the more specific rule to win", canonical)
	}
}

func TestRuleSetHigherTierWinsRegardlessOfOrder(t *testing.T) {
	rs := NewRuleSet([]Rule{
		{Pattern: regexp.MustCompile(`ser`), Canonical: "Ser", Confidence: TierPartial},
		{Pattern: regexp.MustCompile(`^serek wiejski$`), Canonical: "Serek wiejski", Confidence: TierExact},
	})

	canonical, confidence, ok := rs.Match("serek wiejski", "")
	if !ok {
		t.Fatal("expected a match")
	}
	if canonical != "Serek wiejski" || confidence != TierExact {
		t.Errorf("got (%q, %v), want the exact tier rule", canonical, confidence)
	}
}
