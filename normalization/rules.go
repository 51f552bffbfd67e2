package normalization

import (
	"regexp"
	"sort"
	"unicode/utf8"
)

// Rule confidence tiers. An exact whole-key match is near certain, a word
// match identifies the product head or brand, a partial match only a
// fragment, and store-specific private-label rules are the weakest signal.
const (
	TierExact   = 0.98
	TierWord    = 0.85
	TierPartial = 0.72
	TierStore   = 0.68
)

// Rule maps a matching-key pattern to a canonical product name with a fixed
// confidence tier. Store-scoped rules apply only to receipts from that store.
type Rule struct {
	Pattern    *regexp.Regexp
	Canonical  string
	Confidence float64
	Store      string

	// specificity orders rules within a tier so the longer, more exact
	// pattern wins ties.
	specificity int
}

// RuleSet is an ordered rule list. Lookup scans in order and the first
// matching rule wins; construction sorts by tier and specificity so that
// ordering encodes the tie-break.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set from the given rules. The input order is kept
// only between rules of equal tier and specificity.
func NewRuleSet(rules []Rule) *RuleSet {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	for i := range ordered {
		if ordered[i].specificity == 0 {
			ordered[i].specificity = utf8.RuneCountInString(ordered[i].Pattern.String())
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}
		return ordered[i].specificity > ordered[j].specificity
	})
	return &RuleSet{rules: ordered}
}

// Match finds the first rule matching the key. Store-scoped rules are
// skipped unless the receipt's store matches.
func (rs *RuleSet) Match(key, store string) (canonical string, confidence float64, ok bool) {
	for _, rule := range rs.rules {
		if rule.Store != "" && rule.Store != store {
			continue
		}
		if rule.Pattern.MatchString(key) {
			return rule.Canonical, rule.Confidence, true
		}
	}
	return "", 0, false
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// DefaultRuleSet compiles the built-in Polish grocery rule tables.
func DefaultRuleSet() *RuleSet {
	rules := make([]Rule, 0, len(exactNameRules)+len(wordRules)+len(partialRules)+len(storeVariantRules))

	for key, canonical := range exactNameRules {
		rules = append(rules, Rule{
			Pattern:     regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `$`),
			Canonical:   canonical,
			Confidence:  TierExact,
			specificity: utf8.RuneCountInString(key),
		})
	}
	for _, wr := range wordRules {
		rules = append(rules, Rule{
			Pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(wr.word) + `\b`),
			Canonical:   wr.canonical,
			Confidence:  TierWord,
			specificity: utf8.RuneCountInString(wr.word),
		})
	}
	for _, pr := range partialRules {
		rules = append(rules, Rule{
			Pattern:     regexp.MustCompile(regexp.QuoteMeta(pr.fragment)),
			Canonical:   pr.canonical,
			Confidence:  TierPartial,
			specificity: utf8.RuneCountInString(pr.fragment),
		})
	}
	for _, sr := range storeVariantRules {
		rules = append(rules, Rule{
			Pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(sr.pattern) + `\b`),
			Canonical:   sr.canonical,
			Confidence:  TierStore,
			Store:       sr.store,
			specificity: utf8.RuneCountInString(sr.pattern),
		})
	}

	return NewRuleSet(rules)
}
