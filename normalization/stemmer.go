package normalization

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kljensen/snowball"
)

// Stemmer reduces inflected words to a comparable stem.
type Stemmer interface {
	// Stem returns the stemmed version of a word.
	Stem(word string) string

	// StemWithCache returns the stemmed version with caching.
	StemWithCache(word string) string

	// StemTokens returns stemmed versions of multiple words.
	StemTokens(tokens []string) []string
}

// polishSuffixes are inflectional endings stripped by the light stemmer,
// longest first. The list covers the folded ASCII forms the cleanup stage
// produces as well as the raw diacritic forms.
var polishSuffixes = []string{
	"iami", "owie", "iego", "iemu",
	"ami", "ach", "ego", "emu", "ymi", "imi", "ych", "ich",
	"owe", "owa", "owy", "iej",
	"ow", "ów", "ej", "om", "em", "ie", "ia", "ią", "ię",
	"a", "e", "i", "o", "u", "y", "ą", "ę",
}

// minStemLen keeps short roots intact; stripping below this length folds
// unrelated words together.
const minStemLen = 3

// PolishStemmer is a light suffix-stripping stemmer for Polish product
// names. Tokens it leaves untouched are retried with the Snowball English
// stemmer when they are plain ASCII, which covers imported product names
// and their English plurals.
type PolishStemmer struct {
	cache    map[string]string
	mu       sync.RWMutex
	useCache bool
}

// NewPolishStemmer creates a new stemmer with caching enabled.
func NewPolishStemmer() *PolishStemmer {
	return &PolishStemmer{
		cache:    make(map[string]string),
		useCache: true,
	}
}

// NewPolishStemmerWithoutCache creates a stemmer without caching.
func NewPolishStemmerWithoutCache() *PolishStemmer {
	return &PolishStemmer{useCache: false}
}

// Stem returns the stemmed version of a word.
// Example: "bananami" -> "banan", "laciate" -> "laciat".
func (s *PolishStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	stemmed := stripPolishSuffix(normalized)
	if stemmed == normalized && isASCIILetters(normalized) {
		if english, err := snowball.Stem(normalized, "english", true); err == nil && english != "" {
			stemmed = english
		}
	}
	return stemmed
}

// StemWithCache returns the stemmed version with caching for performance.
func (s *PolishStemmer) StemWithCache(word string) string {
	if !s.useCache {
		return s.Stem(word)
	}

	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	if cached, found := s.cache[normalized]; found {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	stemmed := s.Stem(normalized)

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()

	return stemmed
}

// StemTokens returns stemmed versions of multiple words.
// Example: ["banan", "banany", "bananami"] -> ["banan", "banan", "banan"].
func (s *PolishStemmer) StemTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return []string{}
	}

	stemmed := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed[i] = s.StemWithCache(token)
	}
	return stemmed
}

// CacheSize returns the number of cached items.
func (s *PolishStemmer) CacheSize() int {
	if !s.useCache {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// stripPolishSuffix removes the longest matching inflectional ending while
// keeping at least minStemLen runes of the root. A single pass is enough
// for receipt vocabulary.
func stripPolishSuffix(word string) string {
	for _, suffix := range polishSuffixes {
		if !strings.HasSuffix(word, suffix) {
			continue
		}
		stem := strings.TrimSuffix(word, suffix)
		if utf8.RuneCountInString(stem) >= minStemLen {
			return stem
		}
	}
	return word
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return s != ""
}
