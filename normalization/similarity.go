package normalization

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SimilarityMetrics provides the string similarity measures the alias lookup
// stage scores candidates with. All methods are pure; the struct carries a
// stemmer so token-level measures compare stems instead of inflected forms.
type SimilarityMetrics struct {
	stemmer Stemmer
}

// NewSimilarityMetrics creates similarity metrics backed by the Polish
// stemmer.
func NewSimilarityMetrics() *SimilarityMetrics {
	return &SimilarityMetrics{stemmer: NewPolishStemmer()}
}

// JaccardIndex computes token-set overlap. Short names have too few tokens
// for a stable set measure, so they fall back to character bigrams.
func (sm *SimilarityMetrics) JaccardIndex(text1, text2 string) float64 {
	count1 := utf8.RuneCountInString(text1)
	count2 := utf8.RuneCountInString(text2)

	if count1 == 0 && count2 == 0 {
		return 1.0
	}
	if count1 == 0 || count2 == 0 {
		return 0.0
	}

	if count1 <= 20 && count2 <= 20 {
		return characterNGramSimilarity(text1, text2, 2)
	}

	set1 := sm.tokenSet(text1)
	set2 := sm.tokenSet(text2)

	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range set1 {
		if set2[token] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// CosineSimilarity computes cosine over term-frequency vectors of stemmed
// tokens.
func (sm *SimilarityMetrics) CosineSimilarity(text1, text2 string) float64 {
	vec1 := sm.termVector(text1)
	vec2 := sm.termVector(text2)

	if len(vec1) == 0 && len(vec2) == 0 {
		return 1.0
	}
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0.0
	}

	dot := 0.0
	for token, freq1 := range vec1 {
		if freq2, ok := vec2[token]; ok {
			dot += freq1 * freq2
		}
	}

	norm1 := 0.0
	for _, freq := range vec1 {
		norm1 += freq * freq
	}
	norm2 := 0.0
	for _, freq := range vec2 {
		norm2 += freq * freq
	}

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
}

// DamerauLevenshteinDistance is edit distance with adjacent transpositions,
// which covers the most common OCR confusion on receipt text.
func (sm *SimilarityMetrics) DamerauLevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)

			if i > 1 && j > 1 && r1[i-1] == r2[j-2] && r1[i-2] == r2[j-1] {
				matrix[i][j] = min2(matrix[i][j], matrix[i-2][j-2]+1)
			}
		}
	}

	return matrix[len1][len2]
}

// DamerauLevenshteinSimilarity normalizes the distance into [0, 1].
func (sm *SimilarityMetrics) DamerauLevenshteinSimilarity(s1, s2 string) float64 {
	distance := sm.DamerauLevenshteinDistance(s1, s2)
	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// LevenshteinDistance is the standard edit distance, single-column variant.
func (sm *SimilarityMetrics) LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	column := make([]int, len1+1)
	for i := 1; i <= len1; i++ {
		column[i] = i
	}

	for x := 1; x <= len2; x++ {
		column[0] = x
		lastDiag := x - 1
		for y := 1; y <= len1; y++ {
			oldDiag := column[y]
			cost := 0
			if r1[y-1] != r2[x-1] {
				cost = 1
			}
			column[y] = min3(column[y]+1, column[y-1]+1, lastDiag+cost)
			lastDiag = oldDiag
		}
	}

	return column[len1]
}

// LevenshteinSimilarity normalizes the distance into [0, 1].
func (sm *SimilarityMetrics) LevenshteinSimilarity(s1, s2 string) float64 {
	distance := sm.LevenshteinDistance(s1, s2)
	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// CombinedSimilarity is the weighted blend the alias lookup uses as its
// normalized score. Identical inputs short-circuit to 1.0.
func (sm *SimilarityMetrics) CombinedSimilarity(text1, text2 string) float64 {
	norm1 := strings.ToLower(strings.TrimSpace(text1))
	norm2 := strings.ToLower(strings.TrimSpace(text2))

	if norm1 == norm2 {
		return 1.0
	}

	jaccard := sm.JaccardIndex(norm1, norm2)
	cosine := sm.CosineSimilarity(norm1, norm2)
	levenshtein := sm.LevenshteinSimilarity(norm1, norm2)
	damerau := sm.DamerauLevenshteinSimilarity(norm1, norm2)

	return jaccard*0.2 + cosine*0.3 + levenshtein*0.3 + damerau*0.2
}

// tokenSet splits text into a set of stemmed tokens with punctuation
// trimmed.
func (sm *SimilarityMetrics) tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		cleaned := trimNonAlnum(token)
		if cleaned != "" {
			set[sm.stemmer.StemWithCache(cleaned)] = true
		}
	}
	return set
}

// termVector builds a normalized term-frequency vector of stemmed tokens.
func (sm *SimilarityMetrics) termVector(text string) map[string]float64 {
	freq := make(map[string]int)
	total := 0
	for _, token := range strings.Fields(strings.ToLower(text)) {
		cleaned := trimNonAlnum(token)
		if cleaned != "" {
			freq[sm.stemmer.StemWithCache(cleaned)]++
			total++
		}
	}

	vector := make(map[string]float64, len(freq))
	if total > 0 {
		for token, count := range freq {
			vector[token] = float64(count) / float64(total)
		}
	}
	return vector
}

func trimNonAlnum(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
