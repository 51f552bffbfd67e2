package normalization

import "strings"

// characterNGrams generates padded character n-grams from a string. Padding
// keeps the first and last letters represented in as many grams as interior
// ones, which stabilizes similarity on short product names.
func characterNGrams(text string, n int) []string {
	if n < 1 {
		n = 2
	}
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil
	}

	pad := strings.Repeat(" ", n-1)
	runes := []rune(pad + normalized + pad)
	if len(runes) < n {
		return []string{string(runes)}
	}

	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

// characterNGramSimilarity is the Dice coefficient over character n-gram
// sets. Token-level measures degenerate on short names; this one does not.
func characterNGramSimilarity(text1, text2 string, n int) float64 {
	grams1 := characterNGrams(text1, n)
	grams2 := characterNGrams(text2, n)

	if len(grams1) == 0 && len(grams2) == 0 {
		return 1.0
	}
	if len(grams1) == 0 || len(grams2) == 0 {
		return 0.0
	}

	set1 := make(map[string]bool, len(grams1))
	for _, g := range grams1 {
		set1[g] = true
	}
	set2 := make(map[string]bool, len(grams2))
	for _, g := range grams2 {
		set2[g] = true
	}

	intersection := 0
	for g := range set1 {
		if set2[g] {
			intersection++
		}
	}
	return 2.0 * float64(intersection) / float64(len(set1)+len(set2))
}
