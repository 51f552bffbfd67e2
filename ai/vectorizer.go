package ai

import (
	"math"
	"strings"
)

// Vector is a sparse term-frequency vector over character trigrams with a
// precomputed Euclidean norm.
type Vector struct {
	terms map[string]float64
	norm  float64
}

// Vectorizer embeds cleaned product names as character-trigram frequency
// vectors. Trigrams tolerate the truncations and misspellings typical of
// receipt text better than word tokens.
type Vectorizer struct {
	n int
}

// NewVectorizer creates a trigram vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{n: 3}
}

// Vectorize embeds the given text. Short inputs are padded so even
// one-letter names produce a vector.
func (v *Vectorizer) Vectorize(text string) Vector {
	runes := []rune(strings.ToLower(strings.TrimSpace(text)))
	if len(runes) == 0 {
		return Vector{terms: map[string]float64{}}
	}

	padding := make([]rune, v.n-1)
	for i := range padding {
		padding[i] = '_'
	}
	padded := append(append(append([]rune{}, padding...), runes...), padding...)

	terms := make(map[string]float64)
	for i := 0; i+v.n <= len(padded); i++ {
		gram := string(padded[i : i+v.n])
		if strings.Count(gram, "_") == v.n {
			continue
		}
		terms[gram]++
	}

	var sumSquares float64
	for _, freq := range terms {
		sumSquares += freq * freq
	}

	return Vector{terms: terms, norm: math.Sqrt(sumSquares)}
}

// Cosine returns the cosine similarity of two vectors in [0, 1].
func Cosine(a, b Vector) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}

	// iterate over the smaller map
	small, large := a.terms, b.terms
	if len(large) < len(small) {
		small, large = large, small
	}

	var dot float64
	for gram, freq := range small {
		if other, ok := large[gram]; ok {
			dot += freq * other
		}
	}

	return dot / (a.norm * b.norm)
}
