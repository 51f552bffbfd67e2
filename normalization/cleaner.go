// Package normalization resolves raw receipt product text to canonical
// product names. The pipeline runs five ordered stages over each name:
// deterministic cleanup, static rule matching, alias fuzzy lookup, a batched
// model fallback and finally user confirmation. Every stage either resolves
// with a confidence score or passes the name to the next one.
package normalization

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Cleanup patterns. Receipt lines carry pricing fragments, tax codes and
// promotional noise around the product text; these tables strip them while
// keeping the words that identify the product.
var (
	// trailing price with an optional VAT letter, as printed at the end
	// of a line: "4,99A", "12.50 B".
	trailingPricePattern = regexp.MustCompile(`\s+\d+[.,]\d{2}\s*[A-HW]?\s*$`)

	// a line that is nothing but a price with an optional VAT letter
	barePricePattern = regexp.MustCompile(`^\s*\d+[.,]\d{2}\s*[A-HW]?\s*$`)

	// embedded quantity times price fragments: "2 x 3,49", "3*4.20 = 12,60"
	qtyPricePattern = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*[x*]\s*\d+[.,]\d{2}(?:\s*=?\s*\d+[.,]\d{2})?`)

	// promotional boilerplate words printed next to discounted products
	promoPattern = regexp.MustCompile(`(?i)\b(promocja|promo|okazja|super\s+cena|cena\s+reg\.?)\b`)

	// percentage fragments such as fat content: "3,2%", "18%"
	percentPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*%`)

	// packaging size fragments: "1L", "500g", "0,5 l", "4 szt"
	unitPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:l|ml|g|kg|szt|sztuk|op|pak)\b\.?`)

	// leftover standalone numbers
	numberPattern = regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// keyStopwords are descriptor tokens that never distinguish products in the
// matching key: processing marks, origin labels, promo leftovers.
var keyStopwords = map[string]bool{
	"uht":    true,
	"bio":    true,
	"eko":    true,
	"eco":    true,
	"luz":    true,
	"gratis": true,
}

// polishFold maps the letters NFD decomposition does not cover.
var polishFold = strings.NewReplacer("ł", "l", "Ł", "L")

// Cleaner implements the cleanup stage. It is stateless and safe for
// concurrent use.
type Cleaner struct {
	fold transform.Transformer
}

// NewCleaner builds a cleaner. The diacritics transform decomposes to NFD,
// drops combining marks and recomposes, turning "żółty" into "zolty".
func NewCleaner() *Cleaner {
	return &Cleaner{
		fold: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Clean returns the display form of a raw product name: pricing fragments,
// tax codes and promotional noise removed, whitespace collapsed, letter case
// preserved. Cleaning always succeeds; the result may be empty when the line
// held no product text at all.
func (c *Cleaner) Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = barePricePattern.ReplaceAllString(s, "")
	s = qtyPricePattern.ReplaceAllString(s, " ")
	s = trailingPricePattern.ReplaceAllString(s, "")
	s = promoPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Key returns the matching key for a raw product name: the cleaned form
// lowercased, diacritics folded, size/percent/number fragments and stopword
// descriptors removed. Static rules and the alias index match on this key.
func (c *Cleaner) Key(raw string) string {
	s := strings.ToLower(c.Clean(raw))
	s = c.foldDiacritics(s)
	s = percentPattern.ReplaceAllString(s, " ")
	s = unitPattern.ReplaceAllString(s, " ")
	s = numberPattern.ReplaceAllString(s, " ")
	s = stripPunctuation(s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if !keyStopwords[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// foldDiacritics converts Polish diacritics to their ASCII base letters.
func (c *Cleaner) foldDiacritics(s string) string {
	s = polishFold.Replace(s)
	folded, _, err := transform.String(c.fold, s)
	if err != nil {
		return s
	}
	return folded
}

// stripPunctuation replaces punctuation with spaces so token boundaries
// survive aggressive fragment removal.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return ' '
	}, s)
}
