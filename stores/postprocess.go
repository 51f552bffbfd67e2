package stores

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"receiptserver/receipt"
)

// discountLinePattern matches extraction rows that are discount lines rather
// than products. Polish receipts print these as RABAT, OPUST or UPUST rows,
// usually with a percentage or a negative amount on the same line.
var discountLinePattern = regexp.MustCompile(`(?i)^\s*(rabat|opust|upust)\b`)

// commonJunkExprs matches fiscal artifacts every Polish receipt carries:
// totals, tax blocks, payment and change lines. Chains extend this list with
// their own loyalty stamps.
var commonJunkExprs = []string{
	`(?i)^\s*suma\b`,
	`(?i)^\s*razem\b`,
	`(?i)^\s*sprzeda[żz] opodatk`,
	`(?i)^\s*ptu\b`,
	`(?i)^\s*podatek\b`,
	`(?i)^\s*paragon fiskalny`,
	`(?i)^\s*got[óo]wka\b`,
	`(?i)^\s*karta p[łl]atnicza`,
	`(?i)^\s*reszta\b`,
	`(?i)^\s*nr\s*sys\b`,
}

// junkExprs combines the common fiscal artifacts with chain-specific ones.
func junkExprs(chainSpecific ...string) []string {
	out := make([]string, 0, len(commonJunkExprs)+len(chainSpecific))
	out = append(out, commonJunkExprs...)
	out = append(out, chainSpecific...)
	return out
}

// grams-to-kilograms reparse only fires above this quantity. Real piece
// counts on grocery receipts stay far below it.
var weightReparseMinQty = decimal.NewFromInt(50)

var thousand = decimal.NewFromInt(1000)

// safePostProcess runs fn and converts a panic into the never-fail contract:
// the caller gets its input back unchanged plus a diagnostic.
func safePostProcess(store string, items []receipt.RawLineItem, fn func() ([]receipt.RawLineItem, []string)) (out []receipt.RawLineItem, diags []string) {
	defer func() {
		if r := recover(); r != nil {
			out = items
			diags = []string{diagf(store, "post-processing aborted on unexpected structure: %v", r)}
		}
	}()
	return fn()
}

// isDiscountLine reports whether the row is a discount line: a RABAT-style
// name together with a non-positive line total. A RABAT-style name with a
// positive total is ambiguous and is not treated as a discount.
func isDiscountLine(item receipt.RawLineItem) bool {
	return discountLinePattern.MatchString(item.RawName) && item.LineTotal.LessThanOrEqual(decimal.Zero)
}

// foldDiscountLines merges discount lines into the product line immediately
// preceding them and drops the merged rows. Extractors emit the product total
// either gross (the discount row follows it) or already net; after folding,
// the target's total is reduced by the folded amount only when the line
// arithmetic confirms the gross reading. A discount line whose immediate
// predecessor in the original sequence is not a product line cannot be
// attributed safely; it is kept as-is and reported in the diagnostics.
func foldDiscountLines(store string, items []receipt.RawLineItem, tolerance decimal.Decimal) ([]receipt.RawLineItem, []string) {
	out := make([]receipt.RawLineItem, 0, len(items))
	var diags []string

	prevWasProduct := false
	for i, item := range items {
		if !isDiscountLine(item) {
			out = append(out, item)
			prevWasProduct = true
			continue
		}

		if !prevWasProduct || len(out) == 0 {
			out = append(out, item)
			if discountLinePattern.MatchString(item.RawName) {
				diags = append(diags, diagf(store, "discount line %d (%q) has no preceding product line, left unmerged", i, item.RawName))
			}
			prevWasProduct = false
			continue
		}

		amount := item.LineTotal.Abs()
		target := &out[len(out)-1]
		target.Discount = decimal.NewNullDecimal(target.DiscountOrZero().Add(amount))

		expected := target.Quantity.Mul(target.UnitPrice).Sub(target.DiscountOrZero())
		if expected.Sub(target.LineTotal).Abs().GreaterThan(tolerance) {
			netted := target.LineTotal.Sub(amount)
			if expected.Sub(netted).Abs().LessThanOrEqual(tolerance) {
				target.LineTotal = netted
			}
		}
		prevWasProduct = false
	}

	return out, diags
}

// dropJunkLines removes rows whose names match the chain's junk patterns:
// fiscal summaries, loyalty-card stamps, section headers the extractor
// mistook for products.
func dropJunkLines(store string, items []receipt.RawLineItem, patterns []*regexp.Regexp) ([]receipt.RawLineItem, []string) {
	if len(patterns) == 0 {
		return items, nil
	}

	out := make([]receipt.RawLineItem, 0, len(items))
	var diags []string

	for _, item := range items {
		junk := false
		for _, p := range patterns {
			if p.MatchString(item.RawName) {
				junk = true
				break
			}
		}
		if junk {
			diags = append(diags, diagf(store, "dropped junk line %d (%q)", item.LineIndex, item.RawName))
			continue
		}
		out = append(out, item)
	}

	return out, diags
}

// reparseWeightedItems repairs weighted items whose quantity lost its decimal
// separator during OCR. A 0.356 kg line read as quantity 356 satisfies
// qty/1000 * price = total, so the shifted quantity is restored only when
// the arithmetic confirms it within the currency tolerance.
func reparseWeightedItems(store string, items []receipt.RawLineItem, tolerance decimal.Decimal) ([]receipt.RawLineItem, []string) {
	out := make([]receipt.RawLineItem, len(items))
	copy(out, items)
	var diags []string

	for i, item := range out {
		if item.Quantity.LessThan(weightReparseMinQty) || !item.Quantity.IsInteger() {
			continue
		}
		if item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			continue
		}

		shifted := item.Quantity.Div(thousand)
		expected := shifted.Mul(item.UnitPrice).Sub(item.DiscountOrZero())
		if expected.Sub(item.LineTotal).Abs().GreaterThan(tolerance) {
			continue
		}

		out[i].Quantity = shifted
		diags = append(diags, diagf(store, "line %d (%q): reparsed weighted quantity %s as %s kg", item.LineIndex, item.RawName, item.Quantity.String(), shifted.String()))
	}

	return out, diags
}

// applyCardDiscounts attributes unexplained line shortfalls to known fixed
// loyalty-card discounts. Only lines without an extracted discount are
// considered, and only when the shortfall sits within the card constant's
// tolerance.
func applyCardDiscounts(store string, items []receipt.RawLineItem, cards []CardDiscount) ([]receipt.RawLineItem, []string) {
	if len(cards) == 0 {
		return items, nil
	}

	out := make([]receipt.RawLineItem, len(items))
	copy(out, items)
	var diags []string

	for i, item := range out {
		if item.Discount.Valid {
			continue
		}
		shortfall := item.Quantity.Mul(item.UnitPrice).Sub(item.LineTotal)
		if shortfall.LessThanOrEqual(decimal.Zero) {
			continue
		}

		for _, card := range cards {
			if shortfall.Sub(card.Amount).Abs().LessThanOrEqual(card.Tolerance) {
				out[i].Discount = decimal.NewNullDecimal(card.Amount)
				diags = append(diags, diagf(store, "line %d (%q): attributed %s shortfall to %s", item.LineIndex, item.RawName, card.Amount.String(), card.Label))
				break
			}
		}
	}

	return out, diags
}

// chainStrategy is the common implementation all chain strategies share.
// Each chain contributes a profile plus its junk patterns; the pipeline of
// repairs is fixed and driven by the profile's capability flags.
type chainStrategy struct {
	profile      *StoreProfile
	junkPatterns []*regexp.Regexp
	tolerance    decimal.Decimal
}

func (s *chainStrategy) Profile() *StoreProfile {
	return s.profile
}

func (s *chainStrategy) PostProcess(items []receipt.RawLineItem, ocrText string) ([]receipt.RawLineItem, []string) {
	return safePostProcess(s.profile.Name, items, func() ([]receipt.RawLineItem, []string) {
		out := items
		var diags []string

		if s.profile.DropsJunk {
			var d []string
			out, d = dropJunkLines(s.profile.Name, out, s.junkPatterns)
			diags = append(diags, d...)
		}
		if s.profile.MergesDiscounts {
			var d []string
			out, d = foldDiscountLines(s.profile.Name, out, s.tolerance)
			diags = append(diags, d...)
		}
		if s.profile.ReparsesWeighted {
			var d []string
			out, d = reparseWeightedItems(s.profile.Name, out, s.tolerance)
			diags = append(diags, d...)
		}
		if len(s.profile.CardDiscounts) > 0 {
			var d []string
			out, d = applyCardDiscounts(s.profile.Name, out, s.profile.CardDiscounts)
			diags = append(diags, d...)
		}

		return out, diags
	})
}

// compilePatterns compiles a pattern list at registration time. Patterns are
// static literals, so a failure here is a programming error.
func compilePatterns(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// containsFold is a small helper for hint matching in tests and callers.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
