// Package verification cross-checks quantity, unit price, discount and line
// total on extracted line items. Lines that fail the arithmetic get one
// repair attempt (a hidden discount inference); anything still inconsistent
// is flagged and passed through so downstream policy can decide what to do.
package verification

import (
	"github.com/shopspring/decimal"

	"receiptserver/receipt"
)

// Verifier holds the tolerance constants. Verification is a pure function of
// the items and these constants; a Verifier is safe for concurrent use.
type Verifier struct {
	// tolerance is the absolute currency tolerance for accepting a line.
	tolerance decimal.Decimal

	// significantDifference is the smallest shortfall treated as a
	// plausible hidden discount. Shortfalls between tolerance and this
	// value are too small to be real promotions.
	significantDifference decimal.Decimal

	// maxDiscountShare caps an inferred discount at this fraction of the
	// gross line value. A 95% discount is an extraction error, not a promo.
	maxDiscountShare decimal.Decimal
}

// Config carries the verifier tolerances as configuration floats.
type Config struct {
	MathTolerance         float64
	SignificantDifference float64
	MaxDiscountShare      float64
}

// DefaultConfig returns the tolerances used when the caller passes zeroes.
func DefaultConfig() Config {
	return Config{
		MathTolerance:         0.01,
		SignificantDifference: 0.05,
		MaxDiscountShare:      0.90,
	}
}

// NewVerifier builds a verifier from the configuration, falling back to
// defaults for unset values.
func NewVerifier(cfg Config) *Verifier {
	def := DefaultConfig()
	if cfg.MathTolerance <= 0 {
		cfg.MathTolerance = def.MathTolerance
	}
	if cfg.SignificantDifference <= 0 {
		cfg.SignificantDifference = def.SignificantDifference
	}
	if cfg.MaxDiscountShare <= 0 {
		cfg.MaxDiscountShare = def.MaxDiscountShare
	}
	return &Verifier{
		tolerance:             decimal.NewFromFloat(cfg.MathTolerance),
		significantDifference: decimal.NewFromFloat(cfg.SignificantDifference),
		maxDiscountShare:      decimal.NewFromFloat(cfg.MaxDiscountShare),
	}
}

// Verify checks every item and returns the verified copies in input order.
// It never drops a line: unrepairable items come back flagged inconsistent
// with their extracted values untouched.
func (v *Verifier) Verify(items []receipt.RawLineItem) []receipt.VerifiedLineItem {
	out := make([]receipt.VerifiedLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, v.verifyOne(item))
	}
	return out
}

// verifyOne applies the line invariant quantity*unit_price - discount =
// line_total. Discounts are normalized to non-negative amounts regardless of
// how the extraction signed them.
func (v *Verifier) verifyOne(item receipt.RawLineItem) receipt.VerifiedLineItem {
	discount := item.DiscountOrZero().Abs()
	verified := receipt.VerifiedLineItem{
		RawName:   item.RawName,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
		Discount:  discount,
		LineIndex: item.LineIndex,
	}

	expected := item.Quantity.Mul(item.UnitPrice).Sub(discount)
	if expected.Sub(item.LineTotal).Abs().LessThanOrEqual(v.tolerance) {
		return verified
	}

	if inferred, ok := v.inferDiscount(item, discount); ok {
		verified.Discount = inferred
		verified.Corrected = true
		return verified
	}

	verified.Inconsistent = true
	return verified
}

// inferDiscount attributes the line shortfall to an unprinted discount. The
// inference only fires when the extraction produced no discount of its own
// and the shortfall sits inside the plausible band: at least
// significantDifference, at most maxDiscountShare of the gross value.
func (v *Verifier) inferDiscount(item receipt.RawLineItem, extracted decimal.Decimal) (decimal.Decimal, bool) {
	if !extracted.IsZero() {
		return decimal.Zero, false
	}

	gross := item.Quantity.Mul(item.UnitPrice)
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}

	shortfall := gross.Sub(item.LineTotal)
	if shortfall.LessThan(v.significantDifference) {
		return decimal.Zero, false
	}
	if shortfall.GreaterThan(gross.Mul(v.maxDiscountShare)) {
		return decimal.Zero, false
	}

	return shortfall, true
}
