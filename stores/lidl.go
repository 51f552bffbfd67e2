package stores

import "github.com/shopspring/decimal"

// NewLidl builds the strategy for Lidl receipts. Lidl prints Lidl Plus
// coupon discounts either as RABAT rows or silently as a line shortfall
// matching one of the fixed coupon amounts.
func NewLidl(opts Options) Strategy {
	opts = opts.withDefaults()
	return &chainStrategy{
		profile: &StoreProfile{
			Name: "Lidl",
			DetectionPatterns: compilePatterns([]string{
				`(?i)\blidl\b`,
			}),
			MergesDiscounts:  true,
			ReparsesWeighted: true,
			DropsJunk:        true,
			CardDiscounts: []CardDiscount{
				{Label: "Lidl Plus coupon", Amount: decimal.NewFromFloat(1.00), Tolerance: decimal.NewFromFloat(0.02)},
				{Label: "Lidl Plus coupon", Amount: decimal.NewFromFloat(2.50), Tolerance: decimal.NewFromFloat(0.02)},
			},
		},
		junkPatterns: compilePatterns(junkExprs(
			`(?i)^\s*lidl plus\b`,
		)),
		tolerance: opts.MathTolerance,
	}
}
