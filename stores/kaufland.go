package stores

import "github.com/shopspring/decimal"

// NewKaufland builds the strategy for Kaufland receipts. K-Card promos show
// up both as RABAT rows and as fixed shortfalls on the discounted line.
func NewKaufland(opts Options) Strategy {
	opts = opts.withDefaults()
	return &chainStrategy{
		profile: &StoreProfile{
			Name: "Kaufland",
			DetectionPatterns: compilePatterns([]string{
				`(?i)kaufland`,
			}),
			MergesDiscounts:  true,
			ReparsesWeighted: true,
			DropsJunk:        true,
			CardDiscounts: []CardDiscount{
				{Label: "K-Card promo", Amount: decimal.NewFromFloat(0.50), Tolerance: decimal.NewFromFloat(0.02)},
				{Label: "K-Card promo", Amount: decimal.NewFromFloat(1.00), Tolerance: decimal.NewFromFloat(0.02)},
			},
		},
		junkPatterns: compilePatterns(junkExprs(
			`(?i)k[- ]?card`,
		)),
		tolerance: opts.MathTolerance,
	}
}
