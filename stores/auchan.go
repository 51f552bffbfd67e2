package stores

// NewAuchan builds the strategy for Auchan receipts. Hypermarket receipts
// are long, scale-item heavy and carry Skarbonka loyalty stamps.
func NewAuchan(opts Options) Strategy {
	opts = opts.withDefaults()
	return &chainStrategy{
		profile: &StoreProfile{
			Name: "Auchan",
			DetectionPatterns: compilePatterns([]string{
				`(?i)auchan`,
			}),
			MergesDiscounts:  true,
			ReparsesWeighted: true,
			DropsJunk:        true,
		},
		junkPatterns: compilePatterns(junkExprs(
			`(?i)skarbonka`,
		)),
		tolerance: opts.MathTolerance,
	}
}
