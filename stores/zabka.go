package stores

// NewZabka builds the strategy for Żabka receipts. Żabka is a convenience
// format without scale items, so weighted reparsing stays off; żappka app
// stamps and promo rows still need cleanup.
func NewZabka(opts Options) Strategy {
	opts = opts.withDefaults()
	return &chainStrategy{
		profile: &StoreProfile{
			Name: "Żabka",
			DetectionPatterns: compilePatterns([]string{
				`(?i)[żz]abka`,
			}),
			MergesDiscounts:  true,
			ReparsesWeighted: false,
			DropsJunk:        true,
		},
		junkPatterns: compilePatterns(junkExprs(
			`(?i)[żz]appka`,
		)),
		tolerance: opts.MathTolerance,
	}
}
