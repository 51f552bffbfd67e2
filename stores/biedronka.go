package stores

// NewBiedronka builds the strategy for Biedronka receipts. Receipts carry the
// Jeronimo Martins header, RABAT rows under promo items and Moja Biedronka
// loyalty stamps the extractor tends to read as products.
func NewBiedronka(opts Options) Strategy {
	opts = opts.withDefaults()
	return &chainStrategy{
		profile: &StoreProfile{
			Name: "Biedronka",
			DetectionPatterns: compilePatterns([]string{
				`(?i)biedronka`,
				`(?i)jeronimo\s+martins`,
			}),
			MergesDiscounts:  true,
			ReparsesWeighted: true,
			DropsJunk:        true,
		},
		junkPatterns: compilePatterns(junkExprs(
			`(?i)karta moja biedronka`,
			`(?i)^\s*liczba sprzedanych`,
		)),
		tolerance: opts.MathTolerance,
	}
}
