// Package stores implements store detection and store-specific receipt
// post-processing. Each supported chain is a Strategy: it owns a StoreProfile
// with detection patterns and capability flags, and a post-processor that
// repairs the chain's known extraction quirks (discount lines, weighted
// items, junk rows). Post-processors never fail; on unexpected structure
// they hand the input back unchanged with a diagnostic.
package stores

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"receiptserver/receipt"
)

// StoreProfile identifies a store chain and what its post-processor is
// allowed to do. Profiles are static: built once at startup, selected per
// receipt, never mutated.
type StoreProfile struct {
	Name              string
	DetectionPatterns []*regexp.Regexp
	MergesDiscounts   bool
	ReparsesWeighted  bool
	DropsJunk         bool
	CardDiscounts     []CardDiscount
}

// CardDiscount is a known fixed loyalty-card discount for a chain. A line
// shortfall within Tolerance of Amount is attributed to this discount.
// This is a documented heuristic, not a guarantee.
type CardDiscount struct {
	Label     string
	Amount    decimal.Decimal
	Tolerance decimal.Decimal
}

// Strategy couples a store profile with its post-processor.
type Strategy interface {
	Profile() *StoreProfile

	// PostProcess repairs the extracted line items using the chain's
	// conventions and returns the repaired items plus non-fatal
	// diagnostics. It must never fail: malformed input comes back
	// unchanged with a diagnostic.
	PostProcess(items []receipt.RawLineItem, ocrText string) ([]receipt.RawLineItem, []string)
}

// Options carries the tunables the strategies need. Values come from the
// application configuration.
type Options struct {
	// DetectionPrefixLen bounds how much of the raw text is scanned for
	// store detection patterns.
	DetectionPrefixLen int

	// MathTolerance is the currency tolerance shared with the verifier;
	// weighted-item reparsing uses it to validate a decimal-shift fix.
	MathTolerance decimal.Decimal
}

// DefaultOptions returns the options used when the caller passes zero values.
func DefaultOptions() Options {
	return Options{
		DetectionPrefixLen: 512,
		MathTolerance:      decimal.NewFromFloat(0.01),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.DetectionPrefixLen <= 0 {
		o.DetectionPrefixLen = def.DetectionPrefixLen
	}
	if o.MathTolerance.LessThanOrEqual(decimal.Zero) {
		o.MathTolerance = def.MathTolerance
	}
	return o
}

// Detector selects a strategy for a receipt. Strategies are tried in
// registration order against a bounded prefix of the raw text; the first
// matching pattern wins. No match falls back to the generic strategy.
type Detector struct {
	strategies []Strategy
	generic    Strategy
	prefixLen  int
}

// NewDetector builds a detector over the full set of supported chains.
func NewDetector(opts Options) *Detector {
	opts = opts.withDefaults()
	return &Detector{
		strategies: []Strategy{
			NewBiedronka(opts),
			NewLidl(opts),
			NewZabka(opts),
			NewKaufland(opts),
			NewAuchan(opts),
		},
		generic:   NewGeneric(opts),
		prefixLen: opts.DetectionPrefixLen,
	}
}

// Detect returns the strategy for the receipt. The store hint, when present,
// is matched against store names first; otherwise a bounded prefix of the raw
// text is scanned against each strategy's detection patterns in order.
func (d *Detector) Detect(rawText, storeHint string) Strategy {
	if hint := strings.TrimSpace(storeHint); hint != "" {
		for _, s := range d.strategies {
			if containsFold(hint, s.Profile().Name) || matchesAny(s.Profile().DetectionPatterns, hint) {
				return s
			}
		}
	}

	prefix := boundedPrefix(rawText, d.prefixLen)
	for _, s := range d.strategies {
		if matchesAny(s.Profile().DetectionPatterns, prefix) {
			return s
		}
	}

	return d.generic
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Strategies returns the registered chain strategies, generic excluded.
func (d *Detector) Strategies() []Strategy {
	out := make([]Strategy, len(d.strategies))
	copy(out, d.strategies)
	return out
}

// boundedPrefix cuts the text to at most n runes without splitting a rune.
func boundedPrefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// diagf formats a diagnostic message in a single place so all strategies
// report uniformly.
func diagf(store, format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s", store, fmt.Sprintf(format, args...))
}
