package receipt

// ConfidenceBand is a named range of the [0,1] confidence score. Bands gate
// whether a new alias is persisted automatically or only after confirmation.
type ConfidenceBand string

const (
	BandCertain           ConfidenceBand = "certain"            // ≥ 0.95
	BandHigh              ConfidenceBand = "high"               // 0.80 – 0.95
	BandMedium            ConfidenceBand = "medium"             // 0.60 – 0.80
	BandLow               ConfidenceBand = "low"                // 0.40 – 0.60
	BandNeedsConfirmation ConfidenceBand = "needs_confirmation" // < 0.40
)

// Band thresholds shared by the pipeline and downstream policy.
const (
	CertainThreshold = 0.95
	HighThreshold    = 0.80
	MediumThreshold  = 0.60
	LowThreshold     = 0.40
)

// BandFor maps a confidence score to its band.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= CertainThreshold:
		return BandCertain
	case confidence >= HighThreshold:
		return BandHigh
	case confidence >= MediumThreshold:
		return BandMedium
	case confidence >= LowThreshold:
		return BandLow
	default:
		return BandNeedsConfirmation
	}
}

// Band returns the confidence band of the result.
func (r NormalizationResult) Band() ConfidenceBand {
	return BandFor(r.Confidence)
}
