package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage identifies the pipeline stage that produced a normalization result.
type Stage string

const (
	StageCleanup    Stage = "cleanup"
	StageStaticRule Stage = "static_rule"
	StageAlias      Stage = "alias"
	StageModel      Stage = "model"
	StageUser       Stage = "user"
)

// ExtractedReceipt is the structured record produced by the OCR/model
// extraction collaborator for a single receipt. The pipeline consumes it
// as-is and never performs extraction itself.
type ExtractedReceipt struct {
	StoreHint   string              `json:"store_hint,omitempty"`
	RawText     string              `json:"raw_text"`
	PurchasedAt string              `json:"purchased_at,omitempty"`
	Total       decimal.NullDecimal `json:"total,omitempty"`
	Items       []RawLineItem       `json:"items"`
}

// RawLineItem is a single unvalidated product entry as extracted from a
// receipt. The store post-processor may mutate or drop it; once handed to
// the normalization pipeline it is treated as immutable.
type RawLineItem struct {
	RawName   string              `json:"raw_name"`
	Quantity  decimal.Decimal     `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	LineTotal decimal.Decimal     `json:"line_total"`
	Discount  decimal.NullDecimal `json:"discount,omitempty"`
	LineIndex int                 `json:"line_index"`
}

// DiscountOrZero returns the discount value, or zero when the extraction
// produced no discount field for the line.
func (r RawLineItem) DiscountOrZero() decimal.Decimal {
	if r.Discount.Valid {
		return r.Discount.Decimal
	}
	return decimal.Zero
}

// VerifiedLineItem is a RawLineItem after arithmetic verification. Discount
// holds the resolved (possibly inferred) value. Invariant for items not
// flagged Inconsistent: |Quantity×UnitPrice − Discount − LineTotal| ≤ the
// configured math tolerance.
type VerifiedLineItem struct {
	RawName      string          `json:"raw_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Discount     decimal.Decimal `json:"discount"`
	LineIndex    int             `json:"line_index"`
	Corrected    bool            `json:"corrected"`
	Inconsistent bool            `json:"inconsistent"`
}

// NormalizationResult is the pipeline's verdict for one raw product name.
// ModelSuggestionRaw preserves the unparsed model output for audit when the
// result came from the model stage. Warning carries non-fatal annotations,
// e.g. "unconfirmed" after a confirmation timeout.
type NormalizationResult struct {
	CanonicalName      string  `json:"canonical_name"`
	Confidence         float64 `json:"confidence"`
	Stage              Stage   `json:"stage"`
	ModelSuggestionRaw string  `json:"model_suggestion_raw,omitempty"`
	Warning            string  `json:"warning,omitempty"`
}

// ConfirmedExample is a prior user-confirmed raw-to-canonical mapping. A
// handful of these go into the model prompt as guidance.
type ConfirmedExample struct {
	RawName       string `json:"raw_name"`
	CanonicalName string `json:"canonical_name"`
}

// ModelSuggestion is a single name resolution proposed by a model backend.
// Skip marks names the model explicitly declined to resolve.
type ModelSuggestion struct {
	Name string `json:"name"`
	Skip bool   `json:"skip,omitempty"`
	Raw  string `json:"-"`
}

// AliasRecord maps a previously seen raw name to a canonical product name.
// Store scopes the mapping; an empty store means the alias applies globally.
// Records are created on confident resolutions or user confirmations and are
// never deleted automatically.
type AliasRecord struct {
	ID            int64     `json:"id,omitempty"`
	RawName       string    `json:"raw_name"`
	CanonicalName string    `json:"canonical_name"`
	Store         string    `json:"store,omitempty"`
	Confidence    float64   `json:"confidence"`
	Origin        Stage     `json:"origin,omitempty"`
	SeenCount     int       `json:"seen_count,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// ProcessedItem pairs the verified line item with its normalization result.
type ProcessedItem struct {
	Verified      VerifiedLineItem    `json:"verified_item"`
	Normalization NormalizationResult `json:"normalization"`
}

// ProcessedReceipt is the pipeline output for one receipt, ready for the
// persistence collaborator.
type ProcessedReceipt struct {
	ID          string          `json:"id"`
	Store       string          `json:"store"`
	StoreHint   string          `json:"store_hint,omitempty"`
	PurchasedAt string          `json:"purchased_at,omitempty"`
	Items       []ProcessedItem `json:"items"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InconsistentCount returns how many items failed arithmetic verification.
func (p *ProcessedReceipt) InconsistentCount() int {
	n := 0
	for _, it := range p.Items {
		if it.Verified.Inconsistent {
			n++
		}
	}
	return n
}
