package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       ConfidenceBand
	}{
		{"certain at threshold", 0.95, BandCertain},
		{"certain above threshold", 1.0, BandCertain},
		{"high upper edge", 0.9499, BandHigh},
		{"high at threshold", 0.80, BandHigh},
		{"medium", 0.70, BandMedium},
		{"medium at threshold", 0.60, BandMedium},
		{"low", 0.45, BandLow},
		{"low at threshold", 0.40, BandLow},
		{"needs confirmation", 0.39, BandNeedsConfirmation},
		{"zero", 0.0, BandNeedsConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BandFor(tt.confidence); got != tt.want {
				t.Errorf("BandFor(%v) = %q, want %q", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"4,99", "4.99", false},
		{"4.99", "4.99", false},
		{"0,356", "0.356", false},
		{"1 234,56", "1234.56", false},
		{"1 234,56", "1234.56", false},
		{"-2,00", "-2", false},
		{"12", "12", false},
		{"", "", true},
		{"   ", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestDiscountOrZero(t *testing.T) {
	item := RawLineItem{RawName: "MLEKO"}
	if !item.DiscountOrZero().IsZero() {
		t.Errorf("missing discount should read as zero, got %s", item.DiscountOrZero())
	}

	item.Discount = decimal.NewNullDecimal(decimal.NewFromFloat(1.50))
	if got := item.DiscountOrZero(); !got.Equal(decimal.NewFromFloat(1.50)) {
		t.Errorf("DiscountOrZero() = %s, want 1.5", got)
	}
}

func TestInconsistentCount(t *testing.T) {
	p := ProcessedReceipt{Items: []ProcessedItem{
		{Verified: VerifiedLineItem{Inconsistent: true}},
		{Verified: VerifiedLineItem{Inconsistent: false}},
		{Verified: VerifiedLineItem{Inconsistent: true}},
	}}
	if got := p.InconsistentCount(); got != 2 {
		t.Errorf("InconsistentCount() = %d, want 2", got)
	}
}
