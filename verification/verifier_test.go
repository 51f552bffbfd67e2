package verification

import (
	"testing"

	"github.com/shopspring/decimal"

	"receiptserver/receipt"
)

func rawItem(qty, price, total string) receipt.RawLineItem {
	return receipt.RawLineItem{
		RawName:   "Mleko 3,2% 1L",
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
		LineTotal: decimal.RequireFromString(total),
	}
}

func withDiscount(item receipt.RawLineItem, discount string) receipt.RawLineItem {
	item.Discount = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	return item
}

func TestVerify(t *testing.T) {
	v := NewVerifier(DefaultConfig())

	tests := []struct {
		name             string
		item             receipt.RawLineItem
		wantDiscount     string
		wantCorrected    bool
		wantInconsistent bool
	}{
		{
			name:         "exact arithmetic accepted",
			item:         rawItem("2", "3.49", "6.98"),
			wantDiscount: "0",
		},
		{
			name:         "extracted discount accepted",
			item:         withDiscount(rawItem("1", "7.99", "6.49"), "1.50"),
			wantDiscount: "1.50",
		},
		{
			name:         "weighted item within tolerance",
			item:         rawItem("0.356", "12.99", "4.62"),
			wantDiscount: "0",
		},
		{
			name:          "hidden discount inferred",
			item:          rawItem("1", "5.00", "4.00"),
			wantDiscount:  "1.00",
			wantCorrected: true,
		},
		{
			name:             "shortfall below significance is inconsistent",
			item:             rawItem("1", "5.00", "4.97"),
			wantDiscount:     "0",
			wantInconsistent: true,
		},
		{
			name:             "shortfall above discount cap is inconsistent",
			item:             rawItem("1", "5.00", "0.40"),
			wantDiscount:     "0",
			wantInconsistent: true,
		},
		{
			name:             "overcharge is never a discount",
			item:             rawItem("1", "5.00", "6.00"),
			wantDiscount:     "0",
			wantInconsistent: true,
		},
		{
			name:             "mismatched extracted discount is not re-inferred",
			item:             withDiscount(rawItem("1", "10.00", "7.00"), "1.00"),
			wantDiscount:     "1.00",
			wantInconsistent: true,
		},
		{
			name:         "negative-signed discount normalized",
			item:         withDiscount(rawItem("1", "7.99", "6.49"), "-1.50"),
			wantDiscount: "1.50",
		},
		{
			name:         "zero quantity zero total accepted",
			item:         rawItem("0", "3.49", "0"),
			wantDiscount: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Verify([]receipt.RawLineItem{tt.item})
			if len(got) != 1 {
				t.Fatalf("got %d items, want 1", len(got))
			}

			if want := decimal.RequireFromString(tt.wantDiscount); !got[0].Discount.Equal(want) {
				t.Errorf("Discount = %s, want %s", got[0].Discount, want)
			}
			if got[0].Corrected != tt.wantCorrected {
				t.Errorf("Corrected = %v, want %v", got[0].Corrected, tt.wantCorrected)
			}
			if got[0].Inconsistent != tt.wantInconsistent {
				t.Errorf("Inconsistent = %v, want %v", got[0].Inconsistent, tt.wantInconsistent)
			}
		})
	}
}

func TestVerifyKeepsOrderAndCount(t *testing.T) {
	v := NewVerifier(DefaultConfig())
	items := []receipt.RawLineItem{
		rawItem("1", "5.00", "4.00"),
		rawItem("2", "3.49", "6.98"),
		rawItem("1", "5.00", "0.01"),
	}
	for i := range items {
		items[i].LineIndex = i
	}

	got := v.Verify(items)

	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
	for i, item := range got {
		if item.LineIndex != i {
			t.Errorf("item %d has LineIndex %d, want input order preserved", i, item.LineIndex)
		}
	}
	if !got[0].Corrected || got[1].Corrected || !got[2].Inconsistent {
		t.Errorf("flags = [%v/%v, %v/%v, %v/%v], want corrected/clean/inconsistent",
			got[0].Corrected, got[0].Inconsistent,
			got[1].Corrected, got[1].Inconsistent,
			got[2].Corrected, got[2].Inconsistent)
	}
}

func TestVerifierRepairSatisfiesInvariant(t *testing.T) {
	v := NewVerifier(DefaultConfig())

	got := v.Verify([]receipt.RawLineItem{rawItem("3", "4.20", "10.10")})[0]

	if !got.Corrected {
		t.Fatal("expected a corrected item")
	}
	residual := got.Quantity.Mul(got.UnitPrice).Sub(got.Discount).Sub(got.LineTotal).Abs()
	if residual.GreaterThan(decimal.RequireFromString("0.01")) {
		t.Errorf("residual after repair = %s, want within tolerance", residual)
	}
}
