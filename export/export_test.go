package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"receiptserver/receipt"
)

func sampleReceipts() []*receipt.ProcessedReceipt {
	return []*receipt.ProcessedReceipt{
		{
			ID:          "rcpt-1",
			Store:       "Biedronka",
			PurchasedAt: "2026-08-14 17:32",
			CreatedAt:   time.Date(2026, 8, 14, 17, 40, 0, 0, time.UTC),
			Items: []receipt.ProcessedItem{
				{
					Verified: receipt.VerifiedLineItem{
						RawName:   "MLEKO 3.2% UHT 1L",
						Quantity:  decimal.RequireFromString("1"),
						UnitPrice: decimal.RequireFromString("4.99"),
						LineTotal: decimal.RequireFromString("3.99"),
						Discount:  decimal.RequireFromString("1.00"),
						LineIndex: 0,
					},
					Normalization: receipt.NormalizationResult{
						CanonicalName: "Mleko",
						Confidence:    0.98,
						Stage:         receipt.StageStaticRule,
					},
				},
				{
					Verified: receipt.VerifiedLineItem{
						RawName:      "PANIERKA",
						Quantity:     decimal.RequireFromString("2"),
						UnitPrice:    decimal.RequireFromString("3.00"),
						LineTotal:    decimal.RequireFromString("9.00"),
						Discount:     decimal.Zero,
						LineIndex:    1,
						Inconsistent: true,
					},
					Normalization: receipt.NormalizationResult{
						CanonicalName: "Panierka",
						Confidence:    0.70,
						Stage:         receipt.StageModel,
						Warning:       "arithmetic mismatch",
					},
				},
			},
		},
	}
}

func TestRowsFlattenReceipts(t *testing.T) {
	rows := Rows(sampleReceipts())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.ReceiptID != "rcpt-1" || first.Store != "Biedronka" {
		t.Errorf("receipt context missing: %+v", first)
	}
	if first.Quantity != "1" || first.UnitPrice != "4.99" || first.Discount != "1.00" {
		t.Errorf("unexpected amounts: %+v", first)
	}
	if !rows[1].Inconsistent || rows[1].Warning != "arithmetic mismatch" {
		t.Errorf("verification flags missing: %+v", rows[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReceipts()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var envelope struct {
		ExportedAt string `json:"exported_at"`
		Total      int    `json:"total"`
		Items      []Row  `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if envelope.Total != 2 || len(envelope.Items) != 2 {
		t.Errorf("expected 2 items, got total %d, items %d", envelope.Total, len(envelope.Items))
	}
	if envelope.ExportedAt == "" {
		t.Error("expected an export timestamp")
	}
	if envelope.Items[0].CanonicalName != "Mleko" {
		t.Errorf("unexpected first item: %+v", envelope.Items[0])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReceipts()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 records, got %d rows", len(records))
	}
	if records[0][0] != "Receipt ID" || records[0][4] != "Raw Name" {
		t.Errorf("unexpected headers: %v", records[0])
	}
	if records[1][4] != "MLEKO 3.2% UHT 1L" || records[1][9] != "1.00" {
		t.Errorf("unexpected first record: %v", records[1])
	}
	if records[2][10] != "0.70" || records[2][12] != "true" {
		t.Errorf("unexpected second record: %v", records[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReceipts()); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a valid workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Receipts", "A1"); got != "Receipt ID" {
		t.Errorf("A1 = %q, want Receipt ID", got)
	}
	if got, _ := f.GetCellValue("Receipts", "E2"); got != "MLEKO 3.2% UHT 1L" {
		t.Errorf("E2 = %q", got)
	}
	if got, _ := f.GetCellValue("Receipts", "F3"); got != "Panierka" {
		t.Errorf("F3 = %q, want Panierka", got)
	}
}

func TestWriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.json")
	if err := ToFile(path, FormatJSON, sampleReceipts()); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !json.Valid(data) {
		t.Error("export file is not valid JSON")
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"excel", FormatXLSX, false},
		{"xml", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected an error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), sampleReceipts()); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
