package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadExtractionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.json")
	payload := `{
		"store_hint": "Biedronka",
		"raw_text": "BIEDRONKA\nMLEKO 1 x 4,99 4,99",
		"purchased_at": "2026-08-14 17:32",
		"total": 12.48,
		"items": [
			{"raw_name": "MLEKO 3.2% UHT 1L", "quantity": 1, "unit_price": 4.99, "line_total": 4.99, "line_index": 0},
			{"raw_name": "MASŁO EXTRA 200G", "quantity": 1, "unit_price": 7.49, "line_total": 7.49, "line_index": 1}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	extracted, err := LoadExtractionFile(path)
	if err != nil {
		t.Fatalf("LoadExtractionFile failed: %v", err)
	}
	if extracted.StoreHint != "Biedronka" {
		t.Errorf("store hint = %q, want Biedronka", extracted.StoreHint)
	}
	if extracted.PurchasedAt != "2026-08-14 17:32" {
		t.Errorf("purchased_at = %q", extracted.PurchasedAt)
	}
	if !extracted.Total.Valid || !extracted.Total.Decimal.Equal(decimal.RequireFromString("12.48")) {
		t.Errorf("total = %+v, want 12.48", extracted.Total)
	}
	if len(extracted.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(extracted.Items))
	}
	if !extracted.Items[0].UnitPrice.Equal(decimal.RequireFromString("4.99")) {
		t.Errorf("unit price = %v, want 4.99", extracted.Items[0].UnitPrice)
	}
	if extracted.Items[1].LineIndex != 1 {
		t.Errorf("line index = %d, want 1", extracted.Items[1].LineIndex)
	}
	if extracted.Items[1].Discount.Valid {
		t.Error("expected no discount on the fixture item")
	}
}

func TestParseExtractionNumbersUnindexedLines(t *testing.T) {
	payload := `{"items": [
		{"raw_name": "A", "quantity": 1, "unit_price": 1, "line_total": 1},
		{"raw_name": "B", "quantity": 1, "unit_price": 2, "line_total": 2},
		{"raw_name": "C", "quantity": 1, "unit_price": 3, "line_total": 3}
	]}`

	extracted, err := ParseExtraction([]byte(payload))
	if err != nil {
		t.Fatalf("ParseExtraction failed: %v", err)
	}
	for i, item := range extracted.Items {
		if item.LineIndex != i {
			t.Errorf("item %d: line index = %d", i, item.LineIndex)
		}
	}
}

func TestParseExtractionBadJSON(t *testing.T) {
	if _, err := ParseExtraction([]byte("{broken")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestParseExtractionRepairsLegacyEncoding(t *testing.T) {
	// raw_name carries "MASŁO" in Windows-1250, with Ł as the byte 0xA3.
	payload := []byte(`{"raw_text": "PARAGON FISKALNY", "items": [{"raw_name": "MAS` + "\xa3" +
		`O EXTRA", "quantity": 1, "unit_price": 7.49, "line_total": 7.49}]}`)

	extracted, err := ParseExtraction(payload)
	if err != nil {
		t.Fatalf("ParseExtraction failed: %v", err)
	}
	if len(extracted.Items) != 1 || extracted.Items[0].RawName != "MASŁO EXTRA" {
		t.Errorf("expected the repaired name, got %+v", extracted.Items)
	}
}

func TestLoadExtractionDirSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	valid := `{"items": [{"raw_name": "MLEKO", "quantity": 1, "unit_price": 4.99, "line_total": 4.99}]}`
	files := map[string]string{
		"a.json":      valid,
		"b.json":      valid,
		"broken.json": "{not json",
		"notes.txt":   "not a receipt",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	loaded, err := LoadExtractionDir(dir)
	if err != nil {
		t.Fatalf("LoadExtractionDir failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 loaded files, got %d", len(loaded))
	}
	if filepath.Base(loaded[0].Path) != "a.json" || filepath.Base(loaded[1].Path) != "b.json" {
		t.Errorf("unexpected order: %s, %s", loaded[0].Path, loaded[1].Path)
	}
}
