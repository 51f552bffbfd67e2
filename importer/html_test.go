package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseEReceiptHTMLTable(t *testing.T) {
	page := `<html><head><title>eParagon</title></head><body>
<h1>Biedronka</h1>
<div>Data sprzedaży: 2026-08-14 17:32</div>
<table>
<tr><th>Nazwa</th><th>Ilość</th><th>Cena</th><th>Wartość</th></tr>
<tr><td>MLEKO 3.2% UHT 1L</td><td>1</td><td>4,99</td><td>4,99A</td></tr>
<tr><td>MASŁO EXTRA 200G</td><td>2</td><td>7,49</td><td>14,98A</td></tr>
</table>
<p>SUMA PLN 19,97</p>
</body></html>`

	extracted, err := ParseEReceiptHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseEReceiptHTML failed: %v", err)
	}
	if extracted.StoreHint != "Biedronka" {
		t.Errorf("store hint = %q, want Biedronka", extracted.StoreHint)
	}
	if extracted.PurchasedAt != "2026-08-14 17:32" {
		t.Errorf("purchased_at = %q", extracted.PurchasedAt)
	}
	if !extracted.Total.Valid || !extracted.Total.Decimal.Equal(decimal.RequireFromString("19.97")) {
		t.Errorf("total = %+v, want 19.97", extracted.Total)
	}

	if len(extracted.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(extracted.Items))
	}
	milk := extracted.Items[0]
	if milk.RawName != "MLEKO 3.2% UHT 1L" {
		t.Errorf("raw name = %q", milk.RawName)
	}
	if !milk.Quantity.Equal(decimal.NewFromInt(1)) ||
		!milk.UnitPrice.Equal(decimal.RequireFromString("4.99")) ||
		!milk.LineTotal.Equal(decimal.RequireFromString("4.99")) {
		t.Errorf("unexpected amounts: %+v", milk)
	}
	if extracted.Items[1].LineIndex != 1 {
		t.Errorf("line index = %d, want 1", extracted.Items[1].LineIndex)
	}
	if !strings.Contains(extracted.RawText, "MLEKO 3.2% UHT 1L") {
		t.Errorf("raw text is missing the product line: %q", extracted.RawText)
	}
}

func TestParseEReceiptHTMLTextFallback(t *testing.T) {
	page := `<html><body>
<div class="store-name">Żabka Z1234</div>
<p>MLEKO ŁACIATE 1 x 4,99 4,99A</p>
<p>CHLEB GRAHAM 2 x 3,49 6,98B</p>
<p>RAZEM 11,97</p>
</body></html>`

	extracted, err := ParseEReceiptHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseEReceiptHTML failed: %v", err)
	}
	if extracted.StoreHint != "Żabka Z1234" {
		t.Errorf("store hint = %q", extracted.StoreHint)
	}
	if len(extracted.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(extracted.Items))
	}
	if extracted.Items[0].RawName != "MLEKO ŁACIATE" {
		t.Errorf("raw name = %q, want MLEKO ŁACIATE", extracted.Items[0].RawName)
	}
	if !extracted.Items[1].UnitPrice.Equal(decimal.RequireFromString("3.49")) {
		t.Errorf("unit price = %v, want 3.49", extracted.Items[1].UnitPrice)
	}
	if extracted.Items[1].LineIndex != 1 {
		t.Errorf("line index = %d, want 1", extracted.Items[1].LineIndex)
	}
	if extracted.Total.Valid {
		t.Errorf("expected no printed total, got %v", extracted.Total.Decimal)
	}
}

func TestParseEReceiptHTMLWeightedLine(t *testing.T) {
	page := `<html><body><table>
<tr><td>SCHAB WIEPRZOWY</td><td>0,356</td><td>32,50</td><td>11,57C</td></tr>
<tr><td>filler</td><td>-</td><td>-</td><td>-</td></tr>
</table></body></html>`

	extracted, err := ParseEReceiptHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseEReceiptHTML failed: %v", err)
	}
	if len(extracted.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(extracted.Items))
	}
	if !extracted.Items[0].Quantity.Equal(decimal.RequireFromString("0.356")) {
		t.Errorf("quantity = %v, want 0.356", extracted.Items[0].Quantity)
	}
}

func TestParseEReceiptHTMLNoItems(t *testing.T) {
	page := `<html><body><p>Dziękujemy za zakupy!</p></body></html>`
	if _, err := ParseEReceiptHTML(strings.NewReader(page)); err == nil {
		t.Fatal("expected an error for a document without product lines")
	}
}
