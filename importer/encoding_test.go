package importer

import (
	"strings"
	"testing"
)

func TestRepairEncodingKeepsCleanText(t *testing.T) {
	text := "PARAGON FISKALNY\nMLEKO ŁACIATE 1 x 4,99 4,99A\nSUMA PLN 4,99"
	if got := RepairEncoding([]byte(text)); got != text {
		t.Errorf("clean UTF-8 was modified:\nwant %q\ngot  %q", text, got)
	}
}

func TestRepairEncodingEmptyInput(t *testing.T) {
	if got := RepairEncoding(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRepairEncodingDecodesWindows1250(t *testing.T) {
	// "MASŁO" and "ŚMIETANA" with Ł as 0xA3 and Ś as 0x8C.
	data := []byte("PARAGON FISKALNY\nMAS\xa3O EXTRA 1 x 7,49 7,49\n\x8cMIETANA 18% 1 x 3,29 3,29")

	got := RepairEncoding(data)
	if !strings.Contains(got, "MASŁO EXTRA") {
		t.Errorf("expected MASŁO in the decoded text, got %q", got)
	}
	if !strings.Contains(got, "ŚMIETANA 18%") {
		t.Errorf("expected ŚMIETANA in the decoded text, got %q", got)
	}
}

func TestRepairEncodingFixesDoubleEncodedText(t *testing.T) {
	// "Masło ekstra świeże" after its UTF-8 bytes were misread as
	// Windows-1252 and saved again.
	data := []byte("PARAGON FISKALNY MasÅ‚o ekstra Å›wieÅ¼e 1 x 7,49 7,49")

	got := RepairEncoding(data)
	if !strings.Contains(got, "Masło ekstra świeże") {
		t.Errorf("expected repaired diacritics, got %q", got)
	}
}

func TestScorePolishTextPenalizesMojibake(t *testing.T) {
	clean := scorePolishText("PARAGON FISKALNY Masło świeże")
	broken := scorePolishText("PARAGON FISKALNY MasÅ‚o Å›wieÅ¼e")
	if clean <= 0 {
		t.Errorf("clean text scored %d, expected a positive score", clean)
	}
	if broken >= clean {
		t.Errorf("mojibake scored %d, clean %d; expected a penalty", broken, clean)
	}
}
