package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a money or quantity value as printed on Polish receipts.
// Accepts both comma and dot decimal separators, optional thousands spacing
// and a leading sign: "4,99", "1 234,56", "-2.00", "0,356".
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	// OCR often keeps the non-breaking space used as a thousands separator.
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	// "1.234.56" after comma replacement: keep only the last dot as the
	// decimal separator.
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
