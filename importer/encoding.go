package importer

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// mojibakeMarkers are lead characters of UTF-8 sequences that were decoded
// with a single-byte code page and saved again, e.g. "Å‚" instead of "ł" or
// "Ã³" instead of "ó". Correctly decoded Polish text never contains them.
var mojibakeMarkers = []string{"Ã", "Å", "Ä"}

// polishKeywords are receipt words used to score a decoding attempt.
var polishKeywords = []string{
	"paragon", "fiskalny", "sprzedaż", "rabat", "suma", "razem",
	"pln", "sklep", "kasa", "nip", "podatek", "ptu",
}

const polishDiacritics = "ąćęłńóśźżĄĆĘŁŃÓŚŹŻ"

// RepairEncoding converts a receipt dump to UTF-8 text. OCR exports arrive
// in Windows-1250 or ISO-8859-2 more often than not, and some passed through
// a wrong decode once and carry mojibake instead of Polish diacritics.
func RepairEncoding(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if utf8.Valid(data) {
		text := string(data)
		if !hasMojibake(text) {
			return text
		}
		if fixed, ok := undoDoubleEncoding(text); ok {
			return fixed
		}
		return text
	}

	// Not UTF-8. Try the single-byte candidates and keep the best scoring
	// result. Windows-1250 goes first as the most common code page for
	// Polish dumps.
	candidates := []struct {
		name string
		enc  encoding.Encoding
	}{
		{"Windows-1250", charmap.Windows1250},
		{"ISO-8859-2", charmap.ISO8859_2},
		{"Windows-1252", charmap.Windows1252},
	}

	best := ""
	bestScore := 0
	for _, candidate := range candidates {
		decoded, _, err := transform.Bytes(candidate.enc.NewDecoder(), data)
		if err != nil || !utf8.Valid(decoded) {
			continue
		}
		if score := scorePolishText(string(decoded)); score > bestScore {
			best = string(decoded)
			bestScore = score
		}
	}
	if best != "" {
		return best
	}

	return strings.ToValidUTF8(string(data), "")
}

// undoDoubleEncoding recovers text whose UTF-8 bytes were misread as
// Windows-1252. Encoding the mojibake characters back to Windows-1252 yields
// the original UTF-8 bytes; a dump decoded wrongly more than once needs the
// recovery applied more than once.
func undoDoubleEncoding(text string) (string, bool) {
	current := text
	for attempt := 0; attempt < 3; attempt++ {
		encoded, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte(current))
		if err != nil || !utf8.Valid(encoded) {
			return "", false
		}
		current = string(encoded)
		if !hasMojibake(current) {
			if scorePolishText(current) > scorePolishText(text) {
				return current, true
			}
			return "", false
		}
	}
	return "", false
}

func hasMojibake(text string) bool {
	for _, marker := range mojibakeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// scorePolishText rates how much a decoding attempt looks like a Polish
// receipt: receipt vocabulary and diacritics score up, mojibake markers
// score heavily down.
func scorePolishText(text string) int {
	score := 0
	lower := strings.ToLower(text)
	for _, keyword := range polishKeywords {
		if strings.Contains(lower, keyword) {
			score += 10
		}
	}
	for _, r := range text {
		if strings.ContainsRune(polishDiacritics, r) {
			score++
		}
	}
	for _, marker := range mojibakeMarkers {
		if strings.Contains(text, marker) {
			score -= 200
		}
	}
	return score
}
