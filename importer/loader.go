// Package importer turns external receipt dumps into the extraction records
// the processing pipeline accepts: extraction JSON files, legacy-encoded OCR
// text and e-receipt HTML.
package importer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"receiptserver/receipt"
)

// ParseExtraction decodes one extraction result. Legacy dumps get their
// encoding repaired before decoding.
func ParseExtraction(data []byte) (receipt.ExtractedReceipt, error) {
	var extracted receipt.ExtractedReceipt
	text := RepairEncoding(data)
	if err := json.Unmarshal([]byte(text), &extracted); err != nil {
		return receipt.ExtractedReceipt{}, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}
	normalizeLineIndexes(extracted.Items)
	return extracted, nil
}

// LoadExtractionFile reads and decodes one extraction JSON file.
func LoadExtractionFile(path string) (receipt.ExtractedReceipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return receipt.ExtractedReceipt{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	extracted, err := ParseExtraction(data)
	if err != nil {
		return receipt.ExtractedReceipt{}, fmt.Errorf("%s: %w", path, err)
	}
	return extracted, nil
}

// LoadedFile pairs an extraction with the file it came from.
type LoadedFile struct {
	Path    string
	Receipt receipt.ExtractedReceipt
}

// LoadExtractionDir loads every .json file of a directory in name order.
// Files that fail to parse are logged and skipped so one broken dump does
// not block a batch.
func LoadExtractionDir(dir string) ([]LoadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var out []LoadedFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		extracted, err := LoadExtractionFile(path)
		if err != nil {
			log.Printf("[Importer] Skipping %s: %v", path, err)
			continue
		}
		out = append(out, LoadedFile{Path: path, Receipt: extracted})
	}
	return out, nil
}

// normalizeLineIndexes numbers the lines by position when the extraction did
// not carry indexes. A partially numbered extraction is left alone.
func normalizeLineIndexes(items []receipt.RawLineItem) {
	for _, item := range items {
		if item.LineIndex != 0 {
			return
		}
	}
	for i := range items {
		items[i].LineIndex = i
	}
}
