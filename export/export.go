// Package export writes processed receipts to JSON, CSV and XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"receiptserver/receipt"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Row is one exported line item with its receipt context.
type Row struct {
	ReceiptID     string  `json:"receipt_id"`
	Store         string  `json:"store"`
	PurchasedAt   string  `json:"purchased_at,omitempty"`
	LineIndex     int     `json:"line_index"`
	RawName       string  `json:"raw_name"`
	CanonicalName string  `json:"canonical_name"`
	Quantity      string  `json:"quantity"`
	UnitPrice     string  `json:"unit_price"`
	LineTotal     string  `json:"line_total"`
	Discount      string  `json:"discount"`
	Confidence    float64 `json:"confidence"`
	Stage         string  `json:"stage"`
	Inconsistent  bool    `json:"inconsistent"`
	Warning       string  `json:"warning,omitempty"`
}

// Rows flattens receipts into one exportable row per line item.
func Rows(receipts []*receipt.ProcessedReceipt) []Row {
	rows := make([]Row, 0, len(receipts))
	for _, rec := range receipts {
		for _, item := range rec.Items {
			rows = append(rows, Row{
				ReceiptID:     rec.ID,
				Store:         rec.Store,
				PurchasedAt:   rec.PurchasedAt,
				LineIndex:     item.Verified.LineIndex,
				RawName:       item.Verified.RawName,
				CanonicalName: item.Normalization.CanonicalName,
				Quantity:      item.Verified.Quantity.String(),
				UnitPrice:     item.Verified.UnitPrice.String(),
				LineTotal:     item.Verified.LineTotal.String(),
				Discount:      item.Verified.Discount.String(),
				Confidence:    item.Normalization.Confidence,
				Stage:         string(item.Normalization.Stage),
				Inconsistent:  item.Verified.Inconsistent,
				Warning:       item.Normalization.Warning,
			})
		}
	}
	return rows
}

// Write encodes the receipts in the given format.
func Write(w io.Writer, format Format, receipts []*receipt.ProcessedReceipt) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, receipts)
	case FormatCSV:
		return WriteCSV(w, receipts)
	case FormatXLSX:
		return WriteXLSX(w, receipts)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ToFile writes the receipts to a file in the given format.
func ToFile(filename string, format Format, receipts []*receipt.ProcessedReceipt) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return Write(file, format, receipts)
}

// WriteJSON writes an envelope with the export time, row count and rows.
func WriteJSON(w io.Writer, receipts []*receipt.ProcessedReceipt) error {
	rows := Rows(receipts)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"total":       len(rows),
		"items":       rows,
	}

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

var csvHeaders = []string{
	"Receipt ID", "Store", "Purchased At", "Line", "Raw Name", "Canonical Name",
	"Quantity", "Unit Price", "Line Total", "Discount", "Confidence", "Stage",
	"Inconsistent", "Warning",
}

// WriteCSV writes a header row followed by one record per line item.
func WriteCSV(w io.Writer, receipts []*receipt.ProcessedReceipt) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, row := range Rows(receipts) {
		record := []string{
			row.ReceiptID,
			row.Store,
			row.PurchasedAt,
			fmt.Sprintf("%d", row.LineIndex),
			row.RawName,
			row.CanonicalName,
			row.Quantity,
			row.UnitPrice,
			row.LineTotal,
			row.Discount,
			fmt.Sprintf("%.2f", row.Confidence),
			row.Stage,
			fmt.Sprintf("%t", row.Inconsistent),
			row.Warning,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a styled spreadsheet with one row per line item.
func WriteXLSX(w io.Writer, receipts []*receipt.ProcessedReceipt) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Receipts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range Rows(receipts) {
		r := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row.ReceiptID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row.Store)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", r), row.PurchasedAt)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", r), row.LineIndex)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", r), row.RawName)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", r), row.CanonicalName)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", r), row.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", r), row.UnitPrice)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", r), row.LineTotal)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", r), row.Discount)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", r), row.Confidence)
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", r), row.Stage)
		f.SetCellValue(sheetName, fmt.Sprintf("M%d", r), row.Inconsistent)
		f.SetCellValue(sheetName, fmt.Sprintf("N%d", r), row.Warning)
	}

	for i := range csvHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
