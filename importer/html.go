package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"receiptserver/receipt"
)

var (
	// amountPrefix matches the numeric head of a cell like "7,99" or "7.99 A".
	amountPrefix = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?`)
	// amountOnly matches a cell that is an amount, optionally followed by a
	// tax group letter.
	amountOnly = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?\s*[A-E]?$`)
	// textLine matches receipt lines of the form "NAME QTY x PRICE TOTAL".
	textLine = regexp.MustCompile(`^(.+?)\s+(-?\d+(?:[.,]\d+)?)\s*(?:x|X|\*|×)\s*(-?\d+(?:[.,]\d+)?)\s+(-?\d+(?:[.,]\d+)?)(?:\s*[A-E])?$`)
	// sumaLine captures the printed receipt total.
	sumaLine = regexp.MustCompile(`(?i)\bsuma\b[^0-9-]*(-?\d+(?:[.,]\d+)?)`)

	purchaseTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}`),
		regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}(?:\s+\d{2}:\d{2})?`),
	}

	storeHintSelectors = []string{".store-name", "#store-name", "header h1", "h1", "title"}
)

// ParseEReceiptHTML extracts a receipt from an e-receipt HTML document. It
// reads product lines from position tables first and falls back to parsing
// line-shaped text anywhere in the document.
func ParseEReceiptHTML(r io.Reader) (receipt.ExtractedReceipt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return receipt.ExtractedReceipt{}, fmt.Errorf("failed to read e-receipt: %w", err)
	}
	content := RepairEncoding(data)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return receipt.ExtractedReceipt{}, fmt.Errorf("failed to parse e-receipt HTML: %w", err)
	}

	var sb strings.Builder
	flattenText(doc.Get(0), &sb)
	rawText := strings.TrimSpace(sb.String())

	extracted := receipt.ExtractedReceipt{
		StoreHint:   extractStoreHint(doc),
		RawText:     rawText,
		PurchasedAt: extractPurchaseTime(rawText),
		Total:       extractTotal(rawText),
		Items:       extractTableItems(doc),
	}
	if len(extracted.Items) == 0 {
		extracted.Items = extractTextItems(rawText)
	}
	if len(extracted.Items) == 0 {
		return receipt.ExtractedReceipt{}, fmt.Errorf("no product lines found in e-receipt")
	}
	return extracted, nil
}

// extractTableItems reads product rows from position tables: a row counts as
// a product when it has a name cell and at least quantity, unit price and
// total amounts. Header and summary rows fail that shape and are skipped.
func extractTableItems(doc *goquery.Document) []receipt.RawLineItem {
	var items []receipt.RawLineItem
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if item, ok := rowToItem(texts, len(items)); ok {
			items = append(items, item)
		}
	})
	return items
}

func rowToItem(cells []string, idx int) (receipt.RawLineItem, bool) {
	name := ""
	amounts := make([]decimal.Decimal, 0, 3)
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if amountOnly.MatchString(cell) {
			if amount, ok := parseAmount(cell); ok && len(amounts) < 3 {
				amounts = append(amounts, amount)
			}
			continue
		}
		if name == "" {
			name = cell
		}
	}
	if name == "" || len(amounts) < 3 {
		return receipt.RawLineItem{}, false
	}
	return receipt.RawLineItem{
		RawName:   name,
		Quantity:  amounts[0],
		UnitPrice: amounts[1],
		LineTotal: amounts[2],
		LineIndex: idx,
	}, true
}

// extractTextItems parses "NAME QTY x PRICE TOTAL" lines from the flattened
// document text.
func extractTextItems(rawText string) []receipt.RawLineItem {
	var items []receipt.RawLineItem
	for _, line := range strings.Split(rawText, "\n") {
		m := textLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		qty, okQty := parseAmount(m[2])
		unit, okUnit := parseAmount(m[3])
		total, okTotal := parseAmount(m[4])
		if !okQty || !okUnit || !okTotal {
			continue
		}
		items = append(items, receipt.RawLineItem{
			RawName:   strings.TrimSpace(m[1]),
			Quantity:  qty,
			UnitPrice: unit,
			LineTotal: total,
			LineIndex: len(items),
		})
	}
	return items
}

func extractStoreHint(doc *goquery.Document) string {
	for _, selector := range storeHintSelectors {
		text := strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}

func extractPurchaseTime(text string) string {
	for _, pattern := range purchaseTimePatterns {
		if m := pattern.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func extractTotal(text string) decimal.NullDecimal {
	m := sumaLine.FindStringSubmatch(text)
	if m == nil {
		return decimal.NullDecimal{}
	}
	amount, ok := parseAmount(m[1])
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}

// parseAmount reads a Polish-formatted amount, ignoring a trailing tax group
// letter.
func parseAmount(s string) (decimal.Decimal, bool) {
	m := amountPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", "."))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// blockTags start a new line in the flattened text so receipt lines stay
// separable.
var blockTags = map[string]bool{
	"br": true, "div": true, "h1": true, "h2": true, "h3": true,
	"li": true, "p": true, "section": true, "table": true, "tr": true,
}

// flattenText walks the parsed tree and joins text nodes into line-oriented
// plain text.
func flattenText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if blockTags[n.Data] {
			sb.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			if out := sb.String(); out != "" && !strings.HasSuffix(out, "\n") {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenText(c, sb)
	}
}
