// Generates synthetic extraction dumps for load testing the pipeline and
// feeding the process-receipts tool. Output mimics what the OCR extraction
// produces for Polish retail receipts, including weighted items, discounts
// and the occasional arithmetic slip. With -db it also seeds an alias
// catalog mapping every generated raw name to its canonical product, so
// batch runs over the dataset can exercise the alias stage.
//
// Usage: go run scripts/generate_test_data.go -count 100 -out testdata/receipts -db testdata/aliases.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"receiptserver/database"
	"receiptserver/receipt"
)

type storeTemplate struct {
	header string
	footer string
}

var storeTemplates = map[string]storeTemplate{
	"Biedronka": {
		header: "BIEDRONKA \"CODZIENNIE NISKIE CENY\"\nJERONIMO MARTINS POLSKA S.A.\nul. Żniwna 5, 62-025 Kostrzyn",
		footer: "KARTA MOJA BIEDRONKA",
	},
	"Lidl": {
		header: "LIDL SP. Z O.O. SP. K.\nul. Poznańska 48, Jankowice",
		footer: "DZIĘKUJEMY ZA ZAKUPY W LIDLU",
	},
	"Żabka": {
		header: "ŻABKA POLSKA SP. Z O.O.\nul. Stanisława Matyi 8, Poznań",
		footer: "APLIKACJA ŻAPPKA",
	},
	"Kaufland": {
		header: "KAUFLAND POLSKA MARKETY\nal. Armii Krajowej 47, Wrocław",
		footer: "KAUFLAND CARD",
	},
	"Auchan": {
		header: "AUCHAN POLSKA SP. Z O.O.\nul. Puławska 46, Piaseczno",
		footer: "SKARBONKA AUCHAN",
	},
}

// products are raw names the way extractions deliver them, uppercase with
// packaging noise, paired with the canonical product the catalog should
// resolve them to. Weighted products sell by the kilogram.
var products = []struct {
	rawName   string
	canonical string
	minPrice  float64
	maxPrice  float64
	weighted  bool
}{
	{"MLEKO ŁACIATE 3,2% 1L", "Mleko", 3.0, 4.5, false},
	{"MLEKO WYPASIONE 2% 1L", "Mleko", 2.8, 4.0, false},
	{"MASŁO EXTRA 200G", "Masło", 6.5, 9.0, false},
	{"CHLEB BALTONOWSKI 500G", "Chleb", 3.5, 6.0, false},
	{"BUŁKA KAJZERKA", "Bułka", 0.5, 1.2, false},
	{"JAJA Z WOLNEGO WYBIEGU L 10SZT", "Jajka", 9.0, 15.0, false},
	{"SER GOUDA PLASTRY 150G", "Ser żółty", 5.0, 8.0, false},
	{"SEREK WIEJSKI 200G", "Serek wiejski", 2.5, 4.0, false},
	{"JOGURT NATURALNY 400G", "Jogurt naturalny", 3.0, 5.0, false},
	{"WODA NIEGAZOWANA 1,5L", "Woda niegazowana", 1.5, 3.0, false},
	{"SOK POMARAŃCZOWY 1L", "Sok pomarańczowy", 4.0, 7.0, false},
	{"MAKARON ŚWIDERKI 500G", "Makaron", 3.0, 6.0, false},
	{"RYŻ BIAŁY 1KG", "Ryż", 4.0, 8.0, false},
	{"CUKIER BIAŁY 1KG", "Cukier", 3.5, 6.0, false},
	{"MĄKA PSZENNA TYP 500 1KG", "Mąka", 2.5, 5.0, false},
	{"PAPIER TOALETOWY 8 ROLEK", "Papier toaletowy", 8.0, 15.0, false},
	{"PŁYN DO NACZYŃ 900ML", "Płyn do naczyń", 5.0, 10.0, false},
	{"BANANY LUZ", "Banany", 4.0, 7.0, true},
	{"POMIDORY MALINOWE LUZ", "Pomidory", 8.0, 14.0, true},
	{"JABŁKA LIGOL LUZ", "Jabłka", 3.0, 6.0, true},
	{"ZIEMNIAKI JADALNE LUZ", "Ziemniaki", 2.0, 4.0, true},
	{"FILET Z KURCZAKA LUZ", "Filet z kurczaka", 18.0, 28.0, true},
}

func main() {
	count := flag.Int("count", 50, "number of receipts to generate")
	outDir := flag.String("out", filepath.Join("testdata", "receipts"), "output directory")
	dbPath := flag.String("db", "", "optional sqlite path to seed with aliases for the generated products")
	seed := flag.Int64("seed", 0, "random seed, 0 derives one from the clock")
	flag.Parse()

	gofakeit.Seed(*seed)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	storeNames := make([]string, 0, len(storeTemplates))
	for name := range storeTemplates {
		storeNames = append(storeNames, name)
	}

	for i := 0; i < *count; i++ {
		store := storeNames[gofakeit.Number(0, len(storeNames)-1)]
		extracted := generateReceipt(store)

		data, err := json.MarshalIndent(extracted, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode receipt: %v", err)
		}

		path := filepath.Join(*outDir, fmt.Sprintf("receipt_%04d.json", i+1))
		if err := os.WriteFile(path, data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	fmt.Printf("Generated %d receipts in %s\n", *count, *outDir)

	if *dbPath != "" {
		if err := seedAliases(*dbPath); err != nil {
			log.Fatalf("Failed to seed alias catalog: %v", err)
		}
		fmt.Printf("Seeded %d aliases in %s\n", len(products), *dbPath)
	}
}

// seedAliases registers every generated raw name as a confirmed global
// alias, so pipelines run against the dataset resolve at the alias stage
// instead of falling through to the model.
func seedAliases(path string) error {
	db, err := database.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	for _, p := range products {
		rec := receipt.AliasRecord{
			RawName:       p.rawName,
			CanonicalName: p.canonical,
			Confidence:    1.0,
			Origin:        receipt.StageUser,
		}
		if err := db.UpsertAlias(ctx, rec); err != nil {
			return fmt.Errorf("upsert alias %q: %w", p.rawName, err)
		}
	}
	return nil
}

func generateReceipt(store string) receipt.ExtractedReceipt {
	tpl := storeTemplates[store]
	itemCount := gofakeit.Number(2, 12)

	var items []receipt.RawLineItem
	var lines []string
	total := decimal.Zero

	for i := 0; i < itemCount; i++ {
		p := products[gofakeit.Number(0, len(products)-1)]

		var qty decimal.Decimal
		if p.weighted {
			qty = decimal.NewFromFloat(gofakeit.Float64Range(0.2, 2.5)).Round(3)
		} else {
			qty = decimal.NewFromInt(int64(gofakeit.Number(1, 4)))
		}
		unitPrice := decimal.NewFromFloat(gofakeit.Float64Range(p.minPrice, p.maxPrice)).Round(2)
		lineTotal := qty.Mul(unitPrice).Round(2)

		item := receipt.RawLineItem{
			RawName:   p.rawName,
			Quantity:  qty,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
			LineIndex: i,
		}

		// A tenth of the items get a promo discount.
		if gofakeit.Number(1, 10) == 1 {
			discount := unitPrice.Mul(decimal.NewFromFloat(0.2)).Round(2)
			item.Discount = decimal.NewNullDecimal(discount)
			item.LineTotal = lineTotal.Sub(discount)
		}

		// Rarely the extraction misreads a digit and the line stops
		// adding up.
		if gofakeit.Number(1, 40) == 1 {
			item.LineTotal = item.LineTotal.Add(decimal.NewFromFloat(1.00))
		}

		total = total.Add(item.LineTotal)
		items = append(items, item)
		lines = append(lines, fmt.Sprintf("%s  %s x%s  %s",
			p.rawName, qty.String(), unitPrice.StringFixed(2), item.LineTotal.StringFixed(2)))
	}

	now := time.Now()
	purchasedAt := gofakeit.DateRange(now.AddDate(-1, 0, 0), now).Format("2006-01-02 15:04")

	rawText := strings.Join([]string{
		tpl.header,
		"PARAGON FISKALNY",
		strings.Join(lines, "\n"),
		fmt.Sprintf("SUMA PLN %s", total.StringFixed(2)),
		tpl.footer,
		fmt.Sprintf("NIP %s", gofakeit.Numerify("###-###-##-##")),
		purchasedAt,
	}, "\n")

	return receipt.ExtractedReceipt{
		StoreHint:   store,
		RawText:     rawText,
		PurchasedAt: purchasedAt,
		Total:       decimal.NewNullDecimal(total),
		Items:       items,
	}
}
