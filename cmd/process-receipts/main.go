// Command process-receipts runs a directory of extraction dumps through the
// pipeline without a human in the loop: every low-confidence name accepts
// its best suggestion. Useful for backfilling an archive of receipts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"receiptserver/ai"
	"receiptserver/confirmation"
	"receiptserver/database"
	"receiptserver/export"
	"receiptserver/importer"
	"receiptserver/internal/config"
	"receiptserver/normalization"
	"receiptserver/pipeline"
	"receiptserver/receipt"
	"receiptserver/stores"
	"receiptserver/verification"
)

func main() {
	inputDir := flag.String("input", "", "directory with extraction dumps (.json or .html)")
	dbPath := flag.String("db", "", "persist results to this SQLite database (optional)")
	format := flag.String("format", "json", "export format: json, csv or xlsx")
	output := flag.String("output", "", "write exported receipts to this file (optional)")
	flag.Parse()

	if *inputDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: process-receipts -input <dir> [-db <path>] [-format json|csv|xlsx] [-output <file>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	exportFormat, err := export.ParseFormat(*format)
	if err != nil {
		log.Fatalf("✗ %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	client, err := ai.NewClientFromConfig(ctx, cfg.Gateway)
	if err != nil {
		log.Printf("⚠ Model backend unavailable: %v", err)
		client = nil
	}
	gateway := ai.NewGatewayFromConfig(client, cfg.Gateway)

	var db *database.DB
	if *dbPath != "" {
		db, err = database.Open(*dbPath)
		if err != nil {
			log.Fatalf("✗ Failed to open database at %s: %v", *dbPath, err)
		}
		defer db.Close()
		log.Printf("Persisting to %s", *dbPath)
	}

	// Batch runs answer their own confirmations: the best suggestion wins.
	names := normalization.NewPipeline(normalization.Config{
		AliasSimilarityThreshold: cfg.AliasSimilarityThreshold,
		MinAcceptableConfidence:  cfg.MinAcceptableConfidence,
		ModelConfidence:          cfg.ModelConfidence,
	}, gateway, confirmation.AutoConfirmer{})
	detector := stores.NewDetector(stores.Options{
		DetectionPrefixLen: cfg.DetectionPrefixLen,
		MathTolerance:      decimal.NewFromFloat(cfg.MathTolerance),
	})
	verifier := verification.NewVerifier(verification.Config{
		MathTolerance:         cfg.MathTolerance,
		SignificantDifference: cfg.SignificantDifference,
		MaxDiscountShare:      cfg.MaxDiscountShare,
	})
	processor := pipeline.NewProcessor(detector, verifier, names, db, pipeline.Options{
		AutoPersistThreshold: cfg.AutoPersistThreshold,
	})

	files, err := loadInputs(*inputDir)
	if err != nil {
		log.Fatalf("✗ %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("✗ No .json or .html files found in %s", *inputDir)
	}
	log.Printf("Processing %d files from %s", len(files), *inputDir)

	start := time.Now()
	var processed []*receipt.ProcessedReceipt
	failed := 0
	itemCount := 0
	inconsistent := 0
	byStage := map[string]int{}

	for i, file := range files {
		rec, err := processor.Process(ctx, file.Receipt)
		if err != nil {
			failed++
			log.Printf("[%d/%d] ✗ %s: %v", i+1, len(files), filepath.Base(file.Path), err)
			continue
		}

		if db != nil {
			if err := db.SaveReceipt(ctx, rec); err != nil {
				failed++
				log.Printf("[%d/%d] ✗ %s: save failed: %v", i+1, len(files), filepath.Base(file.Path), err)
				continue
			}
		}

		processed = append(processed, rec)
		itemCount += len(rec.Items)
		inconsistent += rec.InconsistentCount()
		for _, item := range rec.Items {
			byStage[string(item.Normalization.Stage)]++
		}

		log.Printf("[%d/%d] ✓ %s: store %s, %d items",
			i+1, len(files), filepath.Base(file.Path), rec.Store, len(rec.Items))
	}

	log.Println()
	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
	log.Printf("  Receipts: %d processed, %d failed", len(processed), failed)
	log.Printf("  Items:    %d total, %d inconsistent", itemCount, inconsistent)
	for _, stage := range sortedKeys(byStage) {
		log.Printf("    %-12s %d", stage, byStage[stage])
	}

	if *output != "" {
		if err := export.ToFile(*output, exportFormat, processed); err != nil {
			log.Fatalf("✗ Export failed: %v", err)
		}
		log.Printf("Exported %d receipts to %s", len(processed), *output)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// loadInputs reads every extraction dump of a directory. JSON dumps go
// through the encoding repair, HTML dumps through the e-receipt parser.
func loadInputs(dir string) ([]importer.LoadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var out []importer.LoadedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json":
			extracted, err := importer.LoadExtractionFile(path)
			if err != nil {
				log.Printf("⚠ Skipping %s: %v", path, err)
				continue
			}
			out = append(out, importer.LoadedFile{Path: path, Receipt: extracted})
		case ".html", ".htm":
			f, err := os.Open(path)
			if err != nil {
				log.Printf("⚠ Skipping %s: %v", path, err)
				continue
			}
			extracted, err := importer.ParseEReceiptHTML(f)
			f.Close()
			if err != nil {
				log.Printf("⚠ Skipping %s: %v", path, err)
				continue
			}
			out = append(out, importer.LoadedFile{Path: path, Receipt: extracted})
		}
	}
	return out, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
