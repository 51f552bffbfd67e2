package database

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"receiptserver/pipeline"
	"receiptserver/receipt"
)

// The pipeline persists aliases through this package.
var _ pipeline.AliasCatalog = (*DB)(nil)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func alias(raw, canonical, store string, confidence float64, origin receipt.Stage) receipt.AliasRecord {
	return receipt.AliasRecord{
		RawName:       raw,
		CanonicalName: canonical,
		Store:         store,
		Confidence:    confidence,
		Origin:        origin,
	}
}

func processedItem(idx int, name, qty, price, total, discount string, canonical string, stage receipt.Stage, confidence float64) receipt.ProcessedItem {
	return receipt.ProcessedItem{
		Verified: receipt.VerifiedLineItem{
			RawName:   name,
			Quantity:  decimal.RequireFromString(qty),
			UnitPrice: decimal.RequireFromString(price),
			LineTotal: decimal.RequireFromString(total),
			Discount:  decimal.RequireFromString(discount),
			LineIndex: idx,
		},
		Normalization: receipt.NormalizationResult{
			CanonicalName: canonical,
			Confidence:    confidence,
			Stage:         stage,
		},
	}
}

func TestUpsertAndLookupAliases(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	records := []receipt.AliasRecord{
		alias("MLEKO 3.2% UHT 1L", "Mleko", "Biedronka", 0.98, receipt.StageStaticRule),
		alias("HUMMUS KLASYCZNY 180G", "Hummus klasyczny", "", 0.97, receipt.StageAlias),
	}
	for _, rec := range records {
		if err := db.UpsertAlias(ctx, rec); err != nil {
			t.Fatalf("UpsertAlias(%q) failed: %v", rec.RawName, err)
		}
	}

	found, err := db.LookupAliases(ctx,
		[]string{"MLEKO 3.2% UHT 1L", "HUMMUS KLASYCZNY 180G", "NIEZNANY PRODUKT"}, "Biedronka")
	if err != nil {
		t.Fatalf("LookupAliases failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(found))
	}

	mleko, ok := found["MLEKO 3.2% UHT 1L"]
	if !ok {
		t.Fatal("store-scoped alias not found")
	}
	if mleko.CanonicalName != "Mleko" || mleko.Store != "Biedronka" || mleko.Origin != receipt.StageStaticRule {
		t.Errorf("unexpected store-scoped alias: %+v", mleko)
	}
	if mleko.ID == 0 {
		t.Error("expected a database id on the scanned record")
	}
	if mleko.SeenCount != 1 {
		t.Errorf("expected seen count 1, got %d", mleko.SeenCount)
	}
	if mleko.CreatedAt.IsZero() || mleko.UpdatedAt.IsZero() {
		t.Error("expected timestamps on the scanned record")
	}

	hummus, ok := found["HUMMUS KLASYCZNY 180G"]
	if !ok {
		t.Fatal("global alias not visible from a store lookup")
	}
	if hummus.Store != "" {
		t.Errorf("expected a global record, got store %q", hummus.Store)
	}

	if _, ok := found["NIEZNANY PRODUKT"]; ok {
		t.Error("lookup invented a record for an unknown name")
	}
}

func TestLookupAliasesEmptyInput(t *testing.T) {
	db := openTestDB(t)

	found, err := db.LookupAliases(context.Background(), nil, "Lidl")
	if err != nil {
		t.Fatalf("LookupAliases failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("expected empty result, got %d records", len(found))
	}
}

func TestUpsertRefreshesExistingAlias(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := alias("SEREK WIEJSKI 200G", "Serek", "Lidl", 0.96, receipt.StageAlias)
	if err := db.UpsertAlias(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second := alias("SEREK WIEJSKI 200G", "Serek wiejski", "Lidl", 1.0, receipt.StageUser)
	if err := db.UpsertAlias(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	found, err := db.LookupAliases(ctx, []string{"SEREK WIEJSKI 200G"}, "Lidl")
	if err != nil {
		t.Fatalf("LookupAliases failed: %v", err)
	}
	rec, ok := found["SEREK WIEJSKI 200G"]
	if !ok {
		t.Fatal("alias disappeared after refresh")
	}
	if rec.CanonicalName != "Serek wiejski" {
		t.Errorf("expected the latest canonical name, got %q", rec.CanonicalName)
	}
	if rec.Confidence != 1.0 || rec.Origin != receipt.StageUser {
		t.Errorf("refresh did not overwrite confidence/origin: %+v", rec)
	}
	if rec.SeenCount != 2 {
		t.Errorf("expected seen count 2 after refresh, got %d", rec.SeenCount)
	}

	if n, err := db.CountAliases(ctx, ""); err != nil || n != 1 {
		t.Errorf("expected a single record after refresh, got %d (err %v)", n, err)
	}
}

func TestLookupPrefersStoreScopedAlias(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.UpsertAlias(ctx, alias("CHLEB", "Chleb pszenny", "", 0.95, receipt.StageAlias)); err != nil {
		t.Fatalf("global upsert failed: %v", err)
	}
	if err := db.UpsertAlias(ctx, alias("CHLEB", "Chleb żytni", "Lidl", 1.0, receipt.StageUser)); err != nil {
		t.Fatalf("scoped upsert failed: %v", err)
	}

	scoped, err := db.LookupAliases(ctx, []string{"CHLEB"}, "Lidl")
	if err != nil {
		t.Fatalf("LookupAliases failed: %v", err)
	}
	if got := scoped["CHLEB"].CanonicalName; got != "Chleb żytni" {
		t.Errorf("expected the Lidl record to win, got %q", got)
	}

	elsewhere, err := db.LookupAliases(ctx, []string{"CHLEB"}, "Auchan")
	if err != nil {
		t.Fatalf("LookupAliases failed: %v", err)
	}
	if got := elsewhere["CHLEB"].CanonicalName; got != "Chleb pszenny" {
		t.Errorf("expected the global record from another store, got %q", got)
	}
}

func TestAliasCandidatesOrderingAndScope(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed := []receipt.AliasRecord{
		alias("MASŁO EXTRA", "Masło", "Biedronka", 0.95, receipt.StageStaticRule),
		alias("JAJA L 10SZT", "Jaja", "", 0.99, receipt.StageUser),
		alias("CUKIER BIAŁY", "Cukier", "Biedronka", 0.97, receipt.StageAlias),
		alias("PIWO JASNE", "Piwo", "Żabka", 1.0, receipt.StageUser),
	}
	for _, rec := range seed {
		if err := db.UpsertAlias(ctx, rec); err != nil {
			t.Fatalf("UpsertAlias(%q) failed: %v", rec.RawName, err)
		}
	}

	candidates, err := db.AliasCandidates(ctx, "Biedronka", 10)
	if err != nil {
		t.Fatalf("AliasCandidates failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates (scoped + global), got %d", len(candidates))
	}
	for _, rec := range candidates {
		if rec.Store == "Żabka" {
			t.Errorf("candidate %q leaked from another store", rec.RawName)
		}
	}
	wantOrder := []string{"Jaja", "Cukier", "Masło"}
	for i, want := range wantOrder {
		if candidates[i].CanonicalName != want {
			t.Errorf("candidate %d: expected %q, got %q", i, want, candidates[i].CanonicalName)
		}
	}

	limited, err := db.AliasCandidates(ctx, "Biedronka", 2)
	if err != nil {
		t.Fatalf("AliasCandidates failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected the limit to apply, got %d candidates", len(limited))
	}
}

func TestConfirmedExamplesFilterByOrigin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed := []receipt.AliasRecord{
		alias("GRZANKI CZOSNKOWE", "Grzanki czosnkowe", "Żabka", 1.0, receipt.StageUser),
		alias("KAWA MIELONA 250G", "Kawa mielona", "", 1.0, receipt.StageUser),
		alias("HERBATA CZARNA", "Herbata", "Żabka", 0.97, receipt.StageAlias),
	}
	for _, rec := range seed {
		if err := db.UpsertAlias(ctx, rec); err != nil {
			t.Fatalf("UpsertAlias(%q) failed: %v", rec.RawName, err)
		}
	}

	examples, err := db.ConfirmedExamples(ctx, "Żabka", 10)
	if err != nil {
		t.Fatalf("ConfirmedExamples failed: %v", err)
	}
	if len(examples) != 2 {
		t.Fatalf("expected 2 user-confirmed examples, got %d", len(examples))
	}
	for _, ex := range examples {
		if ex.CanonicalName == "Herbata" {
			t.Error("a non-confirmed alias leaked into the examples")
		}
	}

	limited, err := db.ConfirmedExamples(ctx, "Żabka", 1)
	if err != nil {
		t.Fatalf("ConfirmedExamples failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected the limit to apply, got %d examples", len(limited))
	}
}

func TestListCountDeleteAliases(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed := []receipt.AliasRecord{
		alias("A", "Produkt A", "Lidl", 0.95, receipt.StageAlias),
		alias("B", "Produkt B", "Lidl", 0.96, receipt.StageAlias),
		alias("C", "Produkt C", "", 0.97, receipt.StageAlias),
	}
	for _, rec := range seed {
		if err := db.UpsertAlias(ctx, rec); err != nil {
			t.Fatalf("UpsertAlias(%q) failed: %v", rec.RawName, err)
		}
	}

	all, err := db.ListAliases(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	scoped, err := db.ListAliases(ctx, "Lidl", 10, 0)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Errorf("expected 2 Lidl records, got %d", len(scoped))
	}

	if n, err := db.CountAliases(ctx, "Lidl"); err != nil || n != 2 {
		t.Errorf("CountAliases(Lidl) = %d, %v; want 2", n, err)
	}

	if err := db.DeleteAlias(ctx, all[0].ID); err != nil {
		t.Fatalf("DeleteAlias failed: %v", err)
	}
	if n, err := db.CountAliases(ctx, ""); err != nil || n != 2 {
		t.Errorf("expected 2 records after delete, got %d (err %v)", n, err)
	}
	if err := db.DeleteAlias(ctx, all[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a deleted id, got %v", err)
	}
}

func TestSaveAndGetReceipt(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	saved := &receipt.ProcessedReceipt{
		ID:          "rcpt-test-1",
		Store:       "Biedronka",
		StoreHint:   "biedronka centrum",
		PurchasedAt: "2026-08-14 17:32",
		Diagnostics: []string{"dropped junk line 4", "folded discount into line 1"},
		CreatedAt:   time.Date(2026, 8, 14, 17, 40, 0, 0, time.UTC),
	}
	second := processedItem(5, "SCHAB WIEPRZOWY", "0.356", "32.50", "11.57", "0", "Schab wieprzowy", receipt.StageModel, 0.70)
	second.Verified.Corrected = true
	second.Normalization.ModelSuggestionRaw = `{"index":1,"name":"Schab wieprzowy"}`
	first := processedItem(2, "MLEKO 3.2% UHT 1L", "1", "4.99", "3.99", "1.00", "Mleko", receipt.StageStaticRule, 0.98)
	inconsistent := processedItem(7, "PANIERKA", "2", "3.00", "9.00", "0", "Panierka", receipt.StageModel, 0.70)
	inconsistent.Verified.Inconsistent = true
	inconsistent.Normalization.Warning = "arithmetic mismatch"
	// Deliberately unordered to exercise the line index ordering on read.
	saved.Items = []receipt.ProcessedItem{second, first, inconsistent}

	if err := db.SaveReceipt(ctx, saved); err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}

	got, err := db.GetReceipt(ctx, "rcpt-test-1")
	if err != nil {
		t.Fatalf("GetReceipt failed: %v", err)
	}
	if got.Store != "Biedronka" || got.StoreHint != "biedronka centrum" {
		t.Errorf("store fields did not round-trip: %+v", got)
	}
	if got.PurchasedAt != "2026-08-14 17:32" {
		t.Errorf("purchased_at did not round-trip: %q", got.PurchasedAt)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("created_at did not round-trip: got %v, want %v", got.CreatedAt, saved.CreatedAt)
	}
	if len(got.Diagnostics) != 2 || got.Diagnostics[0] != "dropped junk line 4" {
		t.Errorf("diagnostics did not round-trip: %v", got.Diagnostics)
	}

	if len(got.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got.Items))
	}
	for i, want := range []int{2, 5, 7} {
		if got.Items[i].Verified.LineIndex != want {
			t.Errorf("item %d: expected line index %d, got %d", i, want, got.Items[i].Verified.LineIndex)
		}
	}

	milk := got.Items[0]
	if milk.Verified.RawName != "MLEKO 3.2% UHT 1L" {
		t.Errorf("unexpected first item: %+v", milk.Verified)
	}
	if !milk.Verified.UnitPrice.Equal(decimal.RequireFromString("4.99")) ||
		!milk.Verified.LineTotal.Equal(decimal.RequireFromString("3.99")) ||
		!milk.Verified.Discount.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("decimals did not round-trip: %+v", milk.Verified)
	}
	if milk.Normalization.Stage != receipt.StageStaticRule || milk.Normalization.Confidence != 0.98 {
		t.Errorf("normalization did not round-trip: %+v", milk.Normalization)
	}

	schab := got.Items[1]
	if !schab.Verified.Corrected {
		t.Error("corrected flag did not round-trip")
	}
	if !schab.Verified.Quantity.Equal(decimal.RequireFromString("0.356")) {
		t.Errorf("weighted quantity did not round-trip: %v", schab.Verified.Quantity)
	}
	if schab.Normalization.ModelSuggestionRaw == "" {
		t.Error("model suggestion raw did not round-trip")
	}

	if !got.Items[2].Verified.Inconsistent {
		t.Error("inconsistent flag did not round-trip")
	}
	if got.Items[2].Normalization.Warning != "arithmetic mismatch" {
		t.Errorf("warning did not round-trip: %q", got.Items[2].Normalization.Warning)
	}
	if got.InconsistentCount() != 1 {
		t.Errorf("expected 1 inconsistent item, got %d", got.InconsistentCount())
	}
}

func TestGetReceiptNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetReceipt(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListReceipts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	older := &receipt.ProcessedReceipt{
		ID:        "rcpt-old",
		Store:     "Biedronka",
		CreatedAt: time.Date(2026, 8, 13, 10, 0, 0, 0, time.UTC),
		Items: []receipt.ProcessedItem{
			processedItem(0, "MLEKO", "1", "4.99", "4.99", "0", "Mleko", receipt.StageStaticRule, 0.98),
			processedItem(1, "PANIERKA", "2", "3.00", "9.00", "0", "Panierka", receipt.StageModel, 0.70),
		},
	}
	older.Items[1].Verified.Inconsistent = true
	newer := &receipt.ProcessedReceipt{
		ID:        "rcpt-new",
		Store:     "Lidl",
		CreatedAt: time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC),
		Items: []receipt.ProcessedItem{
			processedItem(0, "CHLEB", "1", "3.49", "3.49", "0", "Chleb", receipt.StageStaticRule, 0.98),
		},
	}
	for _, rec := range []*receipt.ProcessedReceipt{older, newer} {
		if err := db.SaveReceipt(ctx, rec); err != nil {
			t.Fatalf("SaveReceipt(%s) failed: %v", rec.ID, err)
		}
	}

	all, err := db.ListReceipts(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(all))
	}
	if all[0].ID != "rcpt-new" || all[1].ID != "rcpt-old" {
		t.Errorf("expected newest first, got %s then %s", all[0].ID, all[1].ID)
	}
	if all[1].ItemCount != 2 || all[1].InconsistentCount != 1 {
		t.Errorf("unexpected aggregates for the older receipt: %+v", all[1])
	}
	if all[0].ItemCount != 1 || all[0].InconsistentCount != 0 {
		t.Errorf("unexpected aggregates for the newer receipt: %+v", all[0])
	}

	lidl, err := db.ListReceipts(ctx, "Lidl", 10, 0)
	if err != nil {
		t.Fatalf("ListReceipts(Lidl) failed: %v", err)
	}
	if len(lidl) != 1 || lidl[0].ID != "rcpt-new" {
		t.Errorf("store filter failed: %+v", lidl)
	}
}

func TestDeleteReceiptCascadesItems(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := &receipt.ProcessedReceipt{
		ID:        "rcpt-del",
		Store:     "Kaufland",
		CreatedAt: time.Now().UTC(),
		Items: []receipt.ProcessedItem{
			processedItem(0, "MLEKO", "1", "4.99", "4.99", "0", "Mleko", receipt.StageStaticRule, 0.98),
		},
	}
	if err := db.SaveReceipt(ctx, rec); err != nil {
		t.Fatalf("SaveReceipt failed: %v", err)
	}

	if err := db.DeleteReceipt(ctx, "rcpt-del"); err != nil {
		t.Fatalf("DeleteReceipt failed: %v", err)
	}
	if _, err := db.GetReceipt(ctx, "rcpt-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var orphans int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM receipt_items WHERE receipt_id = ?`, "rcpt-del").
		Scan(&orphans)
	if err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected the cascade to remove items, %d left", orphans)
	}

	if err := db.DeleteReceipt(ctx, "rcpt-del"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a deleted receipt, got %v", err)
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &receipt.ProcessedReceipt{
		ID:        "rcpt-stats-1",
		Store:     "Biedronka",
		CreatedAt: time.Now().UTC(),
		Items: []receipt.ProcessedItem{
			processedItem(0, "MLEKO", "1", "4.99", "4.99", "0", "Mleko", receipt.StageStaticRule, 0.98),
			processedItem(1, "MASŁO", "1", "7.49", "7.49", "0", "Masło", receipt.StageStaticRule, 0.98),
		},
	}
	second := &receipt.ProcessedReceipt{
		ID:        "rcpt-stats-2",
		Store:     "Lidl",
		CreatedAt: time.Now().UTC(),
		Items: []receipt.ProcessedItem{
			processedItem(0, "SCHAB", "0.5", "30.00", "15.00", "0", "Schab wieprzowy", receipt.StageModel, 0.70),
		},
	}
	second.Items[0].Verified.Inconsistent = true
	for _, rec := range []*receipt.ProcessedReceipt{first, second} {
		if err := db.SaveReceipt(ctx, rec); err != nil {
			t.Fatalf("SaveReceipt(%s) failed: %v", rec.ID, err)
		}
	}
	if err := db.UpsertAlias(ctx, alias("MLEKO", "Mleko", "Biedronka", 0.98, receipt.StageStaticRule)); err != nil {
		t.Fatalf("UpsertAlias failed: %v", err)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ReceiptCount != 2 {
		t.Errorf("ReceiptCount = %d, want 2", stats.ReceiptCount)
	}
	if stats.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", stats.ItemCount)
	}
	if stats.InconsistentItems != 1 {
		t.Errorf("InconsistentItems = %d, want 1", stats.InconsistentItems)
	}
	if stats.AliasCount != 1 {
		t.Errorf("AliasCount = %d, want 1", stats.AliasCount)
	}
	wantAvg := (0.98 + 0.98 + 0.70) / 3
	if math.Abs(stats.AverageConfidence-wantAvg) > 1e-9 {
		t.Errorf("AverageConfidence = %f, want %f", stats.AverageConfidence, wantAvg)
	}
	if stats.ItemsByStage[string(receipt.StageStaticRule)] != 2 ||
		stats.ItemsByStage[string(receipt.StageModel)] != 1 {
		t.Errorf("unexpected stage breakdown: %v", stats.ItemsByStage)
	}
	if stats.ReceiptsByStore["Biedronka"] != 1 || stats.ReceiptsByStore["Lidl"] != 1 {
		t.Errorf("unexpected store breakdown: %v", stats.ReceiptsByStore)
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ReceiptCount != 0 || stats.ItemCount != 0 || stats.AverageConfidence != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}

func TestReopenKeepsSchemaAndData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.UpsertAlias(ctx, alias("MLEKO", "Mleko", "Biedronka", 0.98, receipt.StageStaticRule)); err != nil {
		t.Fatalf("UpsertAlias failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Schema creation and migrations run again on reopen and must tolerate
	// the already-migrated database.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	found, err := reopened.LookupAliases(ctx, []string{"MLEKO"}, "Biedronka")
	if err != nil {
		t.Fatalf("LookupAliases after reopen failed: %v", err)
	}
	if found["MLEKO"].CanonicalName != "Mleko" {
		t.Errorf("data did not survive reopen: %+v", found)
	}
}
