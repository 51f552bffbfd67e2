package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"receiptserver/receipt"
)

// ReceiptSummary is a listing row with per-receipt aggregates.
type ReceiptSummary struct {
	ID                string    `json:"id"`
	Store             string    `json:"store"`
	PurchasedAt       string    `json:"purchased_at,omitempty"`
	ItemCount         int       `json:"item_count"`
	InconsistentCount int       `json:"inconsistent_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Stats aggregates the stored receipts and aliases.
type Stats struct {
	ReceiptCount      int            `json:"receipt_count"`
	ItemCount         int            `json:"item_count"`
	InconsistentItems int            `json:"inconsistent_items"`
	AliasCount        int            `json:"alias_count"`
	AverageConfidence float64        `json:"average_confidence"`
	ItemsByStage      map[string]int `json:"items_by_stage"`
	ReceiptsByStore   map[string]int `json:"receipts_by_store"`
}

// SaveReceipt stores a processed receipt and its items in one transaction.
func (db *DB) SaveReceipt(ctx context.Context, rec *receipt.ProcessedReceipt) error {
	diagnostics := rec.Diagnostics
	if diagnostics == nil {
		diagnostics = []string{}
	}
	diagnosticsJSON, err := json.Marshal(diagnostics)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (id, store, store_hint, purchased_at, diagnostics, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Store, rec.StoreHint, rec.PurchasedAt, string(diagnosticsJSON), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO receipt_items (
			receipt_id, line_index, raw_name, quantity, unit_price, line_total,
			discount, corrected, inconsistent, canonical_name, confidence, stage,
			model_suggestion_raw, warning
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range rec.Items {
		v := item.Verified
		n := item.Normalization
		_, err = stmt.ExecContext(ctx,
			rec.ID, v.LineIndex, v.RawName,
			v.Quantity.String(), v.UnitPrice.String(), v.LineTotal.String(), v.Discount.String(),
			v.Corrected, v.Inconsistent,
			n.CanonicalName, n.Confidence, string(n.Stage), n.ModelSuggestionRaw, n.Warning)
		if err != nil {
			return fmt.Errorf("failed to insert item %d of receipt %s: %w", v.LineIndex, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit receipt %s: %w", rec.ID, err)
	}
	return nil
}

// GetReceipt loads a stored receipt with its items ordered by line index.
// Returns ErrNotFound when no receipt has the given id.
func (db *DB) GetReceipt(ctx context.Context, id string) (*receipt.ProcessedReceipt, error) {
	rec := &receipt.ProcessedReceipt{ID: id}
	var diagnosticsJSON string

	err := db.conn.QueryRowContext(ctx, `
		SELECT store, store_hint, purchased_at, diagnostics, created_at
		FROM receipts WHERE id = ?`, id).
		Scan(&rec.Store, &rec.StoreHint, &rec.PurchasedAt, &diagnosticsJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt %s: %w", id, err)
	}

	if diagnosticsJSON != "" && diagnosticsJSON != "[]" {
		if err := json.Unmarshal([]byte(diagnosticsJSON), &rec.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diagnostics of receipt %s: %w", id, err)
		}
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT line_index, raw_name, quantity, unit_price, line_total, discount,
			corrected, inconsistent, canonical_name, confidence, stage,
			model_suggestion_raw, warning
		FROM receipt_items WHERE receipt_id = ?
		ORDER BY line_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of receipt %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item receipt.ProcessedItem
		var quantity, unitPrice, lineTotal, discount, stage string
		err := rows.Scan(&item.Verified.LineIndex, &item.Verified.RawName,
			&quantity, &unitPrice, &lineTotal, &discount,
			&item.Verified.Corrected, &item.Verified.Inconsistent,
			&item.Normalization.CanonicalName, &item.Normalization.Confidence,
			&stage, &item.Normalization.ModelSuggestionRaw, &item.Normalization.Warning)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item of receipt %s: %w", id, err)
		}
		if item.Verified.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("bad quantity %q in receipt %s: %w", quantity, id, err)
		}
		if item.Verified.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("bad unit price %q in receipt %s: %w", unitPrice, id, err)
		}
		if item.Verified.LineTotal, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, fmt.Errorf("bad line total %q in receipt %s: %w", lineTotal, id, err)
		}
		if item.Verified.Discount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("bad discount %q in receipt %s: %w", discount, id, err)
		}
		item.Normalization.Stage = receipt.Stage(stage)
		rec.Items = append(rec.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load items of receipt %s: %w", id, err)
	}
	return rec, nil
}

// ListReceipts returns receipt summaries, newest first. An empty store lists
// receipts of every store.
func (db *DB) ListReceipts(ctx context.Context, store string, limit, offset int) ([]ReceiptSummary, error) {
	query := `
		SELECT r.id, r.store, r.purchased_at, r.created_at,
			COUNT(i.id),
			COALESCE(SUM(CASE WHEN i.inconsistent THEN 1 ELSE 0 END), 0)
		FROM receipts r
		LEFT JOIN receipt_items i ON i.receipt_id = r.id`
	args := make([]interface{}, 0, 3)
	if store != "" {
		query += ` WHERE r.store = ?`
		args = append(args, store)
	}
	query += `
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var out []ReceiptSummary
	for rows.Next() {
		var s ReceiptSummary
		err := rows.Scan(&s.ID, &s.Store, &s.PurchasedAt, &s.CreatedAt,
			&s.ItemCount, &s.InconsistentCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteReceipt removes a receipt; its items go with it through the foreign
// key cascade.
func (db *DB) DeleteReceipt(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete receipt %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	return nil
}

// Stats computes aggregate counters over the stored data.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ItemsByStage:    make(map[string]int),
		ReceiptsByStore: make(map[string]int),
	}

	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).
		Scan(&stats.ReceiptCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN inconsistent THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(confidence), 0)
		FROM receipt_items`).
		Scan(&stats.ItemCount, &stats.InconsistentItems, &stats.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate items: %w", err)
	}

	if stats.AliasCount, err = db.CountAliases(ctx, ""); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT stage, COUNT(*) FROM receipt_items GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to group items by stage: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, fmt.Errorf("failed to scan stage count: %w", err)
		}
		stats.ItemsByStage[stage] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to group items by stage: %w", err)
	}

	storeRows, err := db.conn.QueryContext(ctx, `
		SELECT store, COUNT(*) FROM receipts GROUP BY store`)
	if err != nil {
		return nil, fmt.Errorf("failed to group receipts by store: %w", err)
	}
	defer storeRows.Close()
	for storeRows.Next() {
		var store string
		var n int
		if err := storeRows.Scan(&store, &n); err != nil {
			return nil, fmt.Errorf("failed to scan store count: %w", err)
		}
		stats.ReceiptsByStore[store] = n
	}
	return stats, storeRows.Err()
}
