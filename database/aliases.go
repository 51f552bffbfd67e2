package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"receiptserver/receipt"
)

const aliasColumns = `id, raw_name, canonical_name, store, confidence, origin, seen_count, created_at, updated_at`

// LookupAliases returns the alias records whose raw name exactly matches one
// of the given names, keyed by raw name. Store-scoped records win over global
// ones for the same raw name.
func (db *DB) LookupAliases(ctx context.Context, names []string, store string) (map[string]receipt.AliasRecord, error) {
	out := make(map[string]receipt.AliasRecord, len(names))
	if len(names) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(names)+2)
	for _, name := range names {
		args = append(args, name)
	}
	args = append(args, store, store)

	// Store-scoped rows sort first, so the first row seen per raw name is
	// the preferred one.
	query := fmt.Sprintf(`
		SELECT %s FROM aliases
		WHERE raw_name IN (%s) AND (store = ? OR store = '')
		ORDER BY CASE WHEN store = ? THEN 0 ELSE 1 END`, aliasColumns, placeholders)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up aliases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		if _, ok := out[rec.RawName]; !ok {
			out[rec.RawName] = rec
		}
	}
	return out, rows.Err()
}

// AliasCandidates returns up to limit records usable for fuzzy matching: the
// store's own aliases plus global ones, strongest signal first.
func (db *DB) AliasCandidates(ctx context.Context, store string, limit int) ([]receipt.AliasRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM aliases
		WHERE store = ? OR store = ''
		ORDER BY confidence DESC, seen_count DESC
		LIMIT ?`, aliasColumns)

	rows, err := db.conn.QueryContext(ctx, query, store, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias candidates: %w", err)
	}
	defer rows.Close()

	return collectAliases(rows)
}

// ConfirmedExamples returns recent user-confirmed mappings, newest first.
func (db *DB) ConfirmedExamples(ctx context.Context, store string, limit int) ([]receipt.ConfirmedExample, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT raw_name, canonical_name FROM aliases
		WHERE origin = ? AND (store = ? OR store = '')
		ORDER BY updated_at DESC
		LIMIT ?`, string(receipt.StageUser), store, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed examples: %w", err)
	}
	defer rows.Close()

	var out []receipt.ConfirmedExample
	for rows.Next() {
		var ex receipt.ConfirmedExample
		if err := rows.Scan(&ex.RawName, &ex.CanonicalName); err != nil {
			return nil, fmt.Errorf("failed to scan confirmed example: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// UpsertAlias inserts the record or refreshes the existing one with the same
// raw name and store. A refresh overwrites the canonical name, confidence and
// origin with the latest resolution and bumps the seen counter.
func (db *DB) UpsertAlias(ctx context.Context, rec receipt.AliasRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO aliases (raw_name, canonical_name, store, confidence, origin, seen_count)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(raw_name, store) DO UPDATE SET
			canonical_name = excluded.canonical_name,
			confidence = excluded.confidence,
			origin = excluded.origin,
			seen_count = seen_count + 1,
			updated_at = CURRENT_TIMESTAMP`,
		rec.RawName, rec.CanonicalName, rec.Store, rec.Confidence, string(rec.Origin))
	if err != nil {
		return fmt.Errorf("failed to upsert alias %q: %w", rec.RawName, err)
	}
	return nil
}

// ListAliases returns alias records ordered by recency. An empty store lists
// every record; a non-empty store restricts the listing to that scope.
func (db *DB) ListAliases(ctx context.Context, store string, limit, offset int) ([]receipt.AliasRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM aliases`, aliasColumns)
	args := make([]interface{}, 0, 3)
	if store != "" {
		query += ` WHERE store = ?`
		args = append(args, store)
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	return collectAliases(rows)
}

// CountAliases returns the number of alias records, optionally scoped to a
// store.
func (db *DB) CountAliases(ctx context.Context, store string) (int, error) {
	query := `SELECT COUNT(*) FROM aliases`
	args := []interface{}{}
	if store != "" {
		query += ` WHERE store = ?`
		args = append(args, store)
	}

	var n int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count aliases: %w", err)
	}
	return n, nil
}

// DeleteAlias removes the record with the given id.
func (db *DB) DeleteAlias(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM aliases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alias %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete alias %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("alias %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanAlias(rows *sql.Rows) (receipt.AliasRecord, error) {
	var rec receipt.AliasRecord
	var origin string
	err := rows.Scan(&rec.ID, &rec.RawName, &rec.CanonicalName, &rec.Store,
		&rec.Confidence, &origin, &rec.SeenCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return receipt.AliasRecord{}, fmt.Errorf("failed to scan alias: %w", err)
	}
	rec.Origin = receipt.Stage(origin)
	return rec, nil
}

func collectAliases(rows *sql.Rows) ([]receipt.AliasRecord, error) {
	var out []receipt.AliasRecord
	for rows.Next() {
		rec, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
