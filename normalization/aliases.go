package normalization

import "receiptserver/receipt"

type aliasKey struct {
	store string
	raw   string
}

type aliasEntry struct {
	key    string
	record receipt.AliasRecord
}

// AliasSnapshot is an immutable view of the alias catalog taken once per
// pipeline invocation. Sharing a snapshot keeps one receipt's in-flight
// resolutions from changing another receipt's lookups mid-run.
type AliasSnapshot struct {
	exact   map[aliasKey]receipt.AliasRecord
	byStore map[string][]aliasEntry
	all     []aliasEntry
}

// NewAliasSnapshot indexes the given alias records. keyFn computes the
// matching key for fuzzy comparison and must be the same key function the
// pipeline's cleanup stage uses.
func NewAliasSnapshot(records []receipt.AliasRecord, keyFn func(string) string) *AliasSnapshot {
	s := &AliasSnapshot{
		exact:   make(map[aliasKey]receipt.AliasRecord, len(records)*2),
		byStore: make(map[string][]aliasEntry),
		all:     make([]aliasEntry, 0, len(records)),
	}

	for _, rec := range records {
		entry := aliasEntry{key: keyFn(rec.RawName), record: rec}
		s.all = append(s.all, entry)
		if rec.Store != "" {
			s.byStore[rec.Store] = append(s.byStore[rec.Store], entry)
		}

		s.register(aliasKey{store: rec.Store, raw: rec.RawName}, rec)
		s.register(aliasKey{store: "", raw: rec.RawName}, rec)
	}

	return s
}

// register keeps the higher-confidence record when two aliases collide on
// the same key, which happens when stores disagree about a raw name.
func (s *AliasSnapshot) register(key aliasKey, rec receipt.AliasRecord) {
	if existing, ok := s.exact[key]; ok && existing.Confidence >= rec.Confidence {
		return
	}
	s.exact[key] = rec
}

// ExactRaw looks up a byte-exact raw name, store-scoped first, then
// globally. This is the constant-time fast path that skips the cleanup and
// matching stages entirely.
func (s *AliasSnapshot) ExactRaw(rawName, store string) (receipt.AliasRecord, bool) {
	if store != "" {
		if rec, ok := s.exact[aliasKey{store: store, raw: rawName}]; ok {
			return rec, true
		}
	}
	rec, ok := s.exact[aliasKey{store: "", raw: rawName}]
	return rec, ok
}

// Best returns the highest-scoring alias for a matching key. A non-empty
// store restricts the scan to that store's aliases; an empty store scans
// everything.
func (s *AliasSnapshot) Best(key, store string, metrics *SimilarityMetrics) (receipt.AliasRecord, float64, bool) {
	entries := s.all
	if store != "" {
		entries = s.byStore[store]
	}

	var (
		best      receipt.AliasRecord
		bestScore float64
		found     bool
	)
	for _, entry := range entries {
		if entry.key == "" {
			continue
		}
		score := metrics.CombinedSimilarity(key, entry.key)
		if !found || score > bestScore {
			best = entry.record
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

// Len returns the number of indexed alias records.
func (s *AliasSnapshot) Len() int {
	return len(s.all)
}
