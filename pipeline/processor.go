// Package pipeline assembles the end-to-end receipt flow: store detection,
// store-specific post-processing, arithmetic verification, name normalization
// and alias persistence. The Processor owns the orchestration only; every
// step lives in its own package and is injected, so tests can swap any
// collaborator.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"receiptserver/normalization"
	"receiptserver/receipt"
	"receiptserver/stores"
	"receiptserver/verification"
)

// AliasCatalog is the persistence collaborator for learned raw-to-canonical
// mappings. Reads feed the normalization pipeline; writes record confident
// resolutions for future receipts. Implementations must be safe for
// concurrent use.
type AliasCatalog interface {
	// LookupAliases returns the records whose raw name exactly matches one
	// of the given names, keyed by raw name. Store-scoped records for the
	// given store and global records are both included; on a raw-name
	// collision the store-scoped record wins.
	LookupAliases(ctx context.Context, names []string, store string) (map[string]receipt.AliasRecord, error)

	// AliasCandidates returns up to limit records usable for fuzzy
	// matching: the store's own aliases plus global ones, best first.
	AliasCandidates(ctx context.Context, store string, limit int) ([]receipt.AliasRecord, error)

	// ConfirmedExamples returns recent user-confirmed mappings, newest
	// first, for use as model prompt guidance.
	ConfirmedExamples(ctx context.Context, store string, limit int) ([]receipt.ConfirmedExample, error)

	// UpsertAlias inserts the record or refreshes the existing one with
	// the same raw name and store, bumping its seen count.
	UpsertAlias(ctx context.Context, record receipt.AliasRecord) error
}

// Options carries the processor tunables.
type Options struct {
	// AutoPersistThreshold is the minimum confidence at which a
	// normalization result is written back to the alias catalog.
	AutoPersistThreshold float64

	// CandidateLimit bounds how many alias records are loaded per receipt
	// for fuzzy matching.
	CandidateLimit int

	// ExampleLimit bounds how many confirmed examples are loaded per
	// receipt for the model prompt.
	ExampleLimit int
}

// DefaultOptions returns the options used when the caller passes zero values.
func DefaultOptions() Options {
	return Options{
		AutoPersistThreshold: 0.95,
		CandidateLimit:       2000,
		ExampleLimit:         5,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.AutoPersistThreshold <= 0 {
		o.AutoPersistThreshold = def.AutoPersistThreshold
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = def.CandidateLimit
	}
	if o.ExampleLimit <= 0 {
		o.ExampleLimit = def.ExampleLimit
	}
	return o
}

// Processor runs one extracted receipt through the full flow. It holds no
// per-receipt state and is safe for concurrent use.
type Processor struct {
	detector *stores.Detector
	verifier *verification.Verifier
	names    *normalization.Pipeline
	catalog  AliasCatalog
	opts     Options
}

// NewProcessor builds a processor over the given collaborators. catalog may
// be nil; the processor then runs without alias lookups or persistence.
func NewProcessor(detector *stores.Detector, verifier *verification.Verifier, names *normalization.Pipeline, catalog AliasCatalog, opts Options) *Processor {
	return &Processor{
		detector: detector,
		verifier: verifier,
		names:    names,
		catalog:  catalog,
		opts:     opts.withDefaults(),
	}
}

// Process turns one extracted receipt into a processed one. Input errors
// (a product name that is empty after cleanup) reject the whole receipt;
// catalog failures degrade to no-alias operation and are logged, never
// returned. The returned receipt carries a fresh ID and the diagnostics
// accumulated by the store post-processor.
func (p *Processor) Process(ctx context.Context, extracted receipt.ExtractedReceipt) (*receipt.ProcessedReceipt, error) {
	strategy := p.detector.Detect(extracted.RawText, extracted.StoreHint)
	profile := strategy.Profile()

	items, diagnostics := strategy.PostProcess(extracted.Items, extracted.RawText)
	verified := p.verifier.Verify(items)

	names := make([]string, len(verified))
	for i, item := range verified {
		names[i] = item.RawName
	}

	rctx := p.buildResolveContext(ctx, profile.Name, names)

	results, err := p.names.NormalizeBatch(ctx, names, rctx)
	if err != nil {
		return nil, fmt.Errorf("process receipt: %w", err)
	}

	processed := make([]receipt.ProcessedItem, len(verified))
	for i := range verified {
		processed[i] = receipt.ProcessedItem{
			Verified:      verified[i],
			Normalization: results[i],
		}
	}

	p.persistAliases(ctx, profile.Name, names, results)

	return &receipt.ProcessedReceipt{
		ID:          uuid.New().String(),
		Store:       profile.Name,
		StoreHint:   extracted.StoreHint,
		PurchasedAt: extracted.PurchasedAt,
		Items:       processed,
		Diagnostics: diagnostics,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// buildResolveContext loads the alias snapshot and prompt examples for one
// receipt. Catalog errors leave the corresponding part empty so the
// normalization pipeline falls through to its later stages.
func (p *Processor) buildResolveContext(ctx context.Context, store string, names []string) normalization.ResolveContext {
	rctx := normalization.ResolveContext{Store: store}
	if p.catalog == nil {
		return rctx
	}

	var records []receipt.AliasRecord

	exact, err := p.catalog.LookupAliases(ctx, names, store)
	if err != nil {
		log.Printf("[Process] alias lookup failed for store %q: %v", store, err)
	} else {
		for _, rec := range exact {
			records = append(records, rec)
		}
	}

	candidates, err := p.catalog.AliasCandidates(ctx, store, p.opts.CandidateLimit)
	if err != nil {
		log.Printf("[Process] alias candidates failed for store %q: %v", store, err)
	} else {
		records = append(records, candidates...)
	}

	if len(records) > 0 {
		rctx.Aliases = normalization.NewAliasSnapshot(records, p.names.Cleaner().Key)
	}

	examples, err := p.catalog.ConfirmedExamples(ctx, store, p.opts.ExampleLimit)
	if err != nil {
		log.Printf("[Process] confirmed examples failed for store %q: %v", store, err)
	} else {
		rctx.Examples = examples
	}

	return rctx
}

// persistAliases writes back every resolution confident enough for the
// catalog. An upsert refreshes an existing alias as well, so repeat
// sightings bump the record's seen count. Write failures are logged and
// dropped; persistence is best effort.
func (p *Processor) persistAliases(ctx context.Context, store string, names []string, results []receipt.NormalizationResult) {
	if p.catalog == nil {
		return
	}

	seen := make(map[string]bool, len(results))
	for i, res := range results {
		if res.CanonicalName == "" || res.Confidence < p.opts.AutoPersistThreshold {
			continue
		}
		raw := names[i]
		if seen[raw] {
			continue
		}
		seen[raw] = true

		record := receipt.AliasRecord{
			RawName:       raw,
			CanonicalName: res.CanonicalName,
			Store:         store,
			Confidence:    res.Confidence,
			Origin:        res.Stage,
		}
		if err := p.catalog.UpsertAlias(ctx, record); err != nil {
			log.Printf("[Process] failed to persist alias %q for store %q: %v", raw, store, err)
		}
	}
}
