package normalization

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"receiptserver/receipt"
)

// ErrEmptyName reports a raw product name that is empty after cleanup.
// This is a caller error: the extraction handed over a line with no product
// text.
var ErrEmptyName = errors.New("product name is empty after cleanup")

// ErrConfirmationTimeout is returned by Confirmer implementations when the
// user did not answer within the configured window.
var ErrConfirmationTimeout = errors.New("confirmation request timed out")

// ModelResolver resolves a batch of cleaned names to model suggestions.
// Names absent from the returned map are misses. Implementations never
// return an error: backend failures degrade to misses so the pipeline can
// fall through to user confirmation.
type ModelResolver interface {
	ResolveBatch(ctx context.Context, names []string, examples []receipt.ConfirmedExample) map[string]receipt.ModelSuggestion
}

// Confirmer asks a human to confirm or correct a suggested canonical name.
// The call blocks until an answer arrives, the implementation's timeout
// expires (ErrConfirmationTimeout) or ctx is done.
type Confirmer interface {
	RequestConfirmation(ctx context.Context, rawName, suggestedName string) (string, error)
}

// unconfirmedConfidence is assigned when the pipeline substitutes a default
// with no stage backing it. It sits in the needs-confirmation band so the
// record is never auto-persisted.
const unconfirmedConfidence = 0.30

// Config carries the pipeline thresholds.
type Config struct {
	// AliasSimilarityThreshold accepts an alias fuzzy match at or above
	// this combined similarity.
	AliasSimilarityThreshold float64

	// MinAcceptableConfidence is the floor below which a stage result is
	// kept only as a best guess and the name moves on toward user
	// confirmation.
	MinAcceptableConfidence float64

	// ModelConfidence is the fixed confidence assigned to accepted model
	// suggestions.
	ModelConfidence float64
}

// DefaultConfig returns the pipeline thresholds used when the caller passes
// zero values.
func DefaultConfig() Config {
	return Config{
		AliasSimilarityThreshold: 0.80,
		MinAcceptableConfidence:  0.60,
		ModelConfidence:          0.70,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.AliasSimilarityThreshold <= 0 {
		c.AliasSimilarityThreshold = def.AliasSimilarityThreshold
	}
	if c.MinAcceptableConfidence <= 0 {
		c.MinAcceptableConfidence = def.MinAcceptableConfidence
	}
	if c.ModelConfidence <= 0 {
		c.ModelConfidence = def.ModelConfidence
	}
	return c
}

// ResolveContext is the per-invocation context: the detected store, a
// snapshot of the alias catalog and prior confirmed examples for model
// prompts. The snapshot may be nil when no aliases exist yet.
type ResolveContext struct {
	Store    string
	Aliases  *AliasSnapshot
	Examples []receipt.ConfirmedExample
}

// Pipeline resolves raw product names to canonical ones through five
// ordered stages: cleanup, static rules, alias lookup, model fallback and
// user confirmation. A Pipeline is safe for concurrent use; all mutable
// lookup state comes in through the ResolveContext.
type Pipeline struct {
	cleaner *Cleaner
	rules   *RuleSet
	metrics *SimilarityMetrics
	models  ModelResolver
	confirm Confirmer
	titler  cases.Caser
	cfg     Config
}

// NewPipeline builds a pipeline over the built-in rule set. models and
// confirm may be nil; the corresponding stages then pass through.
func NewPipeline(cfg Config, models ModelResolver, confirm Confirmer) *Pipeline {
	return &Pipeline{
		cleaner: NewCleaner(),
		rules:   DefaultRuleSet(),
		metrics: NewSimilarityMetrics(),
		models:  models,
		confirm: confirm,
		titler:  cases.Title(language.Polish),
		cfg:     cfg.withDefaults(),
	}
}

// Cleaner exposes the pipeline's cleanup stage so callers can index aliases
// with the same key function the lookups use.
func (p *Pipeline) Cleaner() *Cleaner {
	return p.cleaner
}

// Normalize resolves a single raw name.
func (p *Pipeline) Normalize(ctx context.Context, rawName string, rctx ResolveContext) (receipt.NormalizationResult, error) {
	results, err := p.NormalizeBatch(ctx, []string{rawName}, rctx)
	if err != nil {
		return receipt.NormalizationResult{}, err
	}
	return results[0], nil
}

// candidate is the best sub-threshold guess accumulated across stages.
type candidate struct {
	name       string
	confidence float64
}

// pending tracks a name still unresolved after the deterministic stages.
type pending struct {
	raw     string
	cleaned string
	key     string
	best    candidate
}

// NormalizeBatch resolves a batch of raw names in input order. Duplicate
// raw names are resolved once and share the result, so one receipt never
// asks the model or the user twice for the same text. The only error is
// ErrEmptyName for input that holds no product text.
func (p *Pipeline) NormalizeBatch(ctx context.Context, rawNames []string, rctx ResolveContext) ([]receipt.NormalizationResult, error) {
	resolved := make(map[string]receipt.NormalizationResult, len(rawNames))
	var unresolved []*pending

	for _, raw := range rawNames {
		if _, done := resolved[raw]; done {
			continue
		}
		if alreadyPending(unresolved, raw) {
			continue
		}

		result, pend, err := p.resolveDeterministic(raw, rctx)
		if err != nil {
			return nil, fmt.Errorf("normalize %q: %w", raw, err)
		}
		if pend != nil {
			unresolved = append(unresolved, pend)
			continue
		}
		resolved[raw] = result
	}

	p.resolveWithModel(ctx, unresolved, rctx, resolved)

	for _, pend := range unresolved {
		if _, done := resolved[pend.raw]; done {
			continue
		}
		resolved[pend.raw] = p.resolveWithUser(ctx, pend)
	}

	out := make([]receipt.NormalizationResult, len(rawNames))
	for i, raw := range rawNames {
		out[i] = resolved[raw]
	}
	return out, nil
}

// resolveDeterministic runs the alias fast path, cleanup, static rules and
// alias fuzzy lookup. It returns either a final result or a pending entry
// for the model and user stages.
func (p *Pipeline) resolveDeterministic(raw string, rctx ResolveContext) (receipt.NormalizationResult, *pending, error) {
	if rctx.Aliases != nil {
		if rec, ok := rctx.Aliases.ExactRaw(raw, rctx.Store); ok {
			return receipt.NormalizationResult{
				CanonicalName: rec.CanonicalName,
				Confidence:    rec.Confidence,
				Stage:         receipt.StageAlias,
			}, nil, nil
		}
	}

	cleaned := p.cleaner.Clean(raw)
	key := p.cleaner.Key(raw)
	if key == "" {
		return receipt.NormalizationResult{}, nil, ErrEmptyName
	}

	best := candidate{}

	if canonical, confidence, ok := p.rules.Match(key, rctx.Store); ok {
		if confidence >= p.cfg.MinAcceptableConfidence {
			return receipt.NormalizationResult{
				CanonicalName: canonical,
				Confidence:    confidence,
				Stage:         receipt.StageStaticRule,
			}, nil, nil
		}
		best = candidate{name: canonical, confidence: confidence}
	}

	if rctx.Aliases != nil {
		if result, cand, ok := p.lookupAlias(key, rctx); ok {
			return result, nil, nil
		} else if cand.confidence > best.confidence {
			best = cand
		}
	}

	return receipt.NormalizationResult{}, &pending{raw: raw, cleaned: cleaned, key: key, best: best}, nil
}

// lookupAlias scans the snapshot store-scoped first, then globally, and
// accepts the first scope whose best score clears the similarity threshold.
func (p *Pipeline) lookupAlias(key string, rctx ResolveContext) (receipt.NormalizationResult, candidate, bool) {
	best := candidate{}

	scopes := []string{rctx.Store, ""}
	if rctx.Store == "" {
		scopes = scopes[1:]
	}
	for _, scope := range scopes {
		rec, score, found := rctx.Aliases.Best(key, scope, p.metrics)
		if !found {
			continue
		}
		if score >= p.cfg.AliasSimilarityThreshold && score >= p.cfg.MinAcceptableConfidence {
			return receipt.NormalizationResult{
				CanonicalName: rec.CanonicalName,
				Confidence:    score,
				Stage:         receipt.StageAlias,
			}, candidate{}, true
		}
		if score > best.confidence {
			best = candidate{name: rec.CanonicalName, confidence: score}
		}
	}

	return receipt.NormalizationResult{}, best, false
}

// resolveWithModel sends all still-unresolved keys to the model gateway in
// one batch and records accepted suggestions.
func (p *Pipeline) resolveWithModel(ctx context.Context, unresolved []*pending, rctx ResolveContext, resolved map[string]receipt.NormalizationResult) {
	if p.models == nil || len(unresolved) == 0 {
		return
	}

	keys := make([]string, 0, len(unresolved))
	seen := make(map[string]bool, len(unresolved))
	for _, pend := range unresolved {
		if !seen[pend.key] {
			seen[pend.key] = true
			keys = append(keys, pend.key)
		}
	}

	suggestions := p.models.ResolveBatch(ctx, keys, rctx.Examples)
	if len(suggestions) == 0 {
		return
	}

	for _, pend := range unresolved {
		suggestion, ok := suggestions[pend.key]
		if !ok || suggestion.Skip || suggestion.Name == "" {
			continue
		}
		if p.cfg.ModelConfidence < p.cfg.MinAcceptableConfidence {
			if p.cfg.ModelConfidence > pend.best.confidence {
				pend.best = candidate{name: suggestion.Name, confidence: p.cfg.ModelConfidence}
			}
			continue
		}
		resolved[pend.raw] = receipt.NormalizationResult{
			CanonicalName:      suggestion.Name,
			Confidence:         p.cfg.ModelConfidence,
			Stage:              receipt.StageModel,
			ModelSuggestionRaw: suggestion.Raw,
		}
	}
}

// resolveWithUser is the final stage. The best guess goes to the confirmer;
// on timeout or when no confirmer is wired, the guess is substituted as-is
// with an unconfirmed warning so the record stays auditable.
func (p *Pipeline) resolveWithUser(ctx context.Context, pend *pending) receipt.NormalizationResult {
	guess := pend.best.name
	confidence := pend.best.confidence
	if guess == "" {
		guess = p.titler.String(pend.cleaned)
		confidence = unconfirmedConfidence
	}

	if p.confirm == nil {
		return receipt.NormalizationResult{
			CanonicalName: guess,
			Confidence:    confidence,
			Stage:         receipt.StageUser,
			Warning:       "unconfirmed: no confirmation channel",
		}
	}

	answer, err := p.confirm.RequestConfirmation(ctx, pend.raw, guess)
	if err == nil && answer != "" {
		return receipt.NormalizationResult{
			CanonicalName: answer,
			Confidence:    1.0,
			Stage:         receipt.StageUser,
		}
	}

	reason := "no answer"
	if err != nil {
		reason = err.Error()
		log.Printf("[Normalize] confirmation failed for %q: %v", pend.raw, err)
	}
	return receipt.NormalizationResult{
		CanonicalName: guess,
		Confidence:    confidence,
		Stage:         receipt.StageUser,
		Warning:       "unconfirmed: " + reason,
	}
}

func alreadyPending(unresolved []*pending, raw string) bool {
	for _, pend := range unresolved {
		if pend.raw == raw {
			return true
		}
	}
	return false
}
