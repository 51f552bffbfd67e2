package ai

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"receiptserver/internal/config"
	"receiptserver/receipt"
)

// GatewayOptions configures batching, caching and concurrency.
type GatewayOptions struct {
	// SubBatchSize is the largest batch resolved with a single model call.
	// Bigger batches split into sub-batches of this size.
	SubBatchSize int

	// Workers bounds the number of concurrent outbound call streams.
	Workers int

	// RequestTimeout applies per model call.
	RequestTimeout time.Duration

	ExactCacheSize     int
	ApproxCacheSize    int
	ApproxSimThreshold float64

	// RateLimit throttles outbound calls across all workers.
	RateLimit rate.Limit
	RateBurst int
}

// DefaultGatewayOptions returns the gateway defaults.
func DefaultGatewayOptions() GatewayOptions {
	return GatewayOptions{
		SubBatchSize:       10,
		Workers:            2,
		RequestTimeout:     30 * time.Second,
		ExactCacheSize:     2048,
		ApproxCacheSize:    512,
		ApproxSimThreshold: 0.92,
		RateLimit:          rate.Limit(4),
		RateBurst:          2,
	}
}

func (o GatewayOptions) withDefaults() GatewayOptions {
	def := DefaultGatewayOptions()
	if o.SubBatchSize <= 0 {
		o.SubBatchSize = def.SubBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = def.RequestTimeout
	}
	if o.ExactCacheSize <= 0 {
		o.ExactCacheSize = def.ExactCacheSize
	}
	if o.ApproxCacheSize <= 0 {
		o.ApproxCacheSize = def.ApproxCacheSize
	}
	if o.ApproxSimThreshold <= 0 {
		o.ApproxSimThreshold = def.ApproxSimThreshold
	}
	if o.RateLimit <= 0 {
		o.RateLimit = def.RateLimit
	}
	if o.RateBurst <= 0 {
		o.RateBurst = def.RateBurst
	}
	return o
}

// GatewayStats is a point-in-time snapshot of the gateway counters.
type GatewayStats struct {
	Calls        int64 `json:"calls"`
	Failures     int64 `json:"failures"`
	ExactHits    int64 `json:"exact_hits"`
	ExactMisses  int64 `json:"exact_misses"`
	ApproxHits   int64 `json:"approx_hits"`
	ApproxMisses int64 `json:"approx_misses"`
	ExactSize    int   `json:"exact_size"`
	ApproxSize   int   `json:"approx_size"`
}

// Gateway batches name resolutions into model calls behind a two-tier cache
// and a bounded worker pool. A nil or disabled backend degrades every
// uncached name to a miss, never to an error; the pipeline's user stage
// picks those up.
type Gateway struct {
	client     Client
	exact      *ExactCache
	approx     *ApproxCache
	vectorizer *Vectorizer
	limiter    *rate.Limiter
	opts       GatewayOptions

	mu       sync.Mutex
	calls    int64
	failures int64
}

// NewGateway creates a gateway over the given backend. client may be nil.
func NewGateway(client Client, opts GatewayOptions) *Gateway {
	opts = opts.withDefaults()
	return &Gateway{
		client:     client,
		exact:      NewExactCache(opts.ExactCacheSize),
		approx:     NewApproxCache(opts.ApproxCacheSize, opts.ApproxSimThreshold),
		vectorizer: NewVectorizer(),
		limiter:    rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		opts:       opts,
	}
}

// NewGatewayFromConfig creates a gateway with options taken from the server
// configuration.
func NewGatewayFromConfig(client Client, cfg *config.GatewayConfig) *Gateway {
	if cfg == nil {
		return NewGateway(client, GatewayOptions{})
	}
	return NewGateway(client, GatewayOptions{
		SubBatchSize:       cfg.SubBatchSize,
		Workers:            cfg.Workers,
		RequestTimeout:     cfg.ModelTimeout,
		ExactCacheSize:     cfg.ExactCacheSize,
		ApproxCacheSize:    cfg.ApproxCacheSize,
		ApproxSimThreshold: cfg.ApproxSimThreshold,
		RateLimit:          rate.Limit(cfg.RateLimitPerSecond),
		RateBurst:          cfg.RateLimitBurst,
	})
}

// ResolveBatch resolves the given cleaned names to model suggestions. Names
// absent from the returned map found no suggestion anywhere; callers fall
// through to their next stage. Both caches are consulted before any model
// call, and every model answer is written back to them.
func (g *Gateway) ResolveBatch(ctx context.Context, names []string, examples []receipt.ConfirmedExample) map[string]receipt.ModelSuggestion {
	suggestions := make(map[string]receipt.ModelSuggestion, len(names))
	vectors := make(map[string]Vector)
	var misses []string

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, done := suggestions[name]; done {
			continue
		}
		if _, pending := vectors[name]; pending {
			continue
		}

		if suggestion, ok := g.exact.Get(name); ok {
			suggestions[name] = suggestion
			continue
		}

		vector := g.vectorizer.Vectorize(name)
		if suggestion, ok := g.approx.Lookup(vector); ok {
			suggestions[name] = suggestion
			continue
		}

		vectors[name] = vector
		misses = append(misses, name)
	}

	if len(misses) == 0 {
		return suggestions
	}
	if g.client == nil || !g.client.IsEnabled() {
		return suggestions
	}

	for name, suggestion := range g.resolveMisses(ctx, misses, examples) {
		suggestions[name] = suggestion
		g.exact.Add(name, suggestion)
		// skips stay out of the approximate cache: a skip is specific to
		// one name, a cosine-close neighbour may still resolve
		if !suggestion.Skip {
			g.approx.Add(name, vectors[name], suggestion)
		}
	}

	return suggestions
}

// Resolve is the single-name convenience wrapper around ResolveBatch.
func (g *Gateway) Resolve(ctx context.Context, name string, examples []receipt.ConfirmedExample) (receipt.ModelSuggestion, bool) {
	suggestions := g.ResolveBatch(ctx, []string{name}, examples)
	suggestion, ok := suggestions[name]
	return suggestion, ok
}

// resolveMisses splits the uncached names into sub-batches and resolves
// them. Small batches go out as one call; larger ones fan out across the
// worker pool, each worker owning a contiguous share of sub-batches.
func (g *Gateway) resolveMisses(ctx context.Context, misses []string, examples []receipt.ConfirmedExample) map[string]receipt.ModelSuggestion {
	if len(misses) <= g.opts.SubBatchSize {
		return g.callModel(ctx, misses, examples)
	}

	subBatches := chunkNames(misses, g.opts.SubBatchSize)
	workers := g.opts.Workers
	if workers > len(subBatches) {
		workers = len(subBatches)
	}
	groups := splitGroups(subBatches, workers)

	results := make(chan map[string]receipt.ModelSuggestion, len(groups))
	var wg sync.WaitGroup
	wg.Add(len(groups))
	for _, group := range groups {
		go func(group [][]string) {
			defer wg.Done()
			results <- g.callModelGroup(ctx, group, examples)
		}(group)
	}
	wg.Wait()
	close(results)

	merged := make(map[string]receipt.ModelSuggestion, len(misses))
	for result := range results {
		for name, suggestion := range result {
			merged[name] = suggestion
		}
	}
	return merged
}

// callModel issues one model call for one sub-batch.
func (g *Gateway) callModel(ctx context.Context, names []string, examples []receipt.ConfirmedExample) map[string]receipt.ModelSuggestion {
	if err := g.limiter.Wait(ctx); err != nil {
		log.Printf("[Gateway] Rate limiter wait aborted: %v", err)
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.opts.RequestTimeout)
	defer cancel()

	g.recordCalls(1)
	response, err := g.client.Chat(callCtx, batchSystemPrompt, BuildBatchPrompt(names, examples))
	if err != nil {
		g.recordFailure()
		log.Printf("[Gateway] Model call failed for %d names: %v", len(names), err)
		return nil
	}

	suggestions, err := parseBatchResponse(response, names)
	if err != nil {
		g.recordFailure()
		log.Printf("[Gateway] %v", err)
		return nil
	}
	return suggestions
}

// callModelGroup issues one worker's share of sub-batches as a sequential
// batch call. A failed sub-batch leaves its names unresolved without
// touching its siblings.
func (g *Gateway) callModelGroup(ctx context.Context, group [][]string, examples []receipt.ConfirmedExample) map[string]receipt.ModelSuggestion {
	// one token per outbound prompt, acquired up front
	prompts := make([]string, len(group))
	for i, names := range group {
		if err := g.limiter.Wait(ctx); err != nil {
			log.Printf("[Gateway] Rate limiter wait aborted: %v", err)
			return nil
		}
		prompts[i] = BuildBatchPrompt(names, examples)
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(len(group))*g.opts.RequestTimeout)
	defer cancel()

	g.recordCalls(int64(len(group)))
	responses, err := g.client.ChatBatch(callCtx, batchSystemPrompt, prompts)
	if err != nil {
		g.recordFailure()
		log.Printf("[Gateway] Batch call reported failures: %v", err)
	}

	merged := make(map[string]receipt.ModelSuggestion)
	for i, response := range responses {
		if response == "" {
			continue
		}
		suggestions, err := parseBatchResponse(response, group[i])
		if err != nil {
			g.recordFailure()
			log.Printf("[Gateway] %v", err)
			continue
		}
		for name, suggestion := range suggestions {
			merged[name] = suggestion
		}
	}
	return merged
}

// Enabled reports whether a model backend is wired. A disabled gateway
// still serves its caches; only fresh misses degrade.
func (g *Gateway) Enabled() bool {
	return g.client != nil && g.client.IsEnabled()
}

// Stats returns a snapshot of the gateway counters.
func (g *Gateway) Stats() GatewayStats {
	g.mu.Lock()
	calls, failures := g.calls, g.failures
	g.mu.Unlock()

	exactHits, exactMisses := g.exact.Stats()
	approxHits, approxMisses := g.approx.Stats()

	return GatewayStats{
		Calls:        calls,
		Failures:     failures,
		ExactHits:    exactHits,
		ExactMisses:  exactMisses,
		ApproxHits:   approxHits,
		ApproxMisses: approxMisses,
		ExactSize:    g.exact.Len(),
		ApproxSize:   g.approx.Len(),
	}
}

func (g *Gateway) recordCalls(n int64) {
	g.mu.Lock()
	g.calls += n
	g.mu.Unlock()
}

func (g *Gateway) recordFailure() {
	g.mu.Lock()
	g.failures++
	g.mu.Unlock()
}

// chunkNames splits names into sub-batches of at most size each.
func chunkNames(names []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(names); start += size {
		end := start + size
		if end > len(names) {
			end = len(names)
		}
		chunks = append(chunks, names[start:end])
	}
	return chunks
}

// splitGroups distributes sub-batches into n contiguous groups.
func splitGroups(subBatches [][]string, n int) [][][]string {
	groups := make([][][]string, 0, n)
	base := len(subBatches) / n
	extra := len(subBatches) % n

	start := 0
	for i := 0; i < n; i++ {
		count := base
		if i < extra {
			count++
		}
		if count == 0 {
			continue
		}
		groups = append(groups, subBatches[start:start+count])
		start += count
	}
	return groups
}
