package ai

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"receiptserver/receipt"
)

// ExactCache caches model suggestions by cleaned input text with LRU
// eviction. Safe for concurrent use.
type ExactCache struct {
	cache *lru.Cache[string, receipt.ModelSuggestion]

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewExactCache creates an exact-text cache with the given capacity.
func NewExactCache(size int) *ExactCache {
	if size <= 0 {
		size = 2048
	}
	cache, _ := lru.New[string, receipt.ModelSuggestion](size)
	return &ExactCache{cache: cache}
}

// Get returns the cached suggestion for a cleaned input text.
func (c *ExactCache) Get(key string) (receipt.ModelSuggestion, bool) {
	suggestion, ok := c.cache.Get(key)

	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	return suggestion, ok
}

// Add stores a suggestion, evicting the least recently used entry when the
// cache is full.
func (c *ExactCache) Add(key string, suggestion receipt.ModelSuggestion) {
	c.cache.Add(key, suggestion)
}

// Stats returns the hit and miss counters.
func (c *ExactCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *ExactCache) Len() int {
	return c.cache.Len()
}

type approxEntry struct {
	vector     Vector
	suggestion receipt.ModelSuggestion
}

// ApproxCache caches model suggestions by embedding vector. A lookup scans
// the cached vectors and accepts the best match at or above the cosine
// similarity threshold. It is consulted only after an exact-cache miss.
type ApproxCache struct {
	cache     *lru.Cache[string, approxEntry]
	threshold float64

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewApproxCache creates an approximate cache with the given capacity and
// acceptance threshold.
func NewApproxCache(size int, threshold float64) *ApproxCache {
	if size <= 0 {
		size = 512
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.92
	}
	cache, _ := lru.New[string, approxEntry](size)
	return &ApproxCache{cache: cache, threshold: threshold}
}

// Lookup scans for the closest cached vector. The scan reads a snapshot of
// the keys; entries evicted mid-scan simply stop matching, which a cache
// consumer must tolerate anyway.
func (c *ApproxCache) Lookup(vector Vector) (receipt.ModelSuggestion, bool) {
	var (
		bestKey   string
		bestScore float64
		found     bool
	)

	for _, key := range c.cache.Keys() {
		entry, ok := c.cache.Peek(key)
		if !ok {
			continue
		}
		score := Cosine(vector, entry.vector)
		if score >= c.threshold && (!found || score > bestScore) {
			bestKey = key
			bestScore = score
			found = true
		}
	}

	c.mu.Lock()
	if found {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !found {
		return receipt.ModelSuggestion{}, false
	}

	// Get instead of Peek so the winner counts as recently used.
	entry, ok := c.cache.Get(bestKey)
	if !ok {
		return receipt.ModelSuggestion{}, false
	}
	return entry.suggestion, true
}

// Add stores a suggestion under its embedding vector.
func (c *ApproxCache) Add(key string, vector Vector, suggestion receipt.ModelSuggestion) {
	c.cache.Add(key, approxEntry{vector: vector, suggestion: suggestion})
}

// Stats returns the hit and miss counters.
func (c *ApproxCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *ApproxCache) Len() int {
	return c.cache.Len()
}
