package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// minQueryLen is the shortest query forwarded to the nutrition database.
// Shorter input just produces an empty result set, mirroring the UI's
// "don't search until a couple of characters" behavior.
const minQueryLen = 2

/* ─── External API response shape ────────────────────────────────────── */

// offProduct is one product in the Open Food Facts-style search response.
// Nutrient fields that are absent simply stay zero — the decoder never fails
// on missing data.
type offProduct struct {
	ProductName string `json:"product_name"`
	Brands      string `json:"brands"`
	Nutriments  struct {
		EnergyKcal100G float64 `json:"energy-kcal_100g"`
		Proteins100G   float64 `json:"proteins_100g"`
		Carbs100G      float64 `json:"carbohydrates_100g"`
		Fat100G        float64 `json:"fat_100g"`
	} `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}

/* ─── Redis result cache ─────────────────────────────────────────────── */

// searchCache is an optional Redis-backed cache of search responses keyed by
// query. A nil cache disables caching entirely.
type searchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newSearchCache(addr string, ttl time.Duration) *searchCache {
	if addr == "" {
		return nil
	}
	return &searchCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *searchCache) get(ctx context.Context, query string) ([]foodSearchResult, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, "foodsearch:"+query).Result()
	if err != nil {
		return nil, false
	}
	var results []foodSearchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *searchCache) set(ctx context.Context, query string, results []foodSearchResult) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, "foodsearch:"+query, raw, c.ttl).Err(); err != nil {
		log.Printf("[search] cache set failed: %v", err)
	}
}

/* ─── Searcher ───────────────────────────────────────────────────────── */

// foodSearcher queries the external nutrition database. A monotonic request
// counter enforces last-write-wins: issuing a new search cancels any
// in-flight one, and a response that is no longer the latest generation is
// reported as superseded so the caller discards it instead of rendering
// stale results.
type foodSearcher struct {
	baseURL string
	client  *http.Client
	cache   *searchCache

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func newFoodSearcher(baseURL string, cache *searchCache) *foodSearcher {
	return &foodSearcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// begin registers a new request generation, cancelling the previous in-flight
// request, and returns the generation plus a context bound to it.
func (f *foodSearcher) begin(parent context.Context) (uint64, context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	return f.gen, ctx
}

// isLatest reports whether gen is still the most recently issued generation.
func (f *foodSearcher) isLatest(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen == f.gen
}

// Search looks up foods matching the free-text query. The second return value
// is false when the response was superseded by a newer search and must be
// discarded. Every failure mode — network, timeout, non-200, bad JSON —
// degrades to an empty result list; search is never fatal.
func (f *foodSearcher) Search(parent context.Context, query string) ([]foodSearchResult, bool) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return []foodSearchResult{}, true
	}

	gen, ctx := f.begin(parent)

	if cached, ok := f.cache.get(ctx, query); ok {
		return cached, f.isLatest(gen)
	}

	results, err := f.fetch(ctx, query)
	if !f.isLatest(gen) {
		return nil, false
	}
	if err != nil {
		log.Printf("[search] lookup %q failed: %v", query, err)
		return []foodSearchResult{}, true
	}

	f.cache.set(context.WithoutCancel(ctx), query, results)
	return results, true
}

// fetch performs the HTTP round trip and maps products to search results.
func (f *foodSearcher) fetch(ctx context.Context, query string) ([]foodSearchResult, error) {
	u := fmt.Sprintf("%s?search_terms=%s&json=1&page_size=20", f.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded offSearchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]foodSearchResult, 0, len(decoded.Products))
	for _, p := range decoded.Products {
		if p.ProductName == "" {
			continue
		}
		results = append(results, foodSearchResult{
			Name:            p.ProductName,
			Brand:           p.Brands,
			CaloriesPer100G: p.Nutriments.EnergyKcal100G,
			ProteinPer100G:  p.Nutriments.Proteins100G,
			CarbsPer100G:    p.Nutriments.Carbs100G,
			FatPer100G:      p.Nutriments.Fat100G,
		})
	}
	return results, nil
}
