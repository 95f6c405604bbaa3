package images

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
)

// maxImageBytes caps a single download so one oversized file cannot
// exhaust memory.
const maxImageBytes = 20 << 20

// Stats counts fetcher activity. Network is the number of HTTP retrievals
// actually performed, which tests use to assert cache idempotence.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Network uint64
}

// Fetcher retrieves image thumbnails by URL. Results are cached in a
// bounded LRU keyed by URL, so repeated category renders do not refetch.
// Concurrent fetches of the same uncached URL are tolerated rather than
// serialized; the last writer wins.
type Fetcher struct {
	client *http.Client
	cache  *lru.Cache[string, image.Image]
	pool   *Pool
	obs    *observe.Observer

	hits    atomic.Uint64
	misses  atomic.Uint64
	network atomic.Uint64
}

// NewFetcher builds a Fetcher with a per-request timeout and a cache of
// cacheSize thumbnails.
func NewFetcher(pool *Pool, cacheSize int, timeout time.Duration, obs *observe.Observer) (*Fetcher, error) {
	cache, err := lru.New[string, image.Image](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		pool:   pool,
		obs:    obs,
	}, nil
}

// Get returns the thumbnail for url, or ok=false on any fetch or decode
// failure. Failures are logged, never propagated; a single bad URL must
// not fail the batch it belongs to.
func (f *Fetcher) Get(ctx context.Context, url string) (image.Image, bool) {
	if img, ok := f.cache.Get(url); ok {
		f.hits.Add(1)
		return img, true
	}

	img, err := f.retrieve(ctx, url)
	if err != nil {
		f.misses.Add(1)
		f.obs.Log().Warn().Str("url", url).Err(err).Msg("image fetch miss")
		return nil, false
	}

	f.cache.Add(url, img)
	return img, true
}

func (f *Fetcher) retrieve(ctx context.Context, url string) (image.Image, error) {
	f.network.Add(1)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	img, err := f.pool.Decode(ctx, raw)
	if err != nil {
		return nil, err
	}

	f.obs.Log().Info().
		Str("url", url).
		Int("elapsed_ms", int(time.Since(start).Milliseconds())).
		Msg("image fetched")
	return img, nil
}

// Stats returns a snapshot of the fetch counters.
func (f *Fetcher) Stats() Stats {
	return Stats{
		Hits:    f.hits.Load(),
		Misses:  f.misses.Load(),
		Network: f.network.Load(),
	}
}
