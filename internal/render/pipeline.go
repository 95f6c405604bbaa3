package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lukazavrr/hotwheels-bot/internal/images"
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

// ErrNoImages signals that no item image could be fetched. Callers fall
// back to a text-only listing; this is a degraded mode, not a failure.
var ErrNoImages = errors.New("no images available for category")

// FileResolver turns an opaque image reference into a fetchable URL.
// The chat transport owns file storage, so resolution is its job.
type FileResolver interface {
	ResolveFileURL(ctx context.Context, fileID string) (string, error)
}

// IndexEntry maps a displayed 1-based number to a product.
type IndexEntry struct {
	Display   int
	ProductID int64
}

// Unit is one renderable category screen: the collage bytes, the caption
// enumerating every item and the index backing the selection buttons.
type Unit struct {
	Image   []byte
	Caption string
	Index   []IndexEntry
}

// Pipeline orchestrates fetch, decode and composition for one category.
type Pipeline struct {
	fetcher  *images.Fetcher
	pool     *images.Pool
	resolver FileResolver
	events   *EventBus
	obs      *observe.Observer
	timeout  time.Duration
}

func NewPipeline(fetcher *images.Fetcher, pool *images.Pool, resolver FileResolver, events *EventBus, obs *observe.Observer, timeout time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		pool:     pool,
		resolver: resolver,
		events:   events,
		obs:      obs,
		timeout:  timeout,
	}
}

// RenderCategory builds the Unit for one category's item list. All image
// references are resolved and fetched concurrently; the pipeline waits for
// every URL to settle as hit-or-miss before composing. Items whose image
// failed stay in the caption and the index. The item order of products is
// preserved everywhere.
func (p *Pipeline) RenderCategory(ctx context.Context, category string, products []store.Product) (*Unit, error) {
	ctx, span := p.obs.StartSpan(ctx, "RenderCategory")
	defer span.End()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.events.PublishWithData(EventRenderStart, category, map[string]interface{}{"items": len(products)})
	start := time.Now()

	// Fan out one goroutine per item; each settles its own slot, so the
	// slice needs no locking. Wait is the fan-in barrier.
	thumbs := make([]image.Image, len(products))
	g, gctx := errgroup.WithContext(ctx)
	for i, product := range products {
		g.Go(func() error {
			url, err := p.resolver.ResolveFileURL(gctx, product.PhotoID)
			if err != nil {
				p.obs.Log().Warn().
					Str("photo_id", product.PhotoID).
					Err(err).
					Msg("failed to resolve image reference")
				p.events.PublishWithData(EventResolveMiss, category, map[string]interface{}{"product_id": product.ID})
				return nil
			}
			if img, ok := p.fetcher.Get(gctx, url); ok {
				thumbs[i] = img
			} else {
				p.events.PublishWithData(EventFetchMiss, category, map[string]interface{}{"product_id": product.ID})
			}
			return nil
		})
	}
	// Item-level failures never abort the batch; goroutines only return
	// nil, so this is purely the barrier.
	_ = g.Wait()

	available := make([]image.Image, 0, len(thumbs))
	for _, th := range thumbs {
		if th != nil {
			available = append(available, th)
		}
	}
	if len(available) == 0 {
		p.events.PublishSimple(EventFallback, category)
		return nil, ErrNoImages
	}

	collage, err := p.pool.Compose(ctx, available)
	if err != nil {
		p.events.PublishSimple(EventRenderFailed, category)
		return nil, fmt.Errorf("failed to compose collage: %w", err)
	}

	p.events.PublishWithData(EventComposeDone, category, map[string]interface{}{
		"images":     len(available),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	caption, index := BuildListing(category, products)
	return &Unit{Image: collage, Caption: caption, Index: index}, nil
}

// BuildListing produces the caption text and selection index for a
// category's items in catalog query order. It is shared by the collage
// caption and the text-only fallback screen.
func BuildListing(category string, products []store.Product) (string, []IndexEntry) {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s — available models:\n\n", category)

	index := make([]IndexEntry, 0, len(products))
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s — %d rub.\n", i+1, p.Name, p.Price)
		index = append(index, IndexEntry{Display: i + 1, ProductID: p.ID})
	}
	return b.String(), index
}
