package font

import (
	"image"
	"iter"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCacheTTL is the default time-to-live for cached glyph
// metrics and textures.
const DefaultCacheTTL = time.Minute

// CachedSource decorates a Source, memoizing metrics and rendered
// textures per glyph index with a time-to-live eviction policy. It
// trades memory for repeated-lookup latency.
//
// The two caches are independent and keyed by glyph index. Expiry is
// evaluated lazily against wall-clock time on access: expired entries
// are treated as absent and superseded in place, no background sweep
// runs (Sweep is available for explicit cleanup). Concurrent misses
// for one key coalesce into a single native fetch; late arrivals wait
// for and share the first caller's result. Failed lookups are never
// cached, so a transient rasterization failure is retried on the next
// access. CachedSource is safe for concurrent use.
type CachedSource struct {
	source *Source
	ttl    time.Duration
	now    func() time.Time

	mu           sync.Mutex
	metrics      map[GlyphID]*metricsEntry
	textures     map[GlyphID]*textureEntry
	metricsCalls map[GlyphID]*metricsCall
	textureCalls map[GlyphID]*textureCall

	stats CacheStats
}

type metricsEntry struct {
	glyph    *Glyph
	accessed time.Time
}

type textureEntry struct {
	img      *image.RGBA
	accessed time.Time
}

// metricsCall and textureCall are in-flight fetch cells: the first
// miss for a key installs one and performs the native call, later
// misses block on done and share the result.
type metricsCall struct {
	done  chan struct{}
	glyph *Glyph
}

type textureCall struct {
	done chan struct{}
	img  *image.RGBA
}

// CacheStats holds cache hit/miss counters.
type CacheStats struct {
	Hits   atomic.Uint64
	Misses atomic.Uint64
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithTTL sets the entry time-to-live. The default is DefaultCacheTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSource) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCachedSource wraps a Source with TTL caching.
func NewCachedSource(source *Source, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		source:       source,
		ttl:          DefaultCacheTTL,
		now:          time.Now,
		metrics:      make(map[GlyphID]*metricsEntry),
		textures:     make(map[GlyphID]*textureEntry),
		metricsCalls: make(map[GlyphID]*metricsCall),
		textureCalls: make(map[GlyphID]*textureCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the decorated store's instance name.
func (c *CachedSource) Name() string { return c.source.Name() }

// Baseline returns the decorated store's baseline.
func (c *CachedSource) Baseline() float64 { return c.source.Baseline() }

// HasGlyph delegates to the decorated store.
func (c *CachedSource) HasGlyph(r rune) bool { return c.source.HasGlyph(r) }

// Kern delegates to the decorated store. Kerning pairs are not cached.
func (c *CachedSource) Kern(left, right rune) int { return c.source.Kern(left, right) }

// Resources delegates to the decorated store.
func (c *CachedSource) Resources() iter.Seq[string] { return c.source.Resources() }

// Glyph returns the metrics record for a code point, serving live
// cache entries without touching the handle. A miss or an expired
// entry performs the real lookup and stores the result with a fresh
// stamp; hits refresh the entry's last-access time. Concurrent misses
// for one glyph perform the lookup once.
func (c *CachedSource) Glyph(r rune) *Glyph {
	gid := c.source.handle.GlyphIndex(r)
	if gid == 0 {
		return nil
	}

	now := c.now()
	c.mu.Lock()
	if e, ok := c.metrics[gid]; ok && now.Sub(e.accessed) <= c.ttl {
		e.accessed = now
		g := e.glyph
		c.mu.Unlock()
		c.stats.Hits.Add(1)
		return g
	}
	if call, ok := c.metricsCalls[gid]; ok {
		c.mu.Unlock()
		c.stats.Hits.Add(1)
		<-call.done
		return call.glyph
	}
	call := &metricsCall{done: make(chan struct{})}
	c.metricsCalls[gid] = call
	c.mu.Unlock()
	c.stats.Misses.Add(1)

	g, err := c.source.handle.Metrics(gid, c.source.raw)
	if err == nil && g != nil {
		g.Source = c.source
		call.glyph = g
	}

	c.mu.Lock()
	delete(c.metricsCalls, gid)
	if call.glyph != nil {
		c.metrics[gid] = &metricsEntry{glyph: call.glyph, accessed: now}
	}
	c.mu.Unlock()
	close(call.done)
	return call.glyph
}

// Texture resolves a resource name through the decorated store's
// namespace, serving the texture from cache when live.
func (c *CachedSource) Texture(resource string) *image.RGBA {
	r, ok := c.source.resolveResource(resource)
	if !ok {
		return nil
	}
	return c.TextureForRune(r)
}

// TextureForRune returns the SDF texture for one code point, cached
// with the same policy as Glyph.
func (c *CachedSource) TextureForRune(r rune) *image.RGBA {
	gid := c.source.handle.GlyphIndex(r)
	if gid == 0 {
		return nil
	}

	now := c.now()
	c.mu.Lock()
	if e, ok := c.textures[gid]; ok && now.Sub(e.accessed) <= c.ttl {
		e.accessed = now
		img := e.img
		c.mu.Unlock()
		c.stats.Hits.Add(1)
		return img
	}
	if call, ok := c.textureCalls[gid]; ok {
		c.mu.Unlock()
		c.stats.Hits.Add(1)
		<-call.done
		return call.img
	}
	call := &textureCall{done: make(chan struct{})}
	c.textureCalls[gid] = call
	c.mu.Unlock()
	c.stats.Misses.Add(1)

	img, err := c.source.handle.Rasterize(gid, c.source.raw)
	if err == nil && img != nil {
		call.img = img
	}

	c.mu.Lock()
	delete(c.textureCalls, gid)
	if call.img != nil {
		c.textures[gid] = &textureEntry{img: call.img, accessed: now}
	}
	c.mu.Unlock()
	close(call.done)
	return call.img
}

// Sweep removes every expired entry. Optional: lazy eviction alone
// keeps the caches correct, Sweep only bounds their memory.
func (c *CachedSource) Sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for gid, e := range c.metrics {
		if now.Sub(e.accessed) > c.ttl {
			delete(c.metrics, gid)
		}
	}
	for gid, e := range c.textures {
		if now.Sub(e.accessed) > c.ttl {
			delete(c.textures, gid)
		}
	}
}

// Len returns the number of resident entries across both caches,
// including entries that have expired but not yet been swept.
func (c *CachedSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.metrics) + len(c.textures)
}

// Stats returns the hit and miss counters.
func (c *CachedSource) Stats() (hits, misses uint64) {
	return c.stats.Hits.Load(), c.stats.Misses.Load()
}
