// Package texture loads and caches token and background images. Loads run
// asynchronously against a timeout; results are applied on the game loop via
// Flush so sprite mutation never happens off the UI tick. Failures fall back
// to a built-in default image rather than erroring.
package texture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single texture load, decode included.
const DefaultTimeout = 10 * time.Second

// Loader fetches and decodes one image. The context carries the timeout.
type Loader func(ctx context.Context, url string) (image.Image, error)

// Rewrite transforms a URL before it is fetched and used as the cache key,
// e.g. host/LAN rewriting. Logically-identical images that differ only in
// host collapse to one cache entry.
type Rewrite func(url string) string

type entry struct {
	img     image.Image
	ready   bool
	waiters []func(image.Image)
}

type completion struct {
	fn  func(image.Image)
	img image.Image
}

// Cache is a process-local texture registry scoped to one renderer instance.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	done     []completion
	loader   Loader
	rewrite  Rewrite
	timeout  time.Duration
	fallback image.Image
}

// Option configures a Cache.
type Option func(*Cache)

// WithLoader replaces the default HTTP/file loader.
func WithLoader(l Loader) Option { return func(c *Cache) { c.loader = l } }

// WithRewrite installs a URL rewrite hook.
func WithRewrite(r Rewrite) Option { return func(c *Cache) { c.rewrite = r } }

// WithTimeout overrides the per-load timeout.
func WithTimeout(d time.Duration) Option { return func(c *Cache) { c.timeout = d } }

// NewCache creates a texture cache with the default loader and timeout.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		loader:  defaultLoader,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get resolves the texture for url and hands it to fn. Cached textures are
// delivered synchronously; otherwise a load starts (or an in-flight load is
// joined) and fn runs on a later Flush. On failure or timeout fn receives
// the default image. fn must guard against its owner having been removed.
func (c *Cache) Get(url string, fn func(image.Image)) {
	if url == "" {
		fn(c.Fallback())
		return
	}
	key := url
	if c.rewrite != nil {
		key = c.rewrite(url)
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.ready {
		img := e.img
		c.mu.Unlock()
		fn(img)
		return
	}
	if ok {
		// Load already in flight; join it.
		e.waiters = append(e.waiters, fn)
		c.mu.Unlock()
		return
	}
	e = &entry{waiters: []func(image.Image){fn}}
	c.entries[key] = e
	c.mu.Unlock()

	go c.load(key, e)
}

func (c *Cache) load(key string, e *entry) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	img, err := c.loader(ctx, key)
	if err != nil {
		log.Printf("texture: load %q failed, using default: %v", key, err)
		img = c.Fallback()
	}

	c.mu.Lock()
	e.img = img
	e.ready = true
	for _, fn := range e.waiters {
		c.done = append(c.done, completion{fn: fn, img: img})
	}
	e.waiters = nil
	c.mu.Unlock()
}

// Flush applies completed load callbacks. Call once per Update tick.
func (c *Cache) Flush() {
	c.mu.Lock()
	done := c.done
	c.done = nil
	c.mu.Unlock()

	for _, d := range done {
		d.fn(d.img)
	}
}

// Loaded reports whether the (rewritten) url has finished loading.
func (c *Cache) Loaded(url string) bool {
	key := url
	if c.rewrite != nil {
		key = c.rewrite(url)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.ready
}

// Fallback returns the built-in default token image.
func (c *Cache) Fallback() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fallback == nil {
		c.fallback = defaultTokenImage()
	}
	return c.fallback
}

// defaultLoader fetches http(s) URLs over the network and anything else from
// the local filesystem, then decodes with the registered image formats.
func defaultLoader(ctx context.Context, url string) (image.Image, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http status %s", resp.Status)
		}
		img, _, err := image.Decode(resp.Body)
		return img, err
	}

	f, err := os.Open(url)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(f)
	return img, err
}
