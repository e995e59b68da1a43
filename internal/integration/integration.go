// Package integration wraps document formatting with cache-first lookup,
// write-through population, size-limit enforcement, and resource-registry
// synchronization.
//
// A formatted page is expensive to produce (network fetch + parse), so the
// orchestrator consults the cache before invoking the formatter and stores
// the result afterwards, evicting by LRU policy when the cache is full.
// Every stored document is mirrored into the resource registry; every
// eviction unregisters the victim.
package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/adx-tools/appledocs-mcp/internal/docs"
	"github.com/adx-tools/appledocs-mcp/internal/registry"
)

// Config controls the orchestrator's caching behavior.
type Config struct {
	// Enabled is the master switch. When false every request goes straight
	// to the formatter and nothing is cached.
	Enabled bool
	// RegisterResources mirrors stored documents into the resource registry.
	RegisterResources bool
	// MaxCacheSize bounds the cache; 0 means unlimited.
	MaxCacheSize int
	// AutoEvict evicts one LRU entry when the cache is full. When false a
	// full cache causes new documents to be returned uncached.
	AutoEvict bool
}

// DefaultConfig returns the standard production configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RegisterResources: true,
		MaxCacheSize:      200,
		AutoEvict:         true,
	}
}

// FormatResult is the formatter collaborator's output: markdown content and
// an error flag. Flagged results are passed through uncached.
type FormatResult struct {
	Content string
	IsError bool
}

// FormatFunc produces formatted markdown for a URL. It may block on network
// I/O; the orchestrator passes its context through.
type FormatFunc func(ctx context.Context) (FormatResult, error)

// TitleFunc extracts a display title from markdown. Total, with a sensible
// fallback.
type TitleFunc func(markdown string) string

// ClassifyFunc classifies a document from its URL and content. Total, with
// a sensible fallback.
type ClassifyFunc func(url, content string) string

// Result is returned by CacheAwareFormat.
type Result struct {
	// Content is the formatted markdown, from cache or from the formatter.
	Content string
	// FromCache is true when the formatter was never invoked.
	FromCache bool
	// CacheKey is the derived key, set whenever the document is (or was)
	// cached.
	CacheKey string
	// ResourceURI identifies the document's MCP resource, when registered.
	ResourceURI string
	// Err carries advisory soft failures (capacity exceeded with eviction
	// disabled, registration failure). The content is still valid.
	Err string
}

// Options adjusts a single CacheAwareFormat call.
type Options struct {
	// SkipCache bypasses the lookup and the write-through for this call.
	SkipCache bool
}

// Integration orchestrates cache, registry, and formatter.
type Integration struct {
	// storeMu serializes the miss path so the capacity check, eviction,
	// store, and registration cannot interleave between concurrent misses.
	storeMu  sync.Mutex
	cache    *docs.Cache
	registry *registry.Registry
	cfg      Config
	title    TitleFunc
	classify ClassifyFunc
}

// New creates an orchestrator over the given cache and registry. The title
// and classify collaborators must be total functions.
func New(cache *docs.Cache, reg *registry.Registry, cfg Config, title TitleFunc, classify ClassifyFunc) *Integration {
	return &Integration{
		cache:    cache,
		registry: reg,
		cfg:      cfg,
		title:    title,
		classify: classify,
	}
}

// Cache exposes the underlying document cache (read-mostly use by tools).
func (i *Integration) Cache() *docs.Cache { return i.cache }

// Registry exposes the resource registry.
func (i *Integration) Registry() *registry.Registry { return i.registry }

// CacheAwareFormat returns the cached markdown for url when available,
// otherwise invokes format, stores the result (evicting by LRU when the
// cache is full and auto-eviction is enabled), and registers the document
// as a resource. Formatter errors propagate unchanged; capacity and
// registration problems are downgraded to the advisory Err field.
func (i *Integration) CacheAwareFormat(ctx context.Context, url string, format FormatFunc, opts Options) (Result, error) {
	useCache := i.cfg.Enabled && !opts.SkipCache

	if useCache {
		if doc, ok := i.cache.Get(url); ok {
			return Result{
				Content:     doc.Markdown,
				FromCache:   true,
				CacheKey:    doc.Key,
				ResourceURI: i.registry.URIFor(doc.Key),
			}, nil
		}
	}

	formatted, err := format(ctx)
	if err != nil {
		return Result{}, err
	}
	if formatted.IsError {
		// Formatter-flagged error: pass through, cache nothing.
		return Result{Content: formatted.Content, FromCache: false}, nil
	}
	if !useCache {
		return Result{Content: formatted.Content, FromCache: false}, nil
	}

	title := i.title(formatted.Content)
	docType := i.classify(url, formatted.Content)

	i.storeMu.Lock()
	defer i.storeMu.Unlock()

	var advisory []string
	if i.cfg.MaxCacheSize > 0 && i.cache.Size() >= i.cfg.MaxCacheSize {
		if !i.cfg.AutoEvict {
			return Result{
				Content:   formatted.Content,
				FromCache: false,
				Err: fmt.Sprintf("cache full (%d/%d) and auto-eviction disabled; result not cached",
					i.cache.Size(), i.cfg.MaxCacheSize),
			}, nil
		}
		for _, key := range i.cache.EvictLRU(1) {
			i.registry.Unregister(key)
		}
	}

	i.cache.Store(url, docs.Fields{
		Markdown: formatted.Content,
		Title:    title,
		DocType:  docType,
	})
	key := docs.DeriveKey(url)

	result := Result{
		Content:   formatted.Content,
		FromCache: false,
		CacheKey:  key,
	}

	if i.cfg.RegisterResources {
		doc := docs.CachedDocument{
			URL:      url,
			Key:      key,
			Markdown: formatted.Content,
			Title:    title,
			DocType:  docType,
		}
		regResult := i.registry.Register(doc)
		result.ResourceURI = regResult.URI
		if !regResult.RegisteredOk {
			advisory = append(advisory, "resource registration failed: "+regResult.FailureReason)
		}
	}

	result.Err = strings.Join(advisory, "; ")
	return result, nil
}

// ClearAll unregisters every tracked resource, then clears the cache.
// Unregistration runs first so any collaborator that still resolves
// documents during teardown does not read from an already-emptied cache.
func (i *Integration) ClearAll() {
	i.storeMu.Lock()
	defer i.storeMu.Unlock()

	for _, key := range i.registry.Keys() {
		i.registry.Unregister(key)
	}
	i.cache.Clear()
}
