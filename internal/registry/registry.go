// Package registry keeps MCP resource registrations in sync with the
// document cache.
//
// Every cached document can be exposed as an MCP resource under a stable
// apple-docs:// URI. The registry owns the bookkeeping map from cache key to
// registration; the MCP server holds its own handler reference, so resource
// reads are late-bound — the handler re-resolves the cache at call time and
// reports "document not found" once the backing entry has been evicted.
// The protocol offers no deregistration primitive, so Unregister only drops
// local bookkeeping; the not-found read path is the real cleanup mechanism.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/adx-tools/appledocs-mcp/internal/docs"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentSource is the read-only cache view the registry depends on.
// *docs.Cache satisfies it.
type DocumentSource interface {
	GetByKey(key string) (docs.CachedDocument, bool)
	ListAll() []docs.CachedDocument
}

// Registrar is the external collaborator that exposes resources to MCP
// clients. Satisfied by NewServerRegistrar's adapter around
// *server.MCPServer; tests substitute fakes.
type Registrar interface {
	AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc) error
}

// Registration records one exposed resource, keyed by its document's
// cache key.
type Registration struct {
	Key           string `json:"key"`
	URI           string `json:"uri"`
	Name          string `json:"name"`
	DocType       string `json:"doc_type"`
	RegisteredOk  bool   `json:"registered_ok"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Result is returned by Register for each attempted document.
type Result struct {
	Key           string `json:"key"`
	URI           string `json:"uri"`
	Name          string `json:"name"`
	RegisteredOk  bool   `json:"registered_ok"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Stats holds aggregate registry statistics.
type Stats struct {
	TotalResources          int            `json:"total_resources"`
	SuccessfulRegistrations int            `json:"successful_registrations"`
	FailedRegistrations     int            `json:"failed_registrations"`
	ResourceTypesCount      map[string]int `json:"resource_types_count"`
}

// Registry tracks which cached documents are exposed as MCP resources.
// Safe for concurrent use.
type Registry struct {
	mu            sync.Mutex
	cache         DocumentSource
	registrar     Registrar
	registrations map[string]*Registration
	successful    int
	failed        int
	typeCounts    map[string]int
}

// New creates a registry over the given cache and registration collaborator.
func New(cache DocumentSource, registrar Registrar) *Registry {
	return &Registry{
		cache:         cache,
		registrar:     registrar,
		registrations: make(map[string]*Registration),
		typeCounts:    make(map[string]int),
	}
}

// Register exposes a cached document as an MCP resource. Registering an
// already-registered key is an idempotent no-op returning the existing
// registration. Collaborator failures are recorded in the result and the
// failure counters — never raised.
func (r *Registry) Register(doc docs.CachedDocument) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.registrations[doc.Key]; ok && existing.RegisteredOk {
		return Result{
			Key:          existing.Key,
			URI:          existing.URI,
			Name:         existing.Name,
			RegisteredOk: true,
		}
	}

	uri := ResourceURI(doc.URL, doc.Key)
	name := SanitizeName(doc.Title)

	resource := mcp.NewResource(
		uri,
		name,
		mcp.WithResourceDescription(fmt.Sprintf("Cached Apple documentation for %s", doc.URL)),
		mcp.WithMIMEType("text/markdown"),
	)

	err := r.registrar.AddResource(resource, r.readHandler(doc.Key))
	if err != nil {
		r.failed++
		r.registrations[doc.Key] = &Registration{
			Key:           doc.Key,
			URI:           uri,
			Name:          name,
			DocType:       doc.DocType,
			RegisteredOk:  false,
			FailureReason: err.Error(),
		}
		return Result{
			Key:           doc.Key,
			URI:           uri,
			Name:          name,
			RegisteredOk:  false,
			FailureReason: err.Error(),
		}
	}

	r.successful++
	r.typeCounts[doc.DocType]++
	r.registrations[doc.Key] = &Registration{
		Key:          doc.Key,
		URI:          uri,
		Name:         name,
		DocType:      doc.DocType,
		RegisteredOk: true,
	}
	return Result{Key: doc.Key, URI: uri, Name: name, RegisteredOk: true}
}

// RegisterAll registers every document, continuing past individual
// failures. One result per input, in order.
func (r *Registry) RegisterAll(documents []docs.CachedDocument) []Result {
	results := make([]Result, 0, len(documents))
	for _, doc := range documents {
		results = append(results, r.Register(doc))
	}
	return results
}

// Unregister drops the bookkeeping entry for key, reporting whether one
// existed. The MCP server keeps its own handler reference; after eviction
// that handler reports "document not found" on the next read.
func (r *Registry) Unregister(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unregisterLocked(key)
}

func (r *Registry) unregisterLocked(key string) bool {
	reg, ok := r.registrations[key]
	if !ok {
		return false
	}
	if reg.RegisteredOk {
		r.typeCounts[reg.DocType]--
		if r.typeCounts[reg.DocType] <= 0 {
			delete(r.typeCounts, reg.DocType)
		}
	}
	delete(r.registrations, key)
	return true
}

// CleanupStale unregisters every key whose backing document is no longer
// cached, returning the number removed.
func (r *Registry) CleanupStale() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for key := range r.registrations {
		if !r.hasDocument(key) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		r.unregisterLocked(key)
	}
	return len(stale)
}

// RefreshAll reconciles the registry with the cache: stale registrations
// are dropped, then every cached document is (re-)registered. Intended
// after bulk cache mutation.
func (r *Registry) RefreshAll() {
	r.CleanupStale()
	r.RegisterAll(r.cache.ListAll())
}

// URIFor returns the registered URI for key, or the synthetic fallback so
// callers always get some identifier even pre-registration.
func (r *Registry) URIFor(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.registrations[key]; ok {
		return reg.URI
	}
	return FallbackURI(key)
}

// IsRegistered reports whether key has a successful registration.
func (r *Registry) IsRegistered(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.registrations[key]
	return ok && reg.RegisteredOk
}

// Keys returns the keys of all bookkeeping entries.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.registrations))
	for key := range r.registrations {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns aggregate registration counters. The type counts map is a
// copy.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make(map[string]int, len(r.typeCounts))
	for docType, n := range r.typeCounts {
		types[docType] = n
	}
	return Stats{
		TotalResources:          len(r.registrations),
		SuccessfulRegistrations: r.successful,
		FailedRegistrations:     r.failed,
		ResourceTypesCount:      types,
	}
}

// readHandler builds the late-bound resource read handler for key. The
// document is fetched from the cache at call time, not captured — the MCP
// host may read long after registration, possibly after eviction.
func (r *Registry) readHandler(key string) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		doc, ok := r.cache.GetByKey(key)
		if !ok {
			return nil, fmt.Errorf("document not found: %s has been evicted from the cache", req.Params.URI)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     doc.Markdown,
			},
		}, nil
	}
}

// hasDocument checks cache membership without bumping the access count.
func (r *Registry) hasDocument(key string) bool {
	for _, doc := range r.cache.ListAll() {
		if doc.Key == key {
			return true
		}
	}
	return false
}

// serverRegistrar adapts *server.MCPServer to the Registrar interface.
// AddResource on the server never reports failure.
type serverRegistrar struct {
	srv *server.MCPServer
}

// NewServerRegistrar wraps an MCP server as a Registrar.
func NewServerRegistrar(srv *server.MCPServer) Registrar {
	return serverRegistrar{srv: srv}
}

func (s serverRegistrar) AddResource(resource mcp.Resource, handler server.ResourceHandlerFunc) error {
	s.srv.AddResource(resource, handler)
	return nil
}
