// Package docs implements the in-memory document cache for formatted
// Apple Developer documentation.
//
// Documents are keyed by a SHA-256 digest of their source URL. The cache
// tracks per-entry access counts and supports least-recently-used eviction:
// candidates are ordered by ascending access count, ties broken by oldest
// insertion time. All operations are safe for concurrent use.
package docs

import "time"

// Document type classification tags. DocTypeDefault is the fallback when
// nothing more specific can be inferred from the URL or content.
const (
	DocTypeAPI      = "api"
	DocTypeGuide    = "guide"
	DocTypeTutorial = "tutorial"
	DocTypeSample   = "sample"
	DocTypeDefault  = "documentation"
)

// CachedDocument is a formatted documentation page held in the cache.
type CachedDocument struct {
	// URL is the source URL, the logical identity before hashing.
	URL string `json:"url"`
	// Key is the cache key, always equal to DeriveKey(URL).
	Key string `json:"key"`
	// Markdown is the formatted content body.
	Markdown string `json:"markdown"`
	// Title is the display title extracted by the formatter. Display only.
	Title string `json:"title"`
	// DocType is a coarse classification tag used for statistics only.
	DocType string `json:"doc_type"`
	// CreatedAt is set on every Store — re-storing a URL refreshes it.
	CreatedAt time.Time `json:"created_at"`
	// AccessCount increments on every successful Get/GetByKey and resets
	// to zero on Store.
	AccessCount int `json:"access_count"`
}

// Stats holds aggregate cache statistics computed on demand.
type Stats struct {
	TotalDocuments       int     `json:"total_documents"`
	TotalAccessCount     int     `json:"total_access_count"`
	AverageAccessCount   float64 `json:"average_access_count"`
	EstimatedMemoryUsage int     `json:"estimated_memory_usage"`
}
