package registry

import (
	"net/url"
	"strings"
)

// Scheme is the URI scheme prefix for the apple-docs resource namespace.
const Scheme = "apple-docs://"

// structuralSegments are path segments carrying no identity — boilerplate
// from the developer.apple.com URL layout that is stripped when deriving
// resource URIs.
var structuralSegments = map[string]bool{
	"documentation": true,
}

// ResourceURI derives the externally stable URI for a document. The source
// URL's path is split into non-empty segments, structural segments are
// dropped, and the rest are joined with "/" under the apple-docs scheme:
//
//	https://developer.apple.com/documentation/mapkit/mapview
//	  -> apple-docs://mapkit/mapview
//
// An empty remainder yields "unknown"; an unparseable URL falls back to a
// synthetic URI derived from the cache key. The algorithm must stay stable —
// previously handed-out URIs are resolved against it.
func ResourceURI(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FallbackURI(key)
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" || structuralSegments[seg] {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return Scheme + "unknown"
	}
	return Scheme + strings.Join(segments, "/")
}

// FallbackURI builds the synthetic URI for a key, used when the source URL
// cannot be parsed or the document was never registered.
func FallbackURI(key string) string {
	prefix := key
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return Scheme + "doc-" + prefix
}

// SanitizeName converts a display title into a filesystem- and URI-safe
// resource name: lowercased, runs of non-alphanumerics collapsed to single
// hyphens. Empty input sanitizes to "untitled".
func SanitizeName(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "untitled"
	}
	return name
}
