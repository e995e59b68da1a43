package docs

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveKey maps a source URL to its cache key: the lowercase hex SHA-256
// digest of the URL string. Deterministic and total — any input string
// produces a key, and the same URL always produces the same key across
// process restarts. Collisions across the practical document population
// (thousands of URLs) are negligible and not handled.
func DeriveKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
