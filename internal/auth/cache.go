package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// tokenExpiryBuffer matches every Rust token manager's TOKEN_BUFFER: a
// cached token is only reused if it still has this much life left.
const tokenExpiryBuffer = 60 * time.Second

// cachedToken is one entry in a tokenCache.
type cachedToken struct {
	value     string
	expiresAt time.Time
}

// tokenCache is a minimal concurrent-safe map keyed by a credential
// fingerprint, standing in for the Rust managers' DashMap<String,
// CachedToken>.
type tokenCache struct {
	mu      sync.Mutex
	entries map[string]cachedToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{entries: make(map[string]cachedToken)}
}

// get returns the cached value for key if it is still valid beyond the
// expiry buffer.
func (c *tokenCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().Add(tokenExpiryBuffer).After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *tokenCache) set(key, value string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedToken{value: value, expiresAt: expiresAt}
}

// fingerprint hashes the given parts into a single cache key the way
// each Rust credentials struct's cache_key() does: a SHA-256 digest of
// the parts joined by "|", hex-encoded.
func fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte("|"))
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
