// File path: internal/generator/cache.go
package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 15 * time.Minute
)

// resultCache memoizes finished generations keyed by provider and prompt.
// Entries expire so a restarted or upgraded provider is retried eventually.
type resultCache struct {
	lru *expirable.LRU[string, Output]
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &resultCache{lru: expirable.NewLRU[string, Output](size, nil, ttl)}
}

func (c *resultCache) Get(key string) (Output, bool) {
	if c == nil || c.lru == nil {
		return Output{}, false
	}
	return c.lru.Get(key)
}

func (c *resultCache) Set(key string, out Output) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, out)
}

func (c *resultCache) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}

func (c *resultCache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey hashes provider and prompt together so the same text refined by
// different backends never shares an entry.
func cacheKey(provider, promptText string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(promptText))
	return hex.EncodeToString(h.Sum(nil))
}
