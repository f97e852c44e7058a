package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"chatbot/internal/domain"
)

// ReplyCache is a bounded LRU of replies with a TTL. Entries written before the
// last Invalidate are treated as misses.
type ReplyCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	order      []string
	maxSize    int
	ttl        time.Duration
	generation uint64
}

type cacheEntry struct {
	reply      domain.Reply
	timestamp  time.Time
	generation uint64
}

// NewReplyCache creates a cache holding up to maxSize replies for ttl each.
// Non-positive values fall back to 256 entries and ten minutes.
func NewReplyCache(maxSize int, ttl time.Duration) *ReplyCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReplyCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached reply for query. Expired entries are dropped and reported as misses.
func (c *ReplyCache) Get(query string) (domain.Reply, bool) {
	c.mu.RLock()
	key := cacheKey(query)
	entry, exists := c.entries[key]
	currentGen := c.generation
	c.mu.RUnlock()

	if !exists {
		return domain.Reply{}, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.generation != currentGen {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == entry {
			delete(c.entries, key)
			c.removeFromOrder(key)
		}
		c.mu.Unlock()
		return domain.Reply{}, false
	}

	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.moveToEnd(key)
	}
	c.mu.Unlock()

	return entry.reply, true
}

// Put stores reply unless the cache was invalidated after generation was read.
func (c *ReplyCache) Put(query string, generation uint64, reply domain.Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return
	}

	key := cacheKey(query)
	entry := &cacheEntry{reply: reply, timestamp: time.Now(), generation: generation}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Generation returns the current invalidation generation.
func (c *ReplyCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Invalidate drops every entry and bumps the generation so in-flight Puts are discarded.
func (c *ReplyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.generation++
}

// Size returns the number of cached replies.
func (c *ReplyCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ReplyCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ReplyCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *ReplyCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
