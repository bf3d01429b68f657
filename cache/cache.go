// Package cache holds query results keyed by the query that produced them.
//
// Queries are idempotent, so a cached result stays valid for the lifetime of
// the index it came from. Entries are charged against a byte budget and,
// optionally, a resource.Controller shared with the rest of the process.
package cache

import (
	"sync"
	"sync/atomic"
	"unsafe"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hupe1980/kdnn/index"
	"github.com/hupe1980/kdnn/resource"
)

// Kind separates key spaces.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindKNearest
	KindRadius
)

// Key identifies a query. Only the parameter matching Kind is meaningful;
// leave the other at its zero value.
type Key struct {
	Kind   Kind
	Query  index.Coord
	K      int
	Radius float64
	// Labels is a canonical rendering of the label filter, empty for none.
	Labels string
}

var (
	keyBytes      = int64(unsafe.Sizeof(Key{}))
	neighborBytes = int64(unsafe.Sizeof(index.Neighbor{}))
)

// EntryBytes returns the bytes charged for caching v under k.
func EntryBytes(k Key, v []index.Neighbor) int64 {
	return keyBytes + int64(len(k.Labels)) + int64(len(v))*neighborBytes
}

// ResultCache is an LRU of query results bounded by entry count and bytes.
// It is safe for concurrent use.
type ResultCache struct {
	mu       sync.Mutex // serializes Set
	lru      *lru.Cache[Key, []index.Neighbor]
	maxBytes int64
	size     atomic.Int64
	rc       *resource.Controller
}

// NewResultCache creates a cache holding at most entries results and maxBytes
// bytes. maxBytes <= 0 disables the byte bound. rc may be nil.
func NewResultCache(entries int, maxBytes int64, rc *resource.Controller) (*ResultCache, error) {
	c := &ResultCache{
		maxBytes: maxBytes,
		rc:       rc,
	}

	l, err := lru.NewWithEvict(entries, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = l

	return c, nil
}

// onEvict runs outside the lru lock but possibly while mu is held.
func (c *ResultCache) onEvict(k Key, v []index.Neighbor) {
	n := EntryBytes(k, v)
	c.size.Add(-n)
	c.rc.ReleaseMemory(n)
}

// Get returns the cached result for k.
// The returned slice is shared and must not be modified.
func (c *ResultCache) Get(k Key) ([]index.Neighbor, bool) {
	return c.lru.Get(k)
}

// Set caches v under k. It is a no-op when k is already present, when v
// alone exceeds the byte bound, or when the controller refuses the memory.
func (c *ResultCache) Set(k Key, v []index.Neighbor) {
	n := EntryBytes(k, v)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lru.Contains(k) {
		return
	}
	if c.maxBytes > 0 {
		if n > c.maxBytes {
			return
		}
		for c.size.Load()+n > c.maxBytes && c.lru.Len() > 0 {
			c.lru.RemoveOldest()
		}
	}
	if !c.rc.TryAcquireMemory(n) {
		return
	}

	c.size.Add(n)
	c.lru.Add(k, v)
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	return c.lru.Len()
}

// Size returns the bytes currently charged.
func (c *ResultCache) Size() int64 {
	return c.size.Load()
}

// Purge drops every entry and releases its memory.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
