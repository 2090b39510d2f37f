package assets

import (
	"sync"

	"github.com/aib/MPv2/pkg/formats"
)

// Cache holds parsed shape sources by file name. Parsed OBJ data is
// immutable once cached; meshes are rebuilt from it per scale.
type Cache struct {
	objs map[string]*formats.OBJ
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		objs: make(map[string]*formats.OBJ),
	}
}

// Get looks up a parsed shape and records a hit or miss.
func (c *Cache) Get(file string) (*formats.OBJ, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	obj, ok := c.objs[file]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return obj, ok
}

// Put stores a parsed shape.
func (c *Cache) Put(file string, obj *formats.OBJ) {
	c.mu.Lock()
	c.objs[file] = obj
	c.mu.Unlock()
}

// Len returns the number of cached shapes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objs)
}

// Clear drops all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.objs)
	c.hits, c.misses = 0, 0
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
