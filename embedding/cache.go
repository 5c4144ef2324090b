package embedding

import (
	"container/list"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Cache is a content-hash-keyed, bounded, in-memory LRU cache of embedding
// vectors, keyed on the exact text that was embedded plus the embedder's
// model name (so switching providers never serves a stale vector). It is
// optional: Gateway works fine with a nil *Cache.
type Cache struct {
	mu       sync.Mutex
	capacity int
	model    string
	ll       *list.List
	items    map[[32]byte]*list.Element
}

type cacheEntry struct {
	key [32]byte
	vec []float32
}

// NewCache constructs a Cache bound to a single embedder identity (model
// name), holding up to capacity entries. capacity <= 0 means unbounded.
func NewCache(model string, capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		model:    model,
		ll:       list.New(),
		items:    make(map[[32]byte]*list.Element),
	}
}

func (c *Cache) hashKey(text string) [32]byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Get returns the cached vector for text, if present. The returned slice
// is a copy; callers may mutate it freely.
func (c *Cache) Get(text string) ([]float32, bool) {
	key := c.hashKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	entry := el.Value.(*cacheEntry)
	out := make([]float32, len(entry.vec))
	copy(out, entry.vec)
	return out, true
}

// Put stores vec for text, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(text string, vec []float32) {
	key := c.hashKey(text)
	stored := make([]float32, len(vec))
	copy(stored, vec)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).vec = stored
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&cacheEntry{key: key, vec: stored})
	c.items[key] = el

	if c.capacity > 0 {
		for c.ll.Len() > c.capacity {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
