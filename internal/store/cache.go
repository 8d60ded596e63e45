package store

import "sync"

// datasetCache is a small thread-safe LRU of loaded datasets keyed by load
// parameters. With the default capacity of one it behaves as a write-once
// memo that is replaced whenever the load parameters change.
type datasetCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[LoadKey]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   LoadKey
	value *Dataset
	prev  *entry
	next  *entry
}

func newDatasetCache(maxEntries int) *datasetCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &datasetCache{
		maxEntries: maxEntries,
		entries:    make(map[LoadKey]*entry),
	}
}

func (c *datasetCache) get(key LoadKey) (*Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

// putIfAbsent stores value unless an entry already exists, returning the
// cached value in either case. Entries are never overwritten in place.
func (c *datasetCache) putIfAbsent(key LoadKey, value *Dataset) *Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.moveToFront(e)
		return e.value
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return value
}

func (c *datasetCache) invalidate(key LoadKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.remove(e)
	return true
}

func (c *datasetCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *datasetCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *datasetCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *datasetCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *datasetCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
