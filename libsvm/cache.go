package libsvm

// cacheEntryOverhead is the bookkeeping cost of one entry, in float32 slots
const cacheEntryOverhead = 8

// cacheEntry is one kernel column; len == 0 means uncached
type cacheEntry struct {
	prev, next *cacheEntry
	data       []float32
	len        int
}

type cacheStats struct {
	hits, misses, evictions int
}

// cache keeps kernel columns of l examples in a circular LRU list.
// size is the free budget counted in float32 slots.
type cache struct {
	l       int
	size    int
	head    []cacheEntry
	lruHead cacheEntry
	stats   cacheStats
}

func newCache(l int, sizeInBytes int64) *cache {
	c := &cache{
		l:    l,
		head: make([]cacheEntry, l),
	}

	size := sizeInBytes / 4
	size -= int64(l) * cacheEntryOverhead
	if size < int64(2*l) {
		// at least two full columns
		size = int64(2 * l)
	}
	c.size = int(size)

	c.lruHead.next = &c.lruHead
	c.lruHead.prev = &c.lruHead
	return c
}

func (c *cache) lruDelete(h *cacheEntry) {
	h.prev.next = h.next
	h.next.prev = h.prev
}

func (c *cache) lruInsert(h *cacheEntry) {
	// insert before the sentinel, at the most recently used end
	h.next = &c.lruHead
	h.prev = c.lruHead.prev
	h.prev.next = h
	h.next.prev = h
}

func (c *cache) evict(h *cacheEntry) {
	c.size += h.len
	h.data = nil
	h.len = 0
	c.stats.evictions++
}

// getData returns the column of index with room for length values and the
// position from which the caller still has to fill it.
func (c *cache) getData(index int, length int) ([]float32, int) {
	h := &c.head[index]
	if h.len > 0 {
		c.lruDelete(h)
	}

	more := length - h.len
	start := h.len
	if more > 0 {
		c.stats.misses++

		// free old space
		for c.size < more {
			old := c.lruHead.next
			c.lruDelete(old)
			c.evict(old)
		}

		if cap(h.data) >= length {
			h.data = h.data[:length]
		} else {
			data := make([]float32, length)
			copy(data, h.data[:h.len])
			h.data = data
		}
		c.size -= more
		h.len = length
	} else {
		c.stats.hits++
	}

	c.lruInsert(h)
	return h.data, start
}

// swapIndex exchanges the columns of i and j and the values at rows i and j
// inside every cached column. Columns too short to hold both are dropped.
func (c *cache) swapIndex(i int, j int) {
	if i == j {
		return
	}

	if c.head[i].len > 0 {
		c.lruDelete(&c.head[i])
	}
	if c.head[j].len > 0 {
		c.lruDelete(&c.head[j])
	}
	c.head[i].data, c.head[j].data = c.head[j].data, c.head[i].data
	c.head[i].len, c.head[j].len = c.head[j].len, c.head[i].len
	if c.head[i].len > 0 {
		c.lruInsert(&c.head[i])
	}
	if c.head[j].len > 0 {
		c.lruInsert(&c.head[j])
	}

	if i > j {
		i, j = j, i
	}

	for h := c.lruHead.next; h != &c.lruHead; {
		next := h.next
		if h.len > i {
			if h.len > j {
				h.data[i], h.data[j] = h.data[j], h.data[i]
			} else {
				// give up
				c.lruDelete(h)
				c.size += h.len
				h.data = nil
				h.len = 0
			}
		}
		h = next
	}
}
