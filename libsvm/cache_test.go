package libsvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillColumn(data []float32, start int, index int) {
	for j := start; j < len(data); j++ {
		data[j] = float32(index*100 + j)
	}
}

func TestCacheMinimumSize(t *testing.T) {
	c := newCache(10, 0)
	assert.Equal(t, 20, c.size)

	c = newCache(10, 1<<20)
	assert.Equal(t, (1<<20)/4-10*cacheEntryOverhead, c.size)
}

func TestCacheHitAndMiss(t *testing.T) {
	c := newCache(4, 0)

	data, start := c.getData(1, 4)
	assert.Equal(t, 0, start)
	require.Len(t, data, 4)
	fillColumn(data, start, 1)

	data, start = c.getData(1, 4)
	assert.Equal(t, 4, start)
	assert.Equal(t, float32(102), data[2])

	// growing a column only asks for the missing tail
	c2 := newCache(4, 0)
	data, start = c2.getData(0, 2)
	fillColumn(data, start, 0)
	data, start = c2.getData(0, 4)
	assert.Equal(t, 2, start)
	assert.Equal(t, float32(1), data[1])

	assert.Equal(t, cacheStats{hits: 1, misses: 1}, c.stats)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	// room for exactly two full columns
	c := newCache(4, 0)

	for _, i := range []int{0, 1} {
		data, start := c.getData(i, 4)
		fillColumn(data, start, i)
	}
	// touch 0 so that 1 becomes the oldest
	c.getData(0, 4)

	data, start := c.getData(2, 4)
	fillColumn(data, start, 2)

	assert.Equal(t, 4, c.head[0].len)
	assert.Equal(t, 0, c.head[1].len)
	assert.Equal(t, 4, c.head[2].len)
	assert.Equal(t, 1, c.stats.evictions)
	assert.Equal(t, 0, c.size)
}

func TestCacheSwapIndex(t *testing.T) {
	c := newCache(4, 1<<20)

	for _, i := range []int{0, 1, 2} {
		data, start := c.getData(i, 4)
		fillColumn(data, start, i)
	}
	short, start := c.getData(3, 2)
	fillColumn(short, start, 3)

	c.swapIndex(1, 2)

	// columns exchanged
	assert.Equal(t, float32(200), c.head[1].data[0])
	assert.Equal(t, float32(100), c.head[2].data[0])
	// rows exchanged inside every long enough column
	assert.Equal(t, float32(2), c.head[0].data[1])
	assert.Equal(t, float32(1), c.head[0].data[2])
	// a column holding row 1 but not row 2 is dropped
	assert.Equal(t, 0, c.head[3].len)
	assert.Nil(t, c.head[3].data)
}

func TestCacheSwapUncached(t *testing.T) {
	c := newCache(3, 1<<20)
	data, start := c.getData(0, 3)
	fillColumn(data, start, 0)

	c.swapIndex(0, 2)

	assert.Equal(t, 0, c.head[0].len)
	assert.Equal(t, 3, c.head[2].len)
	assert.Equal(t, []float32{2, 1, 0}, c.head[2].data)
}
