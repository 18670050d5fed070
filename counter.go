package cohash

import (
	"sync/atomic"
	"unsafe"
)

// counterStripe represents a striped counter to reduce contention.
// Each stripe is padded to a cache line so that workers hitting
// different stripes never share a line.
type counterStripe struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		c atomic.Int64
	}{})%CacheLineSize) % CacheLineSize]byte
	c atomic.Int64
}

// sizeCounter tracks the number of occupied slots of a table.
type sizeCounter struct {
	stripes []counterStripe
	mask    uint64
}

func newSizeCounter(cpus int) *sizeCounter {
	n := nextPowOf2(max(cpus, 1))
	return &sizeCounter{
		stripes: make([]counterStripe, n),
		mask:    uint64(n - 1),
	}
}

func (c *sizeCounter) add(hint uint64, delta int64) {
	c.stripes[hint&c.mask].c.Add(delta)
}

func (c *sizeCounter) sum() int {
	var sum int64
	for i := range c.stripes {
		sum += c.stripes[i].c.Load()
	}
	return int(sum)
}

func (c *sizeCounter) reset() {
	for i := range c.stripes {
		c.stripes[i].c.Store(0)
	}
}
