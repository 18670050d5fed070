package cohash

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// base carries the state shared by the fixed-capacity containers.
type base struct {
	t   *table
	d   dispatcher
	log hclog.Logger

	// mu is read-held for the whole of every bulk call and write-held by
	// Clear and Close, so the slot array outlives the workers using it.
	mu     sync.RWMutex
	closed bool
}

// acquire read-locks the container for a bulk call; release unlocks it.
func (b *base) acquire() error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (b *base) release() { b.mu.RUnlock() }

// Size returns the number of occupied slots.
func (b *base) Size() int { return b.t.size.sum() }

// Capacity returns the number of slots after rounding to whole windows.
func (b *base) Capacity() int { return len(b.t.slots) }

// Clear resets every slot to the sentinel pair. It waits for running bulk
// calls; views must not be used concurrently.
func (b *base) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if err := b.t.clear(ctx, b.d); err != nil {
		return err
	}
	b.log.Debug("cleared", "capacity", b.Capacity())
	return nil
}

// Close waits for running bulk calls and releases the slot array. Views
// obtained earlier must not be used afterwards.
func (b *base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.t.storage.release(); err != nil {
		return fmt.Errorf("release slots: %w", err)
	}
	b.log.Debug("released")
	return nil
}

// Stats returns a snapshot of the container.
func (b *base) Stats() Stats {
	size, capacity := b.Size(), b.Capacity()
	return Stats{
		Size:       size,
		Capacity:   capacity,
		LoadFactor: loadFactor(size, capacity),
		Submaps:    1,
		Probing:    b.scheme(),
	}
}

func (b *base) scheme() string {
	p := b.t.probe
	if p.double {
		return DoubleHashing{p.groupSize, p.windowSize}.String()
	}
	return LinearProbing{p.groupSize, p.windowSize}.String()
}

// Bulk entry points drive the cooperative protocol whenever the probing
// scheme has more than one lane.

func (t *table) bulkInsert(key, val uint64) insertResult {
	if t.probe.groupSize > 1 {
		return t.insertGroup(t.group, key, val)
	}
	return t.insert(key, val)
}

func (t *table) bulkFind(key uint64) int {
	if t.probe.groupSize > 1 {
		return t.findGroup(t.group, key)
	}
	return t.find(key)
}

func (t *table) bulkCount(key uint64) int {
	if t.probe.groupSize > 1 {
		return t.countGroup(t.group, key)
	}
	return t.count(key)
}

func (t *table) bulkForEachMatch(key uint64, yield func(i int) bool) {
	if t.probe.groupSize > 1 {
		t.forEachMatchGroup(t.group, key, yield)
		return
	}
	t.forEachMatch(key, yield)
}

func insertAll[K, V Word](ctx context.Context, b *base, keys []K, values []V, pred func(i int) bool) (int, error) {
	if err := b.acquire(); err != nil {
		return 0, err
	}
	defer b.release()
	if (values != nil || b.t.hasValues) && len(values) != len(keys) {
		return 0, fmt.Errorf("%d keys, %d values: %w", len(keys), len(values), ErrLengthMismatch)
	}
	t := b.t
	var full atomic.Bool
	n, err := countWhere(ctx, b.d, len(keys), func(i int) bool {
		if pred != nil && !pred(i) {
			return false
		}
		val := t.emptyVal
		if values != nil {
			val = uint64(values[i])
		}
		switch t.bulkInsert(uint64(keys[i]), val) {
		case insertSuccess:
			return true
		case insertExhausted:
			full.Store(true)
		}
		return false
	})
	if err != nil {
		return n, err
	}
	if full.Load() {
		return n, fmt.Errorf("insert %d keys: %w", len(keys), ErrTableFull)
	}
	return n, nil
}

func containsAll[K Word](ctx context.Context, b *base, keys []K) ([]bool, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()
	out := make([]bool, len(keys))
	err := b.d.run(ctx, len(keys), func(_, start, end int) {
		for i := start; i < end; i++ {
			out[i] = b.t.bulkFind(uint64(keys[i])) >= 0
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// retrieveAll copies every occupied slot into out through conv.
func retrieveAll[T any](ctx context.Context, b *base, out []T, conv func(key, val uint64) T) (int, error) {
	if err := b.acquire(); err != nil {
		return 0, err
	}
	defer b.release()
	t := b.t
	sink := &outputSink[T]{out: out}
	err := b.d.run(ctx, len(t.slots), func(_, start, end int) {
		buf := make([]T, 0, sinkBufferSize)
		t.forEachOccupied(start, end, func(i int) {
			buf = sink.push(buf, conv(loadWord(&t.slots[i].key), t.value(i)))
		})
		sink.flush(buf)
	})
	if err != nil {
		return 0, err
	}
	return sink.result()
}
