package cohash

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmptyKey = ^uint64(0)
	testEmptyVal = ^uint64(0) - 1
)

func newTestTable(t *testing.T, scheme ProbingScheme, capacity int, multi bool) *table {
	t.Helper()
	c := newConfig[uint64](scheme, nil)
	tb, err := newTable(ctx(t), &c, capacity, testEmptyKey, testEmptyVal, true, multi)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tb.storage.release() })
	return tb
}

func TestTable_Initialized(t *testing.T) {
	tb := newTestTable(t, LinearProbing{2, 2}, 30, false)
	require.Len(t, tb.slots, 32)
	for i := range tb.slots {
		assert.Equal(t, testEmptyKey, tb.slots[i].key)
		assert.Equal(t, testEmptyVal, tb.slots[i].value)
	}
}

func TestClaim(t *testing.T) {
	tb := newTestTable(t, LinearProbing{1, 1}, 8, false)

	t.Run("empty slot", func(t *testing.T) {
		s := &slot{key: testEmptyKey, value: testEmptyVal}
		assert.Equal(t, insertSuccess, tb.claim(s, 1, 10))
		assert.Equal(t, slot{key: 1, value: 10}, *s)
	})

	t.Run("same key", func(t *testing.T) {
		s := &slot{key: 1, value: 10}
		assert.Equal(t, insertDuplicate, tb.claim(s, 1, 20))
		assert.Equal(t, uint64(10), s.value)
	})

	t.Run("other key before its value", func(t *testing.T) {
		// the owner of key 2 has not written its value yet; a losing
		// claim must hand the value field back
		s := &slot{key: 2, value: testEmptyVal}
		assert.Equal(t, insertContinue, tb.claim(s, 1, 10))
		assert.Equal(t, slot{key: 2, value: testEmptyVal}, *s)
	})

	t.Run("winner waits for loser", func(t *testing.T) {
		// a losing writer already put its value into the slot
		s := &slot{key: testEmptyKey, value: 99}
		go func() {
			time.Sleep(10 * time.Millisecond)
			atomic.StoreUint64(&s.value, testEmptyVal)
		}()
		assert.Equal(t, insertSuccess, tb.claim(s, 1, 10))
		assert.Equal(t, uint64(10), atomic.LoadUint64(&s.value))
	})
}

func TestClaim_Multimap(t *testing.T) {
	tb := newTestTable(t, LinearProbing{1, 1}, 8, true)
	s := &slot{key: 1, value: 10}
	assert.Equal(t, insertContinue, tb.claim(s, 1, 20))
}

func TestTable_InsertFindCount(t *testing.T) {
	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			tb := newTestTable(t, scheme, 256, true)
			g := tb.group
			for i := range uint64(5) {
				assert.Equal(t, insertSuccess, tb.insert(3, i))
				assert.Equal(t, insertSuccess, tb.insertGroup(g, 4, i))
			}
			assert.Equal(t, 10, tb.size.sum())
			for _, key := range []uint64{3, 4} {
				assert.Equal(t, 5, tb.count(key))
				assert.Equal(t, 5, tb.countGroup(g, key))
				assert.GreaterOrEqual(t, tb.find(key), 0)
				assert.Equal(t, tb.find(key), tb.findGroup(g, key))
			}
			assert.Equal(t, -1, tb.find(5))
			assert.Equal(t, -1, tb.findGroup(g, 5))
			assert.Zero(t, tb.count(5))
			assert.Equal(t, insertRejected, tb.insert(testEmptyKey, 0))
			assert.Equal(t, insertRejected, tb.insertGroup(g, testEmptyKey, 0))
		})
	}
}

func TestTable_Exhausted(t *testing.T) {
	for _, scheme := range []ProbingScheme{LinearProbing{1, 2}, DoubleHashing{4, 2}} {
		tb := newTestTable(t, scheme, 8, false)
		for k := range uint64(8) {
			require.Equal(t, insertSuccess, tb.bulkInsert(k, k))
		}
		assert.Equal(t, insertExhausted, tb.insert(100, 0))
		assert.Equal(t, insertExhausted, tb.insertGroup(tb.group, 100, 0))
		assert.Equal(t, insertDuplicate, tb.bulkInsert(3, 0))
		assert.Equal(t, -1, tb.find(100))
		assert.Equal(t, -1, tb.findGroup(tb.group, 100))
	}
}

func TestTable_ConcurrentSameKeyOneWinner(t *testing.T) {
	for _, scheme := range []ProbingScheme{LinearProbing{1, 1}, LinearProbing{8, 2}} {
		tb := newTestTable(t, scheme, 64, false)
		const workers = 32
		var wins atomic.Int32
		var start, wg sync.WaitGroup
		start.Add(1)
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				start.Wait()
				var r insertResult
				if w%2 == 0 {
					r = tb.insert(42, uint64(w))
				} else {
					r = tb.insertGroup(tb.group, 42, uint64(w))
				}
				if r == insertSuccess {
					wins.Add(1)
				} else {
					assert.Equal(t, insertDuplicate, r)
				}
			}()
		}
		start.Done()
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())

		i := tb.find(42)
		require.GreaterOrEqual(t, i, 0)
		assert.Less(t, tb.value(i), uint64(workers))
	}
}
