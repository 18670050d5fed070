package cohash

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocator(t *testing.T) {
	var a HeapAllocator
	mem, err := a.Allocate(100)
	require.NoError(t, err)
	assert.Len(t, mem, 100)
	assert.Zero(t, uintptr(unsafe.Pointer(&mem[0]))%8)
	assert.NoError(t, a.Deallocate(mem))

	_, err = a.Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestMmapAllocator(t *testing.T) {
	var a MmapAllocator
	mem, err := a.Allocate(1 << 16)
	if errors.Is(err, ErrMmapUnsupported) {
		t.Skip("no mmap on", runtime.GOOS)
	}
	require.NoError(t, err)
	assert.Len(t, mem, 1<<16)
	mem[0], mem[len(mem)-1] = 1, 2
	assert.NoError(t, a.Deallocate(mem))
}

func TestStaticMap_MmapBacked(t *testing.T) {
	m, err := NewStaticMap[uint32, uint32](1000, ^uint32(0), 0, WithAllocator[uint32](MmapAllocator{}))
	if errors.Is(err, ErrMmapUnsupported) {
		t.Skip("no mmap on", runtime.GOOS)
	}
	require.NoError(t, err)

	keys, values := sequence[uint32](600), sequence[uint32](600)
	n, err := m.Insert(ctx(t), keys, values)
	require.NoError(t, err)
	assert.Equal(t, 600, n)

	got, err := m.Find(ctx(t), keys)
	require.NoError(t, err)
	assert.Equal(t, values, got)
	require.NoError(t, m.Close())
}

type failingAllocator struct{}

func (failingAllocator) Allocate(int) ([]byte, error) { return nil, assert.AnError }
func (failingAllocator) Deallocate([]byte) error      { return nil }

func TestAllocationFailure(t *testing.T) {
	_, err := NewStaticSet[int](16, -1, WithAllocator[int](failingAllocator{}))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestStaticMap_CloseWaitsForBulkFind(t *testing.T) {
	m, err := NewStaticMap[int, int](1<<20, -1, -1, WithAllocator[int](MmapAllocator{}))
	if errors.Is(err, ErrMmapUnsupported) {
		t.Skip("no mmap on", runtime.GOOS)
	}
	require.NoError(t, err)

	keys := sequence[int](100_000)
	_, err = m.Insert(ctx(t), keys, keys)
	require.NoError(t, err)

	lookups := sequence[int](1_500_000)
	type result struct {
		values []int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		values, err := m.Find(context.Background(), lookups)
		done <- result{values, err}
	}()

	time.Sleep(time.Millisecond)
	require.NoError(t, m.Close())

	r := <-done
	if r.err != nil {
		// Close won the lock before the lookup started
		assert.ErrorIs(t, r.err, ErrClosed)
	} else {
		require.Len(t, r.values, len(lookups))
		assert.Equal(t, 99_999, r.values[99_999])
		assert.Equal(t, -1, r.values[100_000])
	}

	_, err = m.Find(ctx(t), keys[:1])
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Clear(ctx(t)), ErrClosed)
}
