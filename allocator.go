package cohash

import (
	"fmt"
	"unsafe"
)

// Allocator provides the memory backing a slot array. Memory returned by
// Allocate must be 8-byte aligned and is released with Deallocate once the
// owning container no longer references it.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Deallocate(mem []byte) error
}

// HeapAllocator allocates slot arrays on the Go heap.
type HeapAllocator struct{}

// Allocate returns size bytes of zeroed, word-aligned heap memory.
func (HeapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap allocate %d bytes: %w", size, ErrInvalidCapacity)
	}
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size), nil
}

// Deallocate leaves the memory to the garbage collector.
func (HeapAllocator) Deallocate([]byte) error { return nil }
