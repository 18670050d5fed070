//go:build unix

package cohash

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapAllocator backs slot arrays with anonymous shared mappings outside
// of the Go heap. Large tables then never add to GC pressure and can be
// handed to forked helpers.
type MmapAllocator struct{}

// Allocate maps size bytes of zeroed, page-aligned memory.
func (MmapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, ErrInvalidCapacity)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return mem, nil
}

// Deallocate unmaps memory obtained from Allocate.
func (MmapAllocator) Deallocate(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
