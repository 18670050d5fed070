//go:build !unix

package cohash

// MmapAllocator is unavailable on this platform; every call fails with
// ErrMmapUnsupported.
type MmapAllocator struct{}

func (MmapAllocator) Allocate(int) ([]byte, error) { return nil, ErrMmapUnsupported }

func (MmapAllocator) Deallocate([]byte) error { return ErrMmapUnsupported }
