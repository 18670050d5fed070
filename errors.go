package cohash

import "errors"

var (
	// ErrInvalidCapacity is returned when a container is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("cohash: invalid capacity")
	// ErrInvalidProbing is returned for a group size that is not a power of
	// two in [1, MaxGroupSize] or a window size other than 1 or 2.
	ErrInvalidProbing = errors.New("cohash: invalid probing scheme")
	// ErrInvalidLoadFactor is returned for a load factor outside (0, 1].
	ErrInvalidLoadFactor = errors.New("cohash: invalid load factor")
	// ErrLengthMismatch is returned when keys and values differ in length.
	ErrLengthMismatch = errors.New("cohash: keys and values length mismatch")
	// ErrOutputTooSmall is returned when a caller supplied output slice
	// cannot hold every result.
	ErrOutputTooSmall = errors.New("cohash: output capacity exceeded")
	// ErrTableFull is returned when a probe sequence was exhausted without
	// finding an empty slot.
	ErrTableFull = errors.New("cohash: table full")
	// ErrMmapUnsupported is returned by MmapAllocator on platforms without mmap.
	ErrMmapUnsupported = errors.New("cohash: mmap not supported on this platform")
	// ErrClosed is returned by bulk operations on a released container.
	ErrClosed = errors.New("cohash: container closed")
)
