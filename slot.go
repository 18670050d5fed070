package cohash

import (
	"context"
	"fmt"
	"unsafe"
)

// slot is one key/value cell. Both fields are accessed atomically and
// independently; the key field alone decides ownership.
type slot struct {
	key   uint64
	value uint64
}

const slotSize = int(unsafe.Sizeof(slot{}))

// slotStorage is a fixed-capacity slot array carved from allocator memory.
type slotStorage struct {
	slots []slot
	mem   []byte
	alloc Allocator
}

func newSlotStorage(alloc Allocator, n int) (*slotStorage, error) {
	mem, err := alloc.Allocate(n * slotSize)
	if err != nil {
		return nil, fmt.Errorf("allocate %d slots: %w", n, err)
	}
	if len(mem) < n*slotSize || uintptr(unsafe.Pointer(unsafe.SliceData(mem)))%8 != 0 {
		_ = alloc.Deallocate(mem)
		return nil, fmt.Errorf("allocate %d slots: misaligned or short buffer", n)
	}
	return &slotStorage{
		slots: unsafe.Slice((*slot)(unsafe.Pointer(unsafe.SliceData(mem))), n),
		mem:   mem,
		alloc: alloc,
	}, nil
}

// fill writes the sentinel pair into every slot.
func (s *slotStorage) fill(ctx context.Context, d dispatcher, emptyKey, emptyVal uint64) error {
	return d.run(ctx, len(s.slots), func(_, start, end int) {
		for i := start; i < end; i++ {
			storeWord(&s.slots[i].key, emptyKey)
			storeWord(&s.slots[i].value, emptyVal)
		}
	})
}

func (s *slotStorage) release() error {
	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.slots, s.mem = nil, nil
	return s.alloc.Deallocate(mem)
}
