package cohash

import (
	"fmt"
	"math/bits"
)

// MaxGroupSize is the largest number of lanes in a Group.
const MaxGroupSize = 32

// Group is a fixed-size team of lanes that works on one key together. The
// lanes are emulated: the calling goroutine evaluates every lane in rank
// order, so a vote and the broadcast that follows it always observe the
// same lane state. The zero Group is the trivial group of one lane.
type Group struct {
	size int
}

// NewGroup returns a group of size lanes.
func NewGroup(size int) (Group, error) {
	if size < 1 || size > MaxGroupSize || size&(size-1) != 0 {
		return Group{}, fmt.Errorf("group size %d: %w", size, ErrInvalidProbing)
	}
	return Group{size: size}, nil
}

// Size returns the number of lanes.
func (g Group) Size() int {
	if g.size == 0 {
		return 1
	}
	return g.size
}

// Ballot evaluates pred for every lane and returns the vote mask; bit r is
// set when lane r voted true.
func (g Group) Ballot(pred func(rank int) bool) uint32 {
	var mask uint32
	for r := range g.Size() {
		if pred(r) {
			mask |= 1 << r
		}
	}
	return mask
}

// Any reports whether some lane voted true.
func (g Group) Any(pred func(rank int) bool) bool {
	for r := range g.Size() {
		if pred(r) {
			return true
		}
	}
	return false
}

// Shfl broadcasts the value held by lane src to every lane.
func (g Group) Shfl(lanes []uint64, src int) uint64 {
	return lanes[src]
}

// Elect returns the lowest ranked lane of mask, or -1 for an empty mask.
func (g Group) Elect(mask uint32) int {
	if mask == 0 {
		return -1
	}
	return bits.TrailingZeros32(mask)
}
