package cohash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	g, err := NewGroup(8)
	require.NoError(t, err)
	assert.Equal(t, 8, g.Size())

	mask := g.Ballot(func(r int) bool { return r%3 == 1 })
	assert.Equal(t, uint32(0b10010010), mask)
	assert.Equal(t, 1, g.Elect(mask))
	assert.Equal(t, -1, g.Elect(0))

	assert.True(t, g.Any(func(r int) bool { return r == 7 }))
	assert.False(t, g.Any(func(r int) bool { return r == 8 }))

	lanes := []uint64{10, 11, 12, 13, 14, 15, 16, 17}
	assert.Equal(t, uint64(13), g.Shfl(lanes, 3))
}

func TestGroup_Trivial(t *testing.T) {
	var g Group
	assert.Equal(t, 1, g.Size())
	assert.Equal(t, uint32(1), g.Ballot(func(int) bool { return true }))
}

func TestGroup_FullWidth(t *testing.T) {
	g, err := NewGroup(MaxGroupSize)
	require.NoError(t, err)
	assert.Equal(t, ^uint32(0), g.Ballot(func(int) bool { return true }))
	assert.Equal(t, 31, g.Elect(1<<31))
}

func TestNewGroup_Invalid(t *testing.T) {
	for _, n := range []int{0, -1, 3, 12, 64} {
		_, err := NewGroup(n)
		assert.ErrorIs(t, err, ErrInvalidProbing, "size %d", n)
	}
}
