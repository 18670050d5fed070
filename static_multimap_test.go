package cohash

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticMultimap_RepeatedKey(t *testing.T) {
	m, err := NewStaticMultimap[int64, int64](64, -1, -1)
	require.NoError(t, err)
	defer m.Close()

	keys := []int64{5, 1, 5, 2, 5, 3}
	values := []int64{100, 10, 200, 20, 300, 30}
	n, err := m.Insert(ctx(t), keys, values)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, m.Size())

	count, err := m.Count(ctx(t), []int64{5})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	pairs, err := m.FindAll(ctx(t), []int64{5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair[int64, int64]{{5, 100}, {5, 200}, {5, 300}}, pairs)

	count, err = m.Count(ctx(t), []int64{42})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStaticMultimap_CountMatchesFindAll(t *testing.T) {
	for _, scheme := range schemes {
		t.Run(scheme.String(), func(t *testing.T) {
			m, err := NewStaticMultimap[int, int](3000, -1, -1, WithProbing[int](scheme))
			require.NoError(t, err)

			// key k appears k%4 times
			var keys, values []int
			for k := range 500 {
				for r := range k % 4 {
					keys = append(keys, k)
					values = append(values, k*10+r)
				}
			}
			_, err = m.Insert(ctx(t), keys, values)
			require.NoError(t, err)

			v := m.View()
			g := v.Group()
			for k := range 600 {
				want := 0
				if k < 500 {
					want = k % 4
				}
				assert.Equal(t, want, v.Count(k), "key %d", k)
				assert.Equal(t, want, v.CountGroup(g, k), "key %d", k)

				var got, gotGroup []int
				v.ForEach(k, func(val int) bool { got = append(got, val); return true })
				v.ForEachGroup(g, k, func(val int) bool { gotGroup = append(gotGroup, val); return true })
				assert.Len(t, got, want)
				assert.ElementsMatch(t, got, gotGroup)

				var cursorVals []int
				for c := v.FindGroup(g, k); c.Valid(); c.Next() {
					assert.Equal(t, k, c.Key())
					cursorVals = append(cursorVals, c.Value())
				}
				assert.ElementsMatch(t, got, cursorVals)
			}

			probe := sequence[int](600)
			total, err := m.Count(ctx(t), probe)
			require.NoError(t, err)
			pairs, err := m.FindAll(ctx(t), probe)
			require.NoError(t, err)
			assert.Equal(t, total, len(pairs))
			assert.Equal(t, len(keys), total)
		})
	}
}

func TestStaticMultimap_Outer(t *testing.T) {
	m, err := NewStaticMultimap[int, int](64, -1, -1)
	require.NoError(t, err)
	_, err = m.Insert(ctx(t), []int{1, 1, 2}, []int{10, 11, 20})
	require.NoError(t, err)

	n, err := m.CountOuter(ctx(t), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	pairs, err := m.FindAllOuter(ctx(t), []int{1, 2, 3})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair[int, int]{{1, 10}, {1, 11}, {2, 20}, {3, -1}}, pairs)
}

func TestStaticMultimap_OutputTooSmall(t *testing.T) {
	m, err := NewStaticMultimap[int, int](64, -1, -1)
	require.NoError(t, err)
	_, err = m.Insert(ctx(t), []int{1, 1, 1, 1}, []int{1, 2, 3, 4})
	require.NoError(t, err)

	out := make([]Pair[int, int], 2)
	n, err := m.FindAllInto(ctx(t), []int{1}, out)
	assert.ErrorIs(t, err, ErrOutputTooSmall)
	assert.Equal(t, 2, n)
}

func TestStaticMultimap_CursorSingle(t *testing.T) {
	m, err := NewStaticMultimap[int, int](64, -1, -1, WithProbing[int](LinearProbing{1, 2}))
	require.NoError(t, err)

	mv := m.MutableView()
	for i := range 5 {
		require.True(t, mv.Insert(9, i))
	}
	assert.False(t, mv.Insert(-1, 0))

	var vals []int
	for c := mv.Find(9); c.Valid(); c.Next() {
		vals = append(vals, c.Value())
	}
	slices.Sort(vals)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, vals)

	c := mv.Find(10)
	assert.False(t, c.Valid())
}

func TestStaticMultimap_RetrieveAll(t *testing.T) {
	m, err := NewStaticMultimap[uint16, uint16](1024, 0xFFFF, 0xFFFF)
	require.NoError(t, err)

	keys := make([]uint16, 700)
	values := make([]uint16, 700)
	for i := range keys {
		keys[i], values[i] = uint16(i%100), uint16(i)
	}
	_, err = m.Insert(ctx(t), keys, values)
	require.NoError(t, err)

	pairs, err := m.RetrieveAll(ctx(t))
	require.NoError(t, err)
	require.Len(t, pairs, 700)
	for _, p := range pairs {
		assert.Equal(t, p.Value%100, p.Key)
	}

	require.NoError(t, m.Clear(ctx(t)))
	pairs, err = m.RetrieveAll(ctx(t))
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestStaticMultimap_FindAllReturnsStoredKeys(t *testing.T) {
	// keys are equal modulo 100; the hash must agree
	m, err := NewStaticMultimap[int, int](64, -1, -1,
		WithHasher[int](func(k int) uint64 { return Murmur3Hasher(k % 100) }),
		WithKeyEqual[int](func(a, b int) bool { return a%100 == b%100 }))
	require.NoError(t, err)

	_, err = m.Insert(ctx(t), []int{105, 5, 7}, []int{1, 2, 3})
	require.NoError(t, err)

	pairs, err := m.FindAll(ctx(t), []int{5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair[int, int]{{105, 1}, {5, 2}}, pairs)

	all, err := m.RetrieveAll(ctx(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair[int, int]{{105, 1}, {5, 2}, {7, 3}}, all)

	// rows for keys without a match keep the query key
	outer, err := m.FindAllOuter(ctx(t), []int{205, 8})
	require.NoError(t, err)
	assert.ElementsMatch(t, []Pair[int, int]{{105, 1}, {5, 2}, {8, -1}}, outer)
}
