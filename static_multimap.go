package cohash

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StaticMultimap is a fixed-capacity concurrent map that keeps every
// inserted pair, including repeated keys.
type StaticMultimap[K, V Word] struct {
	base
	emptyKey K
	emptyVal V
}

// NewStaticMultimap creates a multimap with room for at least capacity
// pairs. The default probing is DoubleHashing{8, 2}.
func NewStaticMultimap[K, V Word](capacity int, emptyKey K, emptyVal V, opts ...Option[K]) (*StaticMultimap[K, V], error) {
	c := newConfig(DoubleHashing{GroupSize: 8, WindowSize: 2}, opts)
	t, err := newTable(context.Background(), &c, capacity, uint64(emptyKey), uint64(emptyVal), true, true)
	if err != nil {
		return nil, fmt.Errorf("new static multimap: %w", err)
	}
	m := &StaticMultimap[K, V]{emptyKey: emptyKey, emptyVal: emptyVal}
	m.t, m.d, m.log = t, c.dispatcher(), c.logger.Named("static_multimap")
	return m, nil
}

// EmptyKey returns the empty-key sentinel.
func (m *StaticMultimap[K, V]) EmptyKey() K { return m.emptyKey }

// EmptyValue returns the empty-value sentinel.
func (m *StaticMultimap[K, V]) EmptyValue() V { return m.emptyVal }

// Insert adds every pair and returns the number added.
func (m *StaticMultimap[K, V]) Insert(ctx context.Context, keys []K, values []V) (int, error) {
	return insertAll(ctx, &m.base, keys, values, nil)
}

// InsertIf adds the pairs at every index where pred holds.
func (m *StaticMultimap[K, V]) InsertIf(ctx context.Context, keys []K, values []V, pred func(i int) bool) (int, error) {
	return insertAll(ctx, &m.base, keys, values, pred)
}

// Contains reports for each key whether at least one pair holds it.
func (m *StaticMultimap[K, V]) Contains(ctx context.Context, keys []K) ([]bool, error) {
	return containsAll(ctx, &m.base, keys)
}

// Count returns the total number of pairs matching keys.
func (m *StaticMultimap[K, V]) Count(ctx context.Context, keys []K) (int, error) {
	return m.count(ctx, keys, false)
}

// CountOuter is Count where every key without a match counts once.
func (m *StaticMultimap[K, V]) CountOuter(ctx context.Context, keys []K) (int, error) {
	return m.count(ctx, keys, true)
}

func (m *StaticMultimap[K, V]) count(ctx context.Context, keys []K, outer bool) (int, error) {
	if err := m.acquire(); err != nil {
		return 0, err
	}
	defer m.release()
	var total atomic.Int64
	err := m.d.run(ctx, len(keys), func(_, start, end int) {
		local := 0
		for i := start; i < end; i++ {
			n := m.t.bulkCount(uint64(keys[i]))
			if n == 0 && outer {
				n = 1
			}
			local += n
		}
		total.Add(int64(local))
	})
	return int(total.Load()), err
}

// FindAll returns every pair matching keys in unspecified order.
func (m *StaticMultimap[K, V]) FindAll(ctx context.Context, keys []K) ([]Pair[K, V], error) {
	n, err := m.Count(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]Pair[K, V], n)
	n, err = m.FindAllInto(ctx, keys, out)
	return out[:n], err
}

// FindAllInto writes the pairs matching keys into out and returns how many
// were written. If out is too small the result is truncated and
// ErrOutputTooSmall is returned; size out with Count beforehand.
func (m *StaticMultimap[K, V]) FindAllInto(ctx context.Context, keys []K, out []Pair[K, V]) (int, error) {
	return m.findAll(ctx, keys, out, false)
}

// FindAllOuter is FindAll where a key without a match yields one pair
// holding the empty-value sentinel.
func (m *StaticMultimap[K, V]) FindAllOuter(ctx context.Context, keys []K) ([]Pair[K, V], error) {
	n, err := m.CountOuter(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]Pair[K, V], n)
	n, err = m.FindAllOuterInto(ctx, keys, out)
	return out[:n], err
}

// FindAllOuterInto is the outer form of FindAllInto.
func (m *StaticMultimap[K, V]) FindAllOuterInto(ctx context.Context, keys []K, out []Pair[K, V]) (int, error) {
	return m.findAll(ctx, keys, out, true)
}

func (m *StaticMultimap[K, V]) findAll(ctx context.Context, keys []K, out []Pair[K, V], outer bool) (int, error) {
	if err := m.acquire(); err != nil {
		return 0, err
	}
	defer m.release()
	t := m.t
	sink := &outputSink[Pair[K, V]]{out: out}
	err := m.d.run(ctx, len(keys), func(_, start, end int) {
		buf := make([]Pair[K, V], 0, sinkBufferSize)
		for i := start; i < end; i++ {
			found := false
			t.bulkForEachMatch(uint64(keys[i]), func(j int) bool {
				found = true
				buf = sink.push(buf, pairOf[K, V](loadWord(&t.slots[j].key), t.value(j)))
				return true
			})
			if !found && outer {
				buf = sink.push(buf, Pair[K, V]{Key: keys[i], Value: m.emptyVal})
			}
		}
		sink.flush(buf)
	})
	if err != nil {
		return 0, err
	}
	return sink.result()
}

// RetrieveAll returns every pair in unspecified order. The multimap must
// not be mutated concurrently.
func (m *StaticMultimap[K, V]) RetrieveAll(ctx context.Context) ([]Pair[K, V], error) {
	out := make([]Pair[K, V], m.Size())
	n, err := retrieveAll(ctx, &m.base, out, pairOf[K, V])
	return out[:n], err
}

// View returns a read-only view for use inside caller kernels.
func (m *StaticMultimap[K, V]) View() MultimapView[K, V] { return MultimapView[K, V]{t: m.t} }

// MutableView returns a view that can also insert.
func (m *StaticMultimap[K, V]) MutableView() MultimapMutableView[K, V] {
	return MultimapMutableView[K, V]{MultimapView: m.View()}
}
