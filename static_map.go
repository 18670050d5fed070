package cohash

import (
	"context"
	"fmt"
)

// StaticMap is a fixed-capacity concurrent map with unique integer keys.
type StaticMap[K, V Word] struct {
	base
	emptyKey K
	emptyVal V
}

// NewStaticMap creates a map with room for at least capacity entries.
// Find reports emptyVal for absent keys.
func NewStaticMap[K, V Word](capacity int, emptyKey K, emptyVal V, opts ...Option[K]) (*StaticMap[K, V], error) {
	c := newConfig(LinearProbing{GroupSize: 1, WindowSize: 2}, opts)
	m, err := newStaticMap[K, V](context.Background(), &c, capacity, emptyKey, emptyVal)
	if err != nil {
		return nil, fmt.Errorf("new static map: %w", err)
	}
	return m, nil
}

func newStaticMap[K, V Word](ctx context.Context, c *Config[K], capacity int, emptyKey K, emptyVal V) (*StaticMap[K, V], error) {
	t, err := newTable(ctx, c, capacity, uint64(emptyKey), uint64(emptyVal), true, false)
	if err != nil {
		return nil, err
	}
	m := &StaticMap[K, V]{emptyKey: emptyKey, emptyVal: emptyVal}
	m.t, m.d, m.log = t, c.dispatcher(), c.logger.Named("static_map")
	return m, nil
}

// EmptyKey returns the empty-key sentinel.
func (m *StaticMap[K, V]) EmptyKey() K { return m.emptyKey }

// EmptyValue returns the empty-value sentinel.
func (m *StaticMap[K, V]) EmptyValue() V { return m.emptyVal }

// Insert adds keys[i] -> values[i] for every key not yet present and
// returns the number added. Present keys keep their value.
func (m *StaticMap[K, V]) Insert(ctx context.Context, keys []K, values []V) (int, error) {
	return insertAll(ctx, &m.base, keys, values, nil)
}

// InsertIf inserts the pairs at every index where pred holds.
func (m *StaticMap[K, V]) InsertIf(ctx context.Context, keys []K, values []V, pred func(i int) bool) (int, error) {
	return insertAll(ctx, &m.base, keys, values, pred)
}

// Find returns the value of each key, or the empty-value sentinel.
func (m *StaticMap[K, V]) Find(ctx context.Context, keys []K) ([]V, error) {
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()
	out := make([]V, len(keys))
	err := m.d.run(ctx, len(keys), func(_, start, end int) {
		for i := start; i < end; i++ {
			out[i] = m.emptyVal
			if j := m.t.bulkFind(uint64(keys[i])); j >= 0 {
				out[i] = V(m.t.value(j))
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contains reports for each key whether it is present.
func (m *StaticMap[K, V]) Contains(ctx context.Context, keys []K) ([]bool, error) {
	return containsAll(ctx, &m.base, keys)
}

// RetrieveAll returns every entry in unspecified order. The map must not
// be mutated concurrently.
func (m *StaticMap[K, V]) RetrieveAll(ctx context.Context) ([]Pair[K, V], error) {
	out := make([]Pair[K, V], m.Size())
	n, err := retrieveAll(ctx, &m.base, out, pairOf[K, V])
	return out[:n], err
}

// View returns a read-only view for use inside caller kernels.
func (m *StaticMap[K, V]) View() MapView[K, V] { return MapView[K, V]{t: m.t} }

// MutableView returns a view that can also insert.
func (m *StaticMap[K, V]) MutableView() MapMutableView[K, V] {
	return MapMutableView[K, V]{MapView: m.View()}
}

func pairOf[K, V Word](key, val uint64) Pair[K, V] {
	return Pair[K, V]{Key: K(key), Value: V(val)}
}
