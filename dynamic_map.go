package cohash

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// DynamicMap is a concurrent map that grows by appending submaps. Only the
// newest submap takes inserts; older ones are sealed and only answer
// lookups. Each key lives in exactly one submap.
//
// Bulk inserts are serialized against each other and against growth;
// bulk lookups run concurrently with each other.
type DynamicMap[K, V Word] struct {
	mu sync.RWMutex

	cfg Config[K]
	d   dispatcher
	log hclog.Logger

	emptyKey K
	emptyVal V

	submaps         []*StaticMap[K, V]
	capacity        int
	initialCapacity int
	growths         int
	closed          bool
}

// NewDynamicMap creates a map whose first submap holds initialCapacity
// slots. WithLoadFactor and WithMinInsertSize tune when it grows.
func NewDynamicMap[K, V Word](initialCapacity int, emptyKey K, emptyVal V, opts ...Option[K]) (*DynamicMap[K, V], error) {
	c := newConfig(LinearProbing{GroupSize: 1, WindowSize: 2}, opts)
	if !(c.loadFactor > 0 && c.loadFactor <= 1) {
		return nil, fmt.Errorf("new dynamic map: load factor %v: %w", c.loadFactor, ErrInvalidLoadFactor)
	}
	c.minInsertSize = max(c.minInsertSize, 1)
	sm, err := newStaticMap[K, V](context.Background(), &c, initialCapacity, emptyKey, emptyVal)
	if err != nil {
		return nil, fmt.Errorf("new dynamic map: %w", err)
	}
	return &DynamicMap[K, V]{
		cfg:             c,
		d:               c.dispatcher(),
		log:             c.logger.Named("dynamic_map"),
		emptyKey:        emptyKey,
		emptyVal:        emptyVal,
		submaps:         []*StaticMap[K, V]{sm},
		capacity:        sm.Capacity(),
		initialCapacity: initialCapacity,
	}, nil
}

// Insert adds keys[i] -> values[i] for every key not present in any
// submap and returns the number added. The map grows between batches
// whenever the active submap has too little room left.
func (m *DynamicMap[K, V]) Insert(ctx context.Context, keys []K, values []V) (int, error) {
	if len(keys) != len(values) {
		return 0, fmt.Errorf("%d keys, %d values: %w", len(keys), len(values), ErrLengthMismatch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	total := 0
	for len(keys) > 0 {
		active := m.submaps[len(m.submaps)-1]
		room := int(m.cfg.loadFactor*float64(active.Capacity())) - active.Size()
		if room < min(m.cfg.minInsertSize, len(keys)) {
			if err := m.grow(ctx); err != nil {
				return total, err
			}
			continue
		}
		n := min(room, len(keys))
		inserted, err := m.insertBatch(ctx, active, keys[:n], values[:n])
		total += inserted
		if err != nil {
			return total, err
		}
		keys, values = keys[n:], values[n:]
	}
	return total, nil
}

func (m *DynamicMap[K, V]) insertBatch(ctx context.Context, active *StaticMap[K, V], keys []K, values []V) (int, error) {
	sealed := m.submaps[:len(m.submaps)-1]
	if len(sealed) == 0 {
		return active.Insert(ctx, keys, values)
	}
	return active.InsertIf(ctx, keys, values, func(i int) bool {
		for _, s := range sealed {
			if s.t.bulkFind(uint64(keys[i])) >= 0 {
				return false
			}
		}
		return true
	})
}

// grow seals the active submap and appends one as large as the whole map.
func (m *DynamicMap[K, V]) grow(ctx context.Context) error {
	sm, err := newStaticMap[K, V](ctx, &m.cfg, m.capacity, m.emptyKey, m.emptyVal)
	if err != nil {
		return fmt.Errorf("grow to %d slots: %w", 2*m.capacity, err)
	}
	m.submaps = append(m.submaps, sm)
	m.capacity += sm.Capacity()
	m.growths++
	m.log.Debug("grew", "submaps", len(m.submaps), "submap_capacity", sm.Capacity(), "capacity", m.capacity)
	return nil
}

// Find returns the value of each key, or the empty-value sentinel.
func (m *DynamicMap[K, V]) Find(ctx context.Context, keys []K) ([]V, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v := m.view()
	g := v.Group()
	out := make([]V, len(keys))
	err := m.d.run(ctx, len(keys), func(_, start, end int) {
		for i := start; i < end; i++ {
			if g.Size() > 1 {
				out[i], _ = v.FindGroup(g, keys[i])
			} else {
				out[i], _ = v.Find(keys[i])
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contains reports for each key whether some submap holds it.
func (m *DynamicMap[K, V]) Contains(ctx context.Context, keys []K) ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v := m.view()
	g := v.Group()
	out := make([]bool, len(keys))
	err := m.d.run(ctx, len(keys), func(_, start, end int) {
		for i := start; i < end; i++ {
			if g.Size() > 1 {
				out[i] = v.ContainsGroup(g, keys[i])
			} else {
				out[i] = v.Contains(keys[i])
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RetrieveAll returns every entry of every submap in unspecified order.
func (m *DynamicMap[K, V]) RetrieveAll(ctx context.Context) ([]Pair[K, V], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.retrieveAll(ctx)
}

func (m *DynamicMap[K, V]) retrieveAll(ctx context.Context) ([]Pair[K, V], error) {
	var all []Pair[K, V]
	for i, sm := range m.submaps {
		pairs, err := sm.RetrieveAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("retrieve submap %d: %w", i, err)
		}
		all = append(all, pairs...)
	}
	return all, nil
}

// Compact migrates every entry into one submap sized for the load factor
// by re-inserting them. The old submaps are released only after the
// migration completed; on failure the map is left unchanged.
func (m *DynamicMap[K, V]) Compact(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if len(m.submaps) == 1 {
		return nil
	}
	size := m.size()
	capacity := max(int(math.Ceil(float64(size)/m.cfg.loadFactor)), m.initialCapacity)
	sm, err := newStaticMap[K, V](ctx, &m.cfg, capacity, m.emptyKey, m.emptyVal)
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}
	for i, old := range m.submaps {
		if err := migrate(ctx, old, sm); err != nil {
			_ = sm.Close()
			return fmt.Errorf("compact submap %d: %w", i, err)
		}
	}
	for _, old := range m.submaps {
		if err := old.Close(); err != nil {
			m.log.Warn("release submap", "error", err)
		}
	}
	m.log.Debug("compacted", "submaps", len(m.submaps), "size", size, "capacity", sm.Capacity())
	m.submaps = []*StaticMap[K, V]{sm}
	m.capacity = sm.Capacity()
	return nil
}

func migrate[K, V Word](ctx context.Context, src, dst *StaticMap[K, V]) error {
	pairs, err := src.RetrieveAll(ctx)
	if err != nil {
		return err
	}
	keys := make([]K, len(pairs))
	values := make([]V, len(pairs))
	for i, p := range pairs {
		keys[i], values[i] = p.Key, p.Value
	}
	_, err = dst.Insert(ctx, keys, values)
	return err
}

// Clear drops every submap but the first and resets it.
func (m *DynamicMap[K, V]) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, sm := range m.submaps[1:] {
		if err := sm.Close(); err != nil {
			return err
		}
	}
	m.submaps = m.submaps[:1]
	m.capacity = m.submaps[0].Capacity()
	return m.submaps[0].Clear(ctx)
}

// Size returns the number of entries.
func (m *DynamicMap[K, V]) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size()
}

func (m *DynamicMap[K, V]) size() int {
	n := 0
	for _, sm := range m.submaps {
		n += sm.Size()
	}
	return n
}

// Capacity returns the total number of slots over all submaps.
func (m *DynamicMap[K, V]) Capacity() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.capacity
}

// Submaps returns the number of submaps.
func (m *DynamicMap[K, V]) Submaps() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.submaps)
}

// Stats returns a snapshot of the map.
func (m *DynamicMap[K, V]) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	size := m.size()
	return Stats{
		Size:       size,
		Capacity:   m.capacity,
		LoadFactor: loadFactor(size, m.capacity),
		Submaps:    len(m.submaps),
		Growths:    m.growths,
		Probing:    m.submaps[0].scheme(),
	}
}

// Close releases every submap.
func (m *DynamicMap[K, V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	var firstErr error
	for _, sm := range m.submaps {
		if err := sm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// View returns a read-only view over the current submaps. It stays valid
// until the next grow, compaction, clear or close.
func (m *DynamicMap[K, V]) View() DynamicMapView[K, V] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view()
}

// MutableView returns a view that inserts into the active submap.
func (m *DynamicMap[K, V]) MutableView() DynamicMapMutableView[K, V] {
	return DynamicMapMutableView[K, V]{DynamicMapView: m.View()}
}

func (m *DynamicMap[K, V]) view() DynamicMapView[K, V] {
	tables := make([]*table, len(m.submaps))
	for i, sm := range m.submaps {
		tables[i] = sm.t
	}
	return DynamicMapView[K, V]{submaps: tables}
}
