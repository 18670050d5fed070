package cohash

// Views are small values that can be copied into any goroutine. Each
// operation has a single-goroutine form and a cooperative form taking a
// Group whose size must equal the probing scheme's group size; a mismatch
// panics. Group() returns a matching group.

// SetView is a read-only view of a StaticSet.
type SetView[K Word] struct {
	t *table
}

// Group returns the group matching the set's probing scheme.
func (v SetView[K]) Group() Group { return v.t.group }

// Capacity returns the number of slots.
func (v SetView[K]) Capacity() int { return len(v.t.slots) }

// Contains reports whether key is present.
func (v SetView[K]) Contains(key K) bool { return v.t.find(uint64(key)) >= 0 }

// ContainsGroup is the cooperative form of Contains.
func (v SetView[K]) ContainsGroup(g Group, key K) bool { return v.t.findGroup(g, uint64(key)) >= 0 }

// SetMutableView is a SetView that can also insert.
type SetMutableView[K Word] struct {
	SetView[K]
}

// Insert adds key and reports whether it was not present.
func (v SetMutableView[K]) Insert(key K) bool {
	return v.t.insert(uint64(key), v.t.emptyVal) == insertSuccess
}

// InsertGroup is the cooperative form of Insert.
func (v SetMutableView[K]) InsertGroup(g Group, key K) bool {
	return v.t.insertGroup(g, uint64(key), v.t.emptyVal) == insertSuccess
}

// MapView is a read-only view of a StaticMap.
type MapView[K, V Word] struct {
	t *table
}

// Group returns the group matching the map's probing scheme.
func (v MapView[K, V]) Group() Group { return v.t.group }

// Capacity returns the number of slots.
func (v MapView[K, V]) Capacity() int { return len(v.t.slots) }

// Find returns the value of key. A miss returns the empty-value sentinel
// and false. A hit racing its insert may briefly see the sentinel value.
func (v MapView[K, V]) Find(key K) (V, bool) {
	return v.lookup(v.t.find(uint64(key)))
}

// FindGroup is the cooperative form of Find.
func (v MapView[K, V]) FindGroup(g Group, key K) (V, bool) {
	return v.lookup(v.t.findGroup(g, uint64(key)))
}

func (v MapView[K, V]) lookup(i int) (V, bool) {
	if i < 0 {
		return V(v.t.emptyVal), false
	}
	return V(v.t.value(i)), true
}

// Contains reports whether key is present.
func (v MapView[K, V]) Contains(key K) bool { return v.t.find(uint64(key)) >= 0 }

// ContainsGroup is the cooperative form of Contains.
func (v MapView[K, V]) ContainsGroup(g Group, key K) bool {
	return v.t.findGroup(g, uint64(key)) >= 0
}

// MapMutableView is a MapView that can also insert.
type MapMutableView[K, V Word] struct {
	MapView[K, V]
}

// Insert adds key -> val and reports whether key was not present.
func (v MapMutableView[K, V]) Insert(key K, val V) bool {
	return v.t.insert(uint64(key), uint64(val)) == insertSuccess
}

// InsertGroup is the cooperative form of Insert.
func (v MapMutableView[K, V]) InsertGroup(g Group, key K, val V) bool {
	return v.t.insertGroup(g, uint64(key), uint64(val)) == insertSuccess
}

// MultimapView is a read-only view of a StaticMultimap.
type MultimapView[K, V Word] struct {
	t *table
}

// Group returns the group matching the multimap's probing scheme.
func (v MultimapView[K, V]) Group() Group { return v.t.group }

// Capacity returns the number of slots.
func (v MultimapView[K, V]) Capacity() int { return len(v.t.slots) }

// Contains reports whether at least one pair holds key.
func (v MultimapView[K, V]) Contains(key K) bool { return v.t.find(uint64(key)) >= 0 }

// ContainsGroup is the cooperative form of Contains.
func (v MultimapView[K, V]) ContainsGroup(g Group, key K) bool {
	return v.t.findGroup(g, uint64(key)) >= 0
}

// Count returns the number of pairs holding key.
func (v MultimapView[K, V]) Count(key K) int { return v.t.count(uint64(key)) }

// CountGroup is the cooperative form of Count.
func (v MultimapView[K, V]) CountGroup(g Group, key K) int { return v.t.countGroup(g, uint64(key)) }

// Find returns a cursor positioned on the first pair holding key.
func (v MultimapView[K, V]) Find(key K) Cursor[K, V] {
	return Cursor[K, V]{c: v.t.cursor(uint64(key))}
}

// FindGroup is the cooperative form of Find; Next on the returned cursor
// keeps using g.
func (v MultimapView[K, V]) FindGroup(g Group, key K) Cursor[K, V] {
	return Cursor[K, V]{c: v.t.cursorGroup(g, uint64(key)), g: g, grouped: true}
}

// ForEach calls yield with the value of every pair holding key until
// yield returns false.
func (v MultimapView[K, V]) ForEach(key K, yield func(V) bool) {
	v.t.forEachMatch(uint64(key), func(i int) bool { return yield(V(v.t.value(i))) })
}

// ForEachGroup is the cooperative form of ForEach.
func (v MultimapView[K, V]) ForEachGroup(g Group, key K, yield func(V) bool) {
	v.t.forEachMatchGroup(g, uint64(key), func(i int) bool { return yield(V(v.t.value(i))) })
}

// MultimapMutableView is a MultimapView that can also insert.
type MultimapMutableView[K, V Word] struct {
	MultimapView[K, V]
}

// Insert adds the pair; it fails only when the table is full or key is
// the empty-key sentinel.
func (v MultimapMutableView[K, V]) Insert(key K, val V) bool {
	return v.t.insert(uint64(key), uint64(val)) == insertSuccess
}

// InsertGroup is the cooperative form of Insert.
func (v MultimapMutableView[K, V]) InsertGroup(g Group, key K, val V) bool {
	return v.t.insertGroup(g, uint64(key), uint64(val)) == insertSuccess
}

// Cursor walks the pairs of one key in probe order.
type Cursor[K, V Word] struct {
	c       cursor
	g       Group
	grouped bool
}

// Valid reports whether the cursor is positioned on a pair.
func (c *Cursor[K, V]) Valid() bool { return c.c.idx >= 0 }

// Key returns the key of the current pair.
func (c *Cursor[K, V]) Key() K { return K(loadWord(&c.c.t.slots[c.c.idx].key)) }

// Value returns the value of the current pair.
func (c *Cursor[K, V]) Value() V { return V(c.c.t.value(c.c.idx)) }

// Next moves to the next pair holding the same key.
func (c *Cursor[K, V]) Next() {
	if c.grouped {
		c.c.advanceGroup(c.g)
		return
	}
	c.c.advance()
}

// DynamicMapView is a read-only view over every submap of a DynamicMap,
// valid until the next grow or compaction.
type DynamicMapView[K, V Word] struct {
	submaps []*table
}

// Group returns the group matching the map's probing scheme.
func (v DynamicMapView[K, V]) Group() Group { return v.submaps[0].group }

func (v DynamicMapView[K, V]) locate(key K) (*table, int) {
	for _, t := range v.submaps {
		if i := t.find(uint64(key)); i >= 0 {
			return t, i
		}
	}
	return nil, -1
}

func (v DynamicMapView[K, V]) locateGroup(g Group, key K) (*table, int) {
	for _, t := range v.submaps {
		if i := t.findGroup(g, uint64(key)); i >= 0 {
			return t, i
		}
	}
	return nil, -1
}

// Find returns the value of key from the oldest submap holding it.
func (v DynamicMapView[K, V]) Find(key K) (V, bool) {
	t, i := v.locate(key)
	if t == nil {
		return V(v.submaps[0].emptyVal), false
	}
	return V(t.value(i)), true
}

// FindGroup is the cooperative form of Find.
func (v DynamicMapView[K, V]) FindGroup(g Group, key K) (V, bool) {
	t, i := v.locateGroup(g, key)
	if t == nil {
		return V(v.submaps[0].emptyVal), false
	}
	return V(t.value(i)), true
}

// Contains reports whether some submap holds key.
func (v DynamicMapView[K, V]) Contains(key K) bool {
	t, _ := v.locate(key)
	return t != nil
}

// ContainsGroup is the cooperative form of Contains.
func (v DynamicMapView[K, V]) ContainsGroup(g Group, key K) bool {
	t, _ := v.locateGroup(g, key)
	return t != nil
}

// DynamicMapMutableView inserts into the active submap only; it never
// grows the map, so callers must leave room for what they insert.
type DynamicMapMutableView[K, V Word] struct {
	DynamicMapView[K, V]
}

// Insert adds key -> val to the active submap unless a submap already
// holds key.
func (v DynamicMapMutableView[K, V]) Insert(key K, val V) bool {
	sealed, active := v.split()
	for _, t := range sealed {
		if t.find(uint64(key)) >= 0 {
			return false
		}
	}
	return active.insert(uint64(key), uint64(val)) == insertSuccess
}

// InsertGroup is the cooperative form of Insert.
func (v DynamicMapMutableView[K, V]) InsertGroup(g Group, key K, val V) bool {
	sealed, active := v.split()
	for _, t := range sealed {
		if t.findGroup(g, uint64(key)) >= 0 {
			return false
		}
	}
	return active.insertGroup(g, uint64(key), uint64(val)) == insertSuccess
}

func (v DynamicMapMutableView[K, V]) split() ([]*table, *table) {
	n := len(v.submaps)
	return v.submaps[:n-1], v.submaps[n-1]
}
