package cohash

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

type insertResult uint8

const (
	insertContinue insertResult = iota
	insertSuccess
	insertDuplicate
	// insertExhausted means a full cycle of the probe sequence held no
	// usable slot.
	insertExhausted
	// insertRejected is returned for the empty-key sentinel itself.
	insertRejected
)

// table is the untyped open-addressing engine shared by every container.
// Keys and values are stored as their 64-bit two's complement bits.
type table struct {
	storage *slotStorage
	slots   []slot
	probe   probing
	group   Group

	emptyKey uint64
	emptyVal uint64

	hash1 func(uint64) uint64
	hash2 func(uint64) uint64
	// equal is nil for bitwise key equality.
	equal func(a, b uint64) bool

	size *sizeCounter

	hasValues bool
	multi     bool
}

// window is a lane-major snapshot of the keys of one group window.
type window struct {
	keys  [MaxGroupSize * 2]uint64
	lanes [MaxGroupSize]uint64
}

func (t *table) seqFor(key uint64) (probeSeq, uint64) {
	h1 := t.hash1(key)
	var h2 uint64
	if t.probe.double {
		h2 = t.hash2(key)
	}
	return t.probe.seq(h1, h2), h1
}

func (t *table) checkGroup(g Group) {
	if g.Size() != t.probe.groupSize {
		panic(fmt.Sprintf("cohash: group of %d lanes used on a table probed by %d", g.Size(), t.probe.groupSize))
	}
}

// claim tries to take an empty slot for key. The key and value CAS are
// issued back to back. A winner of the key whose value CAS failed spins
// until the losing writer has put the value sentinel back.
func (t *table) claim(s *slot, key, val uint64) insertResult {
	keyWon := atomic.CompareAndSwapUint64(&s.key, t.emptyKey, key)
	valWon := !t.hasValues || atomic.CompareAndSwapUint64(&s.value, t.emptyVal, val)
	if keyWon {
		if !valWon {
			spins := 0
			for !atomic.CompareAndSwapUint64(&s.value, t.emptyVal, val) {
				delay(&spins)
			}
		}
		return insertSuccess
	}
	if t.hasValues && valWon {
		atomic.StoreUint64(&s.value, t.emptyVal)
	}
	if !t.multi && t.classify(atomic.LoadUint64(&s.key), key) == slotEqual {
		return insertDuplicate
	}
	return insertContinue
}

func (t *table) insert(key, val uint64) insertResult {
	if key == t.emptyKey {
		return insertRejected
	}
	seq, h := t.seqFor(key)
	for range t.probe.windows {
		base := seq.base()
		for i := base; i < base+t.probe.stride; i++ {
			s := &t.slots[i]
			switch t.classify(loadWord(&s.key), key) {
			case slotEqual:
				if !t.multi {
					return insertDuplicate
				}
			case slotEmpty:
				switch t.claim(s, key, val) {
				case insertSuccess:
					t.size.add(h, 1)
					return insertSuccess
				case insertDuplicate:
					return insertDuplicate
				}
			}
		}
		seq.next()
	}
	return insertExhausted
}

func (t *table) loadWindow(w *window, base int) {
	for j := range t.probe.stride {
		w.keys[j] = loadWord(&t.slots[base+j].key)
	}
}

// laneFirst returns the window offset of the first slot of lane r at or
// after from that is in state st, or -1.
func (t *table) laneFirst(w *window, r, from int, key uint64, st slotState) int {
	ws := t.probe.windowSize
	for j := max(r*ws, from); j < r*ws+ws; j++ {
		if t.classify(w.keys[j], key) == st {
			return j
		}
	}
	return -1
}

// insertGroup is the cooperative insert. The lowest lane seeing an empty
// slot claims it for the group; on contention the same window is read
// again before moving on.
func (t *table) insertGroup(g Group, key, val uint64) insertResult {
	t.checkGroup(g)
	if key == t.emptyKey {
		return insertRejected
	}
	seq, h := t.seqFor(key)
	var w window
	for range t.probe.windows {
		base := seq.base()
		for {
			t.loadWindow(&w, base)
			if !t.multi && g.Any(func(r int) bool { return t.laneFirst(&w, r, 0, key, slotEqual) >= 0 }) {
				return insertDuplicate
			}
			empty := g.Ballot(func(r int) bool { return t.laneFirst(&w, r, 0, key, slotEmpty) >= 0 })
			if empty == 0 {
				break
			}
			src := g.Elect(empty)
			j := t.laneFirst(&w, src, 0, key, slotEmpty)
			w.lanes[src] = uint64(t.claim(&t.slots[base+j], key, val))
			switch insertResult(g.Shfl(w.lanes[:], src)) {
			case insertSuccess:
				t.size.add(h, 1)
				return insertSuccess
			case insertDuplicate:
				return insertDuplicate
			}
		}
		seq.next()
	}
	return insertExhausted
}

// find returns the slot index holding key, or -1.
func (t *table) find(key uint64) int {
	if key == t.emptyKey {
		return -1
	}
	seq, _ := t.seqFor(key)
	for range t.probe.windows {
		base := seq.base()
		for i := base; i < base+t.probe.stride; i++ {
			switch t.classify(loadWord(&t.slots[i].key), key) {
			case slotEqual:
				return i
			case slotEmpty:
				return -1
			}
		}
		seq.next()
	}
	return -1
}

func (t *table) findGroup(g Group, key uint64) int {
	t.checkGroup(g)
	if key == t.emptyKey {
		return -1
	}
	seq, _ := t.seqFor(key)
	var w window
	for range t.probe.windows {
		base := seq.base()
		t.loadWindow(&w, base)
		match := g.Ballot(func(r int) bool { return t.laneFirst(&w, r, 0, key, slotEqual) >= 0 })
		if match != 0 {
			src := g.Elect(match)
			w.lanes[src] = uint64(base + t.laneFirst(&w, src, 0, key, slotEqual))
			return int(g.Shfl(w.lanes[:], src))
		}
		if g.Any(func(r int) bool { return t.laneFirst(&w, r, 0, key, slotEmpty) >= 0 }) {
			return -1
		}
		seq.next()
	}
	return -1
}

func (t *table) value(i int) uint64 {
	return loadWord(&t.slots[i].value)
}

// count returns the number of slots holding key before the first empty
// slot of its probe sequence.
func (t *table) count(key uint64) int {
	if key == t.emptyKey {
		return 0
	}
	n := 0
	seq, _ := t.seqFor(key)
	for range t.probe.windows {
		base := seq.base()
		for i := base; i < base+t.probe.stride; i++ {
			switch t.classify(loadWord(&t.slots[i].key), key) {
			case slotEqual:
				n++
			case slotEmpty:
				return n
			}
		}
		seq.next()
	}
	return n
}

// countGroup sums, window by window, the popcount of the match ballot of
// each lane slot position.
func (t *table) countGroup(g Group, key uint64) int {
	t.checkGroup(g)
	if key == t.emptyKey {
		return 0
	}
	n := 0
	ws := t.probe.windowSize
	seq, _ := t.seqFor(key)
	var w window
	for range t.probe.windows {
		t.loadWindow(&w, seq.base())
		for k := range ws {
			n += bits.OnesCount32(g.Ballot(func(r int) bool {
				return t.classify(w.keys[r*ws+k], key) == slotEqual
			}))
		}
		if g.Any(func(r int) bool { return t.laneFirst(&w, r, 0, key, slotEmpty) >= 0 }) {
			return n
		}
		seq.next()
	}
	return n
}

// forEachMatch calls yield with every slot index holding key until yield
// returns false or the first empty slot is reached.
func (t *table) forEachMatch(key uint64, yield func(i int) bool) {
	c := t.cursor(key)
	for ; c.idx >= 0; c.advance() {
		if !yield(c.idx) {
			return
		}
	}
}

func (t *table) forEachMatchGroup(g Group, key uint64, yield func(i int) bool) {
	c := t.cursorGroup(g, key)
	for ; c.idx >= 0; c.advanceGroup(g) {
		if !yield(c.idx) {
			return
		}
	}
}

// forEachOccupied calls yield with every occupied slot index in [start, end).
func (t *table) forEachOccupied(start, end int, yield func(i int)) {
	for i := start; i < end; i++ {
		if loadWord(&t.slots[i].key) != t.emptyKey {
			yield(i)
		}
	}
}

// cursor walks the matches of one key along its probe sequence.
type cursor struct {
	t    *table
	key  uint64
	seq  probeSeq
	left uint64
	// off is the window offset of the next slot to inspect.
	off int
	idx int
}

func (t *table) cursor(key uint64) cursor {
	c := t.newCursor(key)
	c.advance()
	return c
}

func (t *table) cursorGroup(g Group, key uint64) cursor {
	t.checkGroup(g)
	c := t.newCursor(key)
	c.advanceGroup(g)
	return c
}

func (t *table) newCursor(key uint64) cursor {
	c := cursor{t: t, key: key, idx: -1}
	if key == t.emptyKey {
		return c
	}
	c.seq, _ = t.seqFor(key)
	c.left = t.probe.windows
	return c
}

func (c *cursor) stop() {
	c.left = 0
	c.idx = -1
}

func (c *cursor) advance() {
	t := c.t
	for c.left > 0 {
		base := c.seq.base()
		for c.off < t.probe.stride {
			i := base + c.off
			c.off++
			switch t.classify(loadWord(&t.slots[i].key), c.key) {
			case slotEqual:
				c.idx = i
				return
			case slotEmpty:
				c.stop()
				return
			}
		}
		c.off = 0
		c.seq.next()
		c.left--
	}
	c.idx = -1
}

func (c *cursor) advanceGroup(g Group) {
	t := c.t
	var w window
	for c.left > 0 {
		base := c.seq.base()
		t.loadWindow(&w, base)
		from := c.off
		match := g.Ballot(func(r int) bool { return t.laneFirst(&w, r, from, c.key, slotEqual) >= 0 })
		if match != 0 {
			src := g.Elect(match)
			w.lanes[src] = uint64(t.laneFirst(&w, src, from, c.key, slotEqual))
			j := int(g.Shfl(w.lanes[:], src))
			c.idx = base + j
			c.off = j + 1
			return
		}
		if g.Any(func(r int) bool { return t.laneFirst(&w, r, from, c.key, slotEmpty) >= 0 }) {
			c.stop()
			return
		}
		c.off = 0
		c.seq.next()
		c.left--
	}
	c.idx = -1
}
