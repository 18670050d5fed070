package cohash

type slotState uint8

const (
	slotEmpty slotState = iota
	slotEqual
	slotUnequal
)

// classify compares a slot key against the empty sentinel first, bitwise,
// so the user equality never sees a sentinel.
func (t *table) classify(existing, key uint64) slotState {
	if existing == t.emptyKey {
		return slotEmpty
	}
	if t.equal == nil {
		if existing == key {
			return slotEqual
		}
		return slotUnequal
	}
	if t.equal(existing, key) {
		return slotEqual
	}
	return slotUnequal
}
