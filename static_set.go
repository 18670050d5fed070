package cohash

import (
	"context"
	"fmt"
)

// StaticSet is a fixed-capacity concurrent set of integer keys.
//
// Bulk methods are synchronous: they fan the input out over worker
// goroutines and return once every worker is done. Kernels of the
// caller's own may use View and MutableView concurrently instead.
type StaticSet[K Word] struct {
	base
	emptyKey K
}

// NewStaticSet creates a set with room for at least capacity keys.
// emptyKey marks empty slots and can never be inserted.
func NewStaticSet[K Word](capacity int, emptyKey K, opts ...Option[K]) (*StaticSet[K], error) {
	c := newConfig(LinearProbing{GroupSize: 1, WindowSize: 2}, opts)
	t, err := newTable(context.Background(), &c, capacity, uint64(emptyKey), 0, false, false)
	if err != nil {
		return nil, fmt.Errorf("new static set: %w", err)
	}
	s := &StaticSet[K]{emptyKey: emptyKey}
	s.t, s.d, s.log = t, c.dispatcher(), c.logger.Named("static_set")
	return s, nil
}

// EmptyKey returns the empty-key sentinel.
func (s *StaticSet[K]) EmptyKey() K { return s.emptyKey }

// Insert adds keys and returns how many were new.
func (s *StaticSet[K]) Insert(ctx context.Context, keys []K) (int, error) {
	return insertAll[K, K](ctx, &s.base, keys, nil, nil)
}

// InsertIf adds keys[i] for every i where pred(i) holds.
func (s *StaticSet[K]) InsertIf(ctx context.Context, keys []K, pred func(i int) bool) (int, error) {
	return insertAll[K, K](ctx, &s.base, keys, nil, pred)
}

// Contains reports for each key whether it is present.
func (s *StaticSet[K]) Contains(ctx context.Context, keys []K) ([]bool, error) {
	return containsAll(ctx, &s.base, keys)
}

// RetrieveAll returns every key in unspecified order. The set must not be
// mutated concurrently.
func (s *StaticSet[K]) RetrieveAll(ctx context.Context) ([]K, error) {
	out := make([]K, s.Size())
	n, err := retrieveAll(ctx, &s.base, out, func(key, _ uint64) K { return K(key) })
	return out[:n], err
}

// View returns a read-only view for use inside caller kernels.
func (s *StaticSet[K]) View() SetView[K] { return SetView[K]{t: s.t} }

// MutableView returns a view that can also insert.
func (s *StaticSet[K]) MutableView() SetMutableView[K] {
	return SetMutableView[K]{SetView: s.View()}
}
