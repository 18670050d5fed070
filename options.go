package cohash

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"
)

const (
	// defaultLoadFactor is the occupancy a DynamicMap submap may reach
	// before the next batch grows the map.
	defaultLoadFactor = 0.60
	// defaultMinInsertSize is the smallest room worth inserting into
	// before a DynamicMap grows.
	defaultMinInsertSize = 10_000
)

// Config holds the construction options of a container.
type Config[K Word] struct {
	probing       ProbingScheme
	hasher        Hasher[K]
	secondHasher  Hasher[K]
	keyEqual      func(a, b K) bool
	allocator     Allocator
	workers       int
	logger        hclog.Logger
	loadFactor    float64
	minInsertSize int
}

// Option configures a container at construction.
type Option[K Word] func(*Config[K])

// WithProbing selects the probing scheme. Sets and maps default to
// LinearProbing{1, 2}, multimaps to DoubleHashing{8, 2}.
func WithProbing[K Word](p ProbingScheme) Option[K] {
	return func(c *Config[K]) {
		c.probing = p
	}
}

// WithHasher sets the primary hash function (default Murmur3Hasher).
func WithHasher[K Word](h Hasher[K]) Option[K] {
	return func(c *Config[K]) {
		c.hasher = h
	}
}

// WithSecondHasher sets the hash that derives the double hashing step
// (default XXHasher).
func WithSecondHasher[K Word](h Hasher[K]) Option[K] {
	return func(c *Config[K]) {
		c.secondHasher = h
	}
}

// WithKeyEqual replaces bitwise key equality. The function is never
// called with the empty-key sentinel.
func WithKeyEqual[K Word](eq func(a, b K) bool) Option[K] {
	return func(c *Config[K]) {
		c.keyEqual = eq
	}
}

// WithAllocator sets the slot array allocator (default HeapAllocator).
func WithAllocator[K Word](a Allocator) Option[K] {
	return func(c *Config[K]) {
		c.allocator = a
	}
}

// WithWorkers bounds the number of goroutines a bulk operation uses
// (default GOMAXPROCS).
func WithWorkers[K Word](n int) Option[K] {
	return func(c *Config[K]) {
		c.workers = n
	}
}

// WithLogger sets the logger for lifecycle events such as growth and
// compaction (default: discard).
func WithLogger[K Word](l hclog.Logger) Option[K] {
	return func(c *Config[K]) {
		c.logger = l
	}
}

// WithLoadFactor sets the DynamicMap growth threshold in (0, 1].
func WithLoadFactor[K Word](lf float64) Option[K] {
	return func(c *Config[K]) {
		c.loadFactor = lf
	}
}

// WithMinInsertSize sets the smallest batch room a DynamicMap submap must
// offer before the map grows.
func WithMinInsertSize[K Word](n int) Option[K] {
	return func(c *Config[K]) {
		c.minInsertSize = n
	}
}

func newConfig[K Word](defaultProbing ProbingScheme, opts []Option[K]) Config[K] {
	c := Config[K]{
		probing:       defaultProbing,
		hasher:        Murmur3Hasher[K],
		secondHasher:  XXHasher[K],
		allocator:     HeapAllocator{},
		workers:       runtime.GOMAXPROCS(0),
		logger:        hclog.NewNullLogger(),
		loadFactor:    defaultLoadFactor,
		minInsertSize: defaultMinInsertSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	if c.hasher == nil {
		c.hasher = Murmur3Hasher[K]
	}
	if c.secondHasher == nil {
		c.secondHasher = XXHasher[K]
	}
	if c.allocator == nil {
		c.allocator = HeapAllocator{}
	}
	return c
}

func (c *Config[K]) dispatcher() dispatcher {
	return dispatcher{workers: c.workers}
}

// newTable allocates and initializes a slot array for capacity entries.
func newTable[K Word](ctx context.Context, c *Config[K], capacity int, emptyKey, emptyVal uint64, hasValues, multi bool) (*table, error) {
	p, err := newProbing(c.probing, capacity)
	if err != nil {
		return nil, err
	}
	storage, err := newSlotStorage(c.allocator, p.capacity())
	if err != nil {
		return nil, err
	}
	hash1, hash2 := c.hasher, c.secondHasher
	t := &table{
		storage:   storage,
		slots:     storage.slots,
		probe:     p,
		group:     Group{size: p.groupSize},
		emptyKey:  emptyKey,
		emptyVal:  emptyVal,
		hash1:     func(k uint64) uint64 { return hash1(K(k)) },
		hash2:     func(k uint64) uint64 { return hash2(K(k)) },
		size:      newSizeCounter(c.workers),
		hasValues: hasValues,
		multi:     multi,
	}
	if eq := c.keyEqual; eq != nil {
		t.equal = func(a, b uint64) bool { return eq(K(a), K(b)) }
	}
	if err := storage.fill(ctx, c.dispatcher(), emptyKey, emptyVal); err != nil {
		_ = storage.release()
		return nil, fmt.Errorf("initialize slots: %w", err)
	}
	return t, nil
}

func (t *table) clear(ctx context.Context, d dispatcher) error {
	if err := t.storage.fill(ctx, d, t.emptyKey, t.emptyVal); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	t.size.reset()
	return nil
}
