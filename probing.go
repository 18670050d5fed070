package cohash

import "fmt"

// ProbingScheme selects how a key's candidate windows are visited. The
// set of schemes is closed: LinearProbing and DoubleHashing.
//
// GroupSize is the number of lanes that cooperate on one key and must be
// a power of two in [1, MaxGroupSize]. WindowSize is the number of
// adjacent slots each lane inspects per step and must be 1 or 2.
type ProbingScheme interface {
	fmt.Stringer
	layout() (groupSize, windowSize int, double bool)
}

// LinearProbing advances one group window per step.
type LinearProbing struct {
	GroupSize  int
	WindowSize int
}

func (p LinearProbing) layout() (int, int, bool) { return p.GroupSize, p.WindowSize, false }

func (p LinearProbing) String() string {
	return fmt.Sprintf("linear(group=%d,window=%d)", p.GroupSize, p.WindowSize)
}

// DoubleHashing starts at a window chosen by the primary hash and steps by
// a stride derived from the secondary hash. The window count is rounded up
// to a prime.
type DoubleHashing struct {
	GroupSize  int
	WindowSize int
}

func (p DoubleHashing) layout() (int, int, bool) { return p.GroupSize, p.WindowSize, true }

func (p DoubleHashing) String() string {
	return fmt.Sprintf("double(group=%d,window=%d)", p.GroupSize, p.WindowSize)
}

// probing is the resolved form of a scheme for one table.
type probing struct {
	groupSize  int
	windowSize int
	// stride is the number of slots in one group window.
	stride  int
	windows uint64
	double  bool
}

func newProbing(s ProbingScheme, capacity int) (probing, error) {
	if s == nil {
		return probing{}, fmt.Errorf("nil scheme: %w", ErrInvalidProbing)
	}
	g, w, double := s.layout()
	if g < 1 || g > MaxGroupSize || g&(g-1) != 0 || w < 1 || w > 2 {
		return probing{}, fmt.Errorf("%s: %w", s, ErrInvalidProbing)
	}
	if capacity <= 0 {
		return probing{}, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	stride := g * w
	windows := (capacity + stride - 1) / stride
	if double && windows > 1 {
		// A prime window count is coprime with every step in [1, windows).
		windows = nextPrime(windows)
	}
	return probing{
		groupSize:  g,
		windowSize: w,
		stride:     stride,
		windows:    uint64(windows),
		double:     double,
	}, nil
}

func (p probing) capacity() int { return int(p.windows) * p.stride }

// probeSeq is the cyclic window sequence of one key.
type probeSeq struct {
	pos     uint64
	step    uint64
	windows uint64
	stride  int
}

func (p probing) seq(h1, h2 uint64) probeSeq {
	s := probeSeq{
		pos:     h1 % p.windows,
		step:    1,
		windows: p.windows,
		stride:  p.stride,
	}
	if p.windows == 1 {
		s.step = 0
	} else if p.double {
		s.step = 1 + h2%(p.windows-1)
	}
	return s
}

// base returns the index of the first slot of the current window.
func (s *probeSeq) base() int { return int(s.pos) * s.stride }

func (s *probeSeq) next() {
	s.pos += s.step
	if s.pos >= s.windows {
		s.pos -= s.windows
	}
}
