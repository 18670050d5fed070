package cohash

import (
	"context"
	"testing"
)

func ctx(t *testing.T) context.Context {
	return t.Context()
}

// sequence returns [0, n) converted to T.
func sequence[T Word](n int) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = T(i)
	}
	return s
}

// schemes lists the probing layouts every container is tested with.
var schemes = []ProbingScheme{
	LinearProbing{1, 1},
	LinearProbing{1, 2},
	LinearProbing{4, 2},
	DoubleHashing{1, 2},
	DoubleHashing{8, 2},
	DoubleHashing{32, 1},
}

func constantHash[K Word](K) uint64 { return 7 }
