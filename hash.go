package cohash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/constraints"
)

// Word is the set of key and value types a container can store. Values are
// widened to 64 bits inside the slot array.
type Word interface {
	constraints.Integer
}

// Pair is one key/value result of a retrieve or find-all operation.
type Pair[K, V Word] struct {
	Key   K
	Value V
}

// Hasher maps a key to a 64-bit hash.
type Hasher[K Word] func(K) uint64

// Murmur3Hasher hashes the little-endian bytes of k with MurmurHash3.
func Murmur3Hasher[K Word](k K) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return murmur3.Sum64(b[:])
}

// XXHasher hashes the little-endian bytes of k with xxHash64.
func XXHasher[K Word](k K) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return xxhash.Sum64(b[:])
}

// FibonacciHasher multiplies k by the golden ratio constant. It is the
// cheapest choice for keys that are already well spread.
func FibonacciHasher[K Word](k K) uint64 {
	h := uint64(k) * hashPrime
	return h ^ h>>29
}
