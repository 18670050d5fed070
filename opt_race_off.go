//go:build !race

package cohash

import (
	"math/bits"
	"runtime"
	"sync/atomic"
)

// Detect TSO architectures; on TSO, plain reads/writes of native
// word-sized integers are safe
const isTSO = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"

// loadWord reads a slot field; plain on 64-bit TSO, otherwise atomic.
//
//go:nosplit
func loadWord(addr *uint64) uint64 {
	//goland:noinspection ALL
	if isTSO && bits.UintSize >= 64 {
		return *addr
	} else {
		return atomic.LoadUint64(addr)
	}
}

// storeWord writes a slot field outside of the insert protocol
// (initialization and clear).
//
//go:nosplit
func storeWord(addr *uint64, val uint64) {
	//goland:noinspection ALL
	if isTSO && bits.UintSize >= 64 {
		*addr = val
	} else {
		atomic.StoreUint64(addr, val)
	}
}
