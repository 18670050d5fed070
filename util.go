package cohash

import (
	"math/bits"
	"runtime"
)

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal to n.
// Compatible with both 32-bit and 64-bit systems.
func nextPowOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// nextPrime returns the smallest prime that is greater than or equal to n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for ; !isPrime(n); n += 2 {
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// calcParallelism splits items into at most cpus chunks of at least
// threshold items each.
func calcParallelism(items, threshold, cpus int) (chunkSize, chunks int) {
	// If the items is too small, use single-threaded processing.
	if items <= threshold {
		return items, 1
	}

	chunks = max(min(items/threshold, cpus), 1)

	chunkSize = (items + chunks - 1) / chunks

	return chunkSize, chunks
}

// spinYieldAfter is the number of busy iterations before a spinning
// worker yields its processor.
const spinYieldAfter = 16

// delay backs off a worker spinning on a contended slot field. The
// owner of the field may be descheduled, so after a few busy
// iterations the processor is handed back to the scheduler.
func delay(spins *int) {
	if *spins < spinYieldAfter {
		*spins++
		return
	}
	runtime.Gosched()
	*spins = 0
}
