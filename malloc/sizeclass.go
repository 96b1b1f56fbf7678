package malloc

import "math/bits"

// headerSize is H from spec: the size in bytes of the in-band block header.
// It doubles as the pointer width used by the free-block overlay (prev/next),
// so MinBlockSize must be at least headerSize + 2*headerSize = 3*headerSize,
// rounded up to the next power of two.
const headerSize = 8

// roundUpSizeClass returns the smallest power of two >= max(n, minBlockSize).
// If n is already a power of two and >= minBlockSize, it is returned
// unchanged.
func roundUpSizeClass(n, minBlockSize uint32) uint32 {
	if n <= minBlockSize {
		return minBlockSize
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len32(n)
}

// orderOf returns the order k such that 2^k == roundUpSizeClass(rsize+H,
// minBlockSize). Domain requirement: 0 < rsize <= maxBlockSize-H, enforced
// by callers (Allocate/Reallocate) before orderOf is invoked.
func orderOf(rsize, minBlockSize uint32) int {
	size := roundUpSizeClass(rsize+headerSize, minBlockSize)
	return bits.TrailingZeros32(size)
}

// orderToBlockSize converts an order back to its block size in bytes.
func orderToBlockSize(order int) uint32 {
	return uint32(1) << uint(order)
}

// nextPow2 returns the smallest power of two >= n, n >= 1.
func nextPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len32(n)
}

// prevPow2 returns the largest power of two <= n, or 0 if n == 0.
func prevPow2(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	return 1 << uint(bits.Len32(n)-1)
}
