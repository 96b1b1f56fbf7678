package malloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsafePointer(p uintptr) unsafe.Pointer { return unsafe.Pointer(p) }

func TestCoalesceMergesBuddiesUpward(t *testing.T) {
	a := newTestAllocator(t)

	x := a.Allocate(4) // order 5 (min block)
	b := a.Allocate(16) // order 5
	require.NotNil(t, x)
	require.NotNil(t, b)

	a.Free(x)
	a.Free(b)

	// Quantified invariant 3: no two buddy-adjacent free blocks of equal
	// order survive a free().
	topOrder := a.orderMax - 1
	for order := a.orderMin; order < topOrder; order++ {
		assert.True(t, a.isFreeListEmpty(order), "order %d should have merged away", order)
	}
	assert.False(t, a.isFreeListEmpty(topOrder))
}

func TestCoalesceStopsAtAllocatedBuddy(t *testing.T) {
	a := newTestAllocator(t)

	x := a.Allocate(4) // order 5
	y := a.Allocate(4) // order 5, buddy of x
	require.NotNil(t, x)
	require.NotNil(t, y)

	a.Free(x)

	// y is still allocated, so x's order-5 list entry must not have merged.
	assert.False(t, a.isFreeListEmpty(a.orderMin))
}

func TestCoalesceFullFreeLeavesOnlyTopBlock(t *testing.T) {
	// Filling the whole heap with minimum-sized blocks and freeing every
	// one of them must coalesce all the way back up to a single top-order
	// block, mirroring scenario S5's end state.
	a := newTestAllocator(t)

	const n = 16384 / 32 // MAX_HEAP_SIZE / MIN_BLOCK_SIZE
	ptrs := make([]uintptr, 0, n)
	for i := 0; i < n; i++ {
		p := a.Allocate(8)
		require.NotNil(t, p, "allocation %d", i)
		ptrs = append(ptrs, uintptr(p))
	}

	for _, p := range ptrs {
		a.Free(unsafePointer(p))
	}

	topOrder := a.orderMax - 1
	for order := a.orderMin; order < topOrder; order++ {
		assert.True(t, a.isFreeListEmpty(order), "order %d should have merged away", order)
	}
	assert.False(t, a.isFreeListEmpty(topOrder))
	blockAddr, found := a.findFit(topOrder)
	require.True(t, found)
	assert.Equal(t, a.heap.Start(), blockAddr)
}
