package malloc

// isBuddyOf reports whether candidate is both in the managed heap region
// and the true XOR buddy of blockAddr at the given size. Spec.md §4.5
// "Buddy address test": (A - heap_start) XOR 2^k == (B - heap_start).
//
// This check is applied to BOTH the right and left candidates, matching
// original_source/src/budmm.c's valid_buddy_block (called symmetrically
// for both directions) rather than spec.md §4.5's pseudocode, which omits
// the XOR check on the right-hand candidate. Omitting it would let
// coalesce merge a just-freed block with an unrelated, coincidentally
// same-order free neighbor whenever the freed block is itself the *right*
// half of its true parent, corrupting alignment invariant 5. See
// DESIGN.md.
func (a *Allocator) isBuddyOf(blockAddr, candidate uintptr, size uintptr) bool {
	start, end := a.heap.Start(), a.heap.End()
	if candidate < start || candidate >= end {
		return false
	}
	return (blockAddr-start)^size == candidate-start
}

// coalesce walks upward from a just-freed block, merging with its buddy
// while the buddy is free and of equal order, per spec.md §4.5.
func (a *Allocator) coalesce(addr uintptr) {
	for {
		order := headerAt(addr).order()
		if order >= a.orderMax-1 {
			return
		}
		size := uintptr(orderToBlockSize(order))

		right := addr + size
		if a.isBuddyOf(addr, right, size) {
			rh := headerAt(right)
			if rh.order() == order {
				if rh.allocated() {
					return
				}
				a.removeFree(order, addr)
				a.removeFree(order, right)
				setHeaderAt(addr, headerAt(addr).withOrder(order+1))
				a.insertFree(order+1, addr)
				continue
			}
		}

		left := addr - size
		if a.isBuddyOf(addr, left, size) {
			lh := headerAt(left)
			if lh.order() == order {
				if lh.allocated() {
					return
				}
				a.removeFree(order, addr)
				a.removeFree(order, left)
				setHeaderAt(left, headerAt(left).withOrder(order+1))
				a.insertFree(order+1, left)
				addr = left
				continue
			}
		}

		return
	}
}
