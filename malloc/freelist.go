package malloc

import "unsafe"

// link holds the prev/next pointers of the free-block overlay (spec.md
// §3 "Free-block overlay") and of each list's sentinel. It is addressed by
// "link address", which for a real free block is blockAddr+H (the bytes
// immediately following the header) and for a sentinel is simply the
// address of the sentinel value itself. The two address spaces are
// disjoint in practice (one lives in the heap-provider-backed region, the
// other in ordinary Go-managed memory) but are navigated through the same
// uintptr-typed pointers, exactly as spec.md §9 "Sentinel-anchored
// intrusive lists" recommends: sentinels are link-only and their
// block-header bits (none exist here) are never consulted.
type link struct {
	prev uintptr
	next uintptr
}

// sentinel anchors one order's free list. An empty list has
// sentinel.next == sentinel.prev == the sentinel's own link address.
type sentinel struct {
	link
}

func getLink(addr uintptr) *link { return (*link)(unsafe.Pointer(addr)) }

func (a *Allocator) sentinelAddr(i int) uintptr {
	return uintptr(unsafe.Pointer(&a.sentinels[i]))
}

func (a *Allocator) initFreeLists() {
	for i := range a.sentinels {
		addr := a.sentinelAddr(i)
		a.sentinels[i].prev = addr
		a.sentinels[i].next = addr
	}
}

// insertFree links blockAddr at the head of order k's free list and marks
// its header as free. Spec.md §4.2 insert(i, B).
func (a *Allocator) insertFree(order int, blockAddr uintptr) {
	setHeaderAt(blockAddr, headerAt(blockAddr).withAllocated(false))

	i := order - a.orderMin
	linkAddr := blockAddr + headerSize
	lk := getLink(linkAddr)

	headAddr := a.sentinelAddr(i)
	head := getLink(headAddr)

	first := head.next
	lk.next = first
	lk.prev = headAddr
	getLink(first).prev = linkAddr
	head.next = linkAddr
}

// insertFreeTail links blockAddr at the tail of order k's free list. Used
// only by heap-extend (spec.md §4.6 allocate step 3: the newly grown
// top-order chunk is appended, not pushed to the head, so it is tried last
// by find_fit relative to blocks already on that list).
func (a *Allocator) insertFreeTail(order int, blockAddr uintptr) {
	setHeaderAt(blockAddr, headerAt(blockAddr).withAllocated(false))

	i := order - a.orderMin
	linkAddr := blockAddr + headerSize
	lk := getLink(linkAddr)

	headAddr := a.sentinelAddr(i)
	head := getLink(headAddr)

	last := head.prev
	lk.prev = last
	lk.next = headAddr
	getLink(last).next = linkAddr
	head.prev = linkAddr
}

// removeFree unlinks blockAddr from whichever free list currently holds
// it. This is a general circular-doubly-linked-list unlink, not limited to
// removing the list head: the coalescer must be able to remove a buddy
// block from anywhere in its list, not just when it happens to be first.
// Spec.md §4.2 remove(i, B); i is not needed by the unlink itself (prev/
// next fully determine it) but is accepted to keep the call sites
// self-documenting about which list is being mutated.
func (a *Allocator) removeFree(order int, blockAddr uintptr) {
	_ = order
	linkAddr := blockAddr + headerSize
	lk := getLink(linkAddr)
	getLink(lk.prev).next = lk.next
	getLink(lk.next).prev = lk.prev
}

// findFit scans free lists from order k upward and returns the first
// nonempty list's head block. Spec.md §4.2 find_fit(k).
func (a *Allocator) findFit(k int) (blockAddr uintptr, found bool) {
	for i := k - a.orderMin; i < len(a.sentinels); i++ {
		headAddr := a.sentinelAddr(i)
		head := getLink(headAddr)
		if head.next != headAddr {
			return head.next - headerSize, true
		}
	}
	return 0, false
}

// isFreeListEmpty reports whether order k's free list has no blocks. Used
// only by tests to assert invariant 4 (heap coverage) and scenario S5.
func (a *Allocator) isFreeListEmpty(order int) bool {
	i := order - a.orderMin
	addr := a.sentinelAddr(i)
	return getLink(addr).next == addr
}
