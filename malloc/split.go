package malloc

// split repeatedly halves blockAddr (currently of order bOrder) down to
// rOrder, inserting each right half onto its own order's free list. The
// left half keeps being split further; after the loop blockAddr has
// effective order rOrder and is NOT placed on any list, the caller marks
// it allocated. Spec.md §4.4.
func (a *Allocator) split(blockAddr uintptr, bOrder, rOrder int) {
	for k := bOrder; k > rOrder; k-- {
		half := uintptr(orderToBlockSize(k - 1))
		right := blockAddr + half

		setHeaderAt(right, makeHeader(false, false, k-1, 0))
		a.insertFree(k-1, right)
	}
}
