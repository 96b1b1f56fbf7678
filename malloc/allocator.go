package malloc

import "unsafe"

// place removes blockAddr from its current free list and splits it down to
// target order, per the Glossary's definition of "place". The caller is
// responsible for writing the final allocated header afterward.
func (a *Allocator) place(blockAddr uintptr, target int) {
	bOrder := headerAt(blockAddr).order()
	a.removeFree(bOrder, blockAddr)
	a.split(blockAddr, bOrder, target)
}

// Allocate returns a payload pointer to a block holding at least rsize
// bytes, or nil with LastError set on failure. Spec.md §4.6 allocate(rsize).
func (a *Allocator) Allocate(rsize uint32) unsafe.Pointer {
	if rsize == 0 || rsize > a.maxBlockSize-headerSize {
		a.lastErr = ErrInvalidArgument
		return nil
	}

	k := orderOf(rsize, a.minBlockSize)
	blockAddr, found := a.findFit(k)
	if !found {
		base, ok := a.growHeap()
		if !ok {
			a.lastErr = ErrOutOfMemory
			return nil
		}
		blockAddr = base
	}

	a.place(blockAddr, k)
	padded := isPadded(rsize, k)
	setHeaderAt(blockAddr, makeHeader(true, padded, k, rsize))
	a.lastErr = nil

	p := blockAddr + headerSize
	a.diagnostics.Tracef("malloc: allocate(%d) -> %#x order=%d padded=%v", rsize, p, k, padded)
	return unsafe.Pointer(p)
}

// Free releases a block previously returned by Allocate/Reallocate. Tolerates
// nil. Panics on a pointer this allocator could not have handed out, per
// spec.md §4.6 free(p) step 2, §4.3, §7 "Corruption / misuse".
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	addr := uintptr(p) - headerSize
	if a.isInvalidPointer(addr) {
		panic("budmm: invalid pointer passed to Free (corruption or double free)")
	}

	order := headerAt(addr).order()
	a.insertFree(order, addr)
	a.coalesce(addr)
	a.diagnostics.Tracef("malloc: free(%#x) order=%d", p, order)
}

// Reallocate resizes a block previously returned by Allocate/Reallocate.
// Spec.md §4.6 reallocate(p, rsize).
func (a *Allocator) Reallocate(p unsafe.Pointer, rsize uint32) unsafe.Pointer {
	if p == nil {
		return a.Allocate(rsize)
	}
	if rsize == 0 {
		a.Free(p)
		return nil
	}
	if rsize > a.maxBlockSize-headerSize {
		a.lastErr = ErrInvalidArgument
		return nil
	}

	addr := uintptr(p) - headerSize
	if a.isInvalidPointer(addr) {
		panic("budmm: invalid pointer passed to Reallocate (corruption or double free)")
	}

	kPrime := orderOf(rsize, a.minBlockSize)
	k := headerAt(addr).order()

	switch {
	case kPrime == k:
		padded := isPadded(rsize, k)
		setHeaderAt(addr, makeHeader(true, padded, k, rsize))
		a.lastErr = nil
		return p

	case kPrime > k:
		// The grow path copies the old block's full payload capacity
		// (2^k - H), not just the caller's originally requested size.
		// Spec.md §9 open question, preserved as-is.
		oldCapacity := uintptr(orderToBlockSize(k)) - headerSize
		q := a.Allocate(rsize)
		if q == nil {
			return nil
		}
		copyBytes(q, p, oldCapacity)
		a.Free(p)
		return q

	default: // kPrime < k
		a.split(addr, k, kPrime)
		padded := isPadded(rsize, kPrime)
		setHeaderAt(addr, makeHeader(true, padded, kPrime, rsize))
		a.lastErr = nil
		return p
	}
}

// LastError returns the most recent domain error (ErrInvalidArgument,
// ErrOutOfMemory) set by Allocate/Reallocate, or nil if the last such call
// succeeded. Corruption aborts never touch this slot, per spec.md §6
// "Error channel".
func (a *Allocator) LastError() error { return a.lastErr }

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
