// Package heapprovider implements the concrete HeapProvider backends
// consumed by malloc.Allocator: a plain preallocated []byte and, on unix, an
// mmap/mprotect-backed region.
package heapprovider

import "unsafe"

// Slice is a HeapProvider backed by a single preallocated []byte, committed
// incrementally by raising a high-water mark blockSize bytes per Extend().
// Generalizes the teacher BuddyAllocator's arena []byte / arenaStart
// unsafe.Pointer fields, which commit the whole arena up front; Slice adds
// the incremental commit step the heap-growth protocol requires.
type Slice struct {
	buf       []byte
	base      uintptr
	blockSize uintptr
	committed uintptr
}

// NewSlice allocates a capacity-byte arena and returns a provider that
// grows it blockSize bytes at a time, up to capacity.
func NewSlice(capacity int, blockSize uint32) *Slice {
	buf := make([]byte, capacity)
	return &Slice{
		buf:       buf,
		base:      uintptr(unsafe.Pointer(&buf[0])),
		blockSize: uintptr(blockSize),
	}
}

func (s *Slice) Start() uintptr { return s.base }
func (s *Slice) End() uintptr   { return s.base + s.committed }

// Extend commits one more blockSize-sized chunk, or fails if doing so would
// exceed the arena's capacity.
func (s *Slice) Extend() (base uintptr, ok bool) {
	if s.committed+s.blockSize > uintptr(len(s.buf)) {
		return 0, false
	}
	base = s.base + s.committed
	s.committed += s.blockSize
	return base, true
}
