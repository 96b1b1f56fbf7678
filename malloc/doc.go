// Package malloc implements a binary buddy memory allocator over a fixed,
// contiguous virtual heap region supplied by a HeapProvider.
//
// Blocks are power-of-two sized and tracked per order on sentinel-anchored
// intrusive free lists. Each allocated block carries an 8-byte in-band
// header encoding its allocation state, order and requested size; the
// header is validated on every Free/Reallocate call and a failed
// validation aborts the process via panic, since corrupt in-band metadata
// cannot be recovered from safely.
//
// The allocator is single-threaded and holds no internal locks: callers
// must serialize access themselves if shared across goroutines.
package malloc
