//go:build unix

package heapprovider

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap is a HeapProvider backed by a single PROT_NONE anonymous mapping,
// reserved once for capacity bytes and committed blockSize bytes at a time
// via mprotect. Grounded on alewtschuk-balloc's
// unix.Mmap(-1, 0, size, PROT_READ|PROT_WRITE, MAP_PRIVATE|MAP_ANONYMOUS)
// buddy-pool setup and on the build-tagged golang.org/x/sys/unix usage in
// SeleniaProject-Orizon's asyncio package.
type Mmap struct {
	data      []byte
	base      uintptr
	blockSize uintptr
	capacity  uintptr
	committed uintptr
}

// NewMmap reserves capacity bytes of address space with no access rights
// and returns a provider that grants blockSize bytes of read/write access
// per Extend() call.
func NewMmap(capacity int, blockSize uint32) (*Mmap, error) {
	data, err := unix.Mmap(-1, 0, capacity, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return &Mmap{
		data:      data,
		base:      uintptr(unsafe.Pointer(&data[0])),
		blockSize: uintptr(blockSize),
		capacity:  uintptr(capacity),
	}, nil
}

func (m *Mmap) Start() uintptr { return m.base }
func (m *Mmap) End() uintptr   { return m.base + m.committed }

// Extend grants PROT_READ|PROT_WRITE on the next blockSize-byte window of
// the reservation, or fails if the reservation's capacity is exhausted or
// mprotect itself fails.
func (m *Mmap) Extend() (base uintptr, ok bool) {
	if m.committed+m.blockSize > m.capacity {
		return 0, false
	}
	window := m.data[m.committed : m.committed+m.blockSize]
	if err := unix.Mprotect(window, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return 0, false
	}
	base = m.base + m.committed
	m.committed += m.blockSize
	return base, true
}

// Close unmaps the entire reservation. Not part of HeapProvider; callers
// that built an Mmap directly are responsible for invoking it.
func (m *Mmap) Close() error {
	return unix.Munmap(m.data)
}
