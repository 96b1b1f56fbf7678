package malloc

import (
	"fmt"
	"log"
	"math/bits"

	"github.com/cloudwego/budmm/internal/heapprovider"
)

// HeapProvider supplies the base/end of the allocator's managed region and
// extends it one MaxBlockSize chunk at a time. Spec.md §4.7 / §6 "Heap
// provider (consumed)".
type HeapProvider interface {
	Start() uintptr
	End() uintptr
	Extend() (base uintptr, ok bool)
}

// Diagnostics is an optional trace sink; Allocator never requires one.
type Diagnostics interface {
	Tracef(format string, args ...any)
}

type noopDiagnostics struct{}

func (noopDiagnostics) Tracef(string, ...any) {}

// LogDiagnostics is a Diagnostics backed by the standard library logger,
// matching the teacher's bare log.Printf diagnostics (gopool.go). Pass a
// *log.Logger of your own (e.g. with a prefix or custom output), or use
// NewLogDiagnostics for a sensible default.
type LogDiagnostics struct {
	Logger *log.Logger
}

// NewLogDiagnostics returns a LogDiagnostics writing through log.Default().
func NewLogDiagnostics() LogDiagnostics {
	return LogDiagnostics{Logger: log.Default()}
}

func (d LogDiagnostics) Tracef(format string, args ...any) {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf(format, args...)
}

// Allocator is a single binary buddy allocator instance over one
// HeapProvider-managed region. It holds no package-level state: free-list
// sentinels, heap extent, and the last-error slot all live on the value, per
// spec.md §9 "Global mutable state". Not safe for concurrent use; spec.md
// §5 mandates external serialization.
type Allocator struct {
	orderMin     int
	orderMax     int // one-past-the-end, as in spec.md: highest order is orderMax-1
	minBlockSize uint32
	maxBlockSize uint32

	heap      HeapProvider
	sentinels []sentinel

	lastErr     error
	diagnostics Diagnostics
}

type config struct {
	heapProvider HeapProvider
	diagnostics  Diagnostics
	minBlockSize uint32
	maxBlockSize uint32
}

// Option configures a Allocator at construction time.
type Option func(*config)

// WithHeapProvider swaps in an alternate HeapProvider, such as the mmap
// provider or a test double. When set, WithMaxBlockSize must also be given
// (the default provider, internal/heapprovider.Slice, is sized from
// maxHeapSize/maxBlockSize automatically; a caller-supplied provider has no
// such hook).
func WithHeapProvider(p HeapProvider) Option {
	return func(c *config) { c.heapProvider = p }
}

// WithDiagnostics wires a trace sink. Defaults to a no-op.
func WithDiagnostics(d Diagnostics) Option {
	return func(c *config) { c.diagnostics = d }
}

// WithMinBlockSize overrides the smallest block size the allocator will
// ever hand out. Must be a power of two large enough to hold the header
// plus two free-list pointers (3*H, rounded up). Defaults to that minimum.
func WithMinBlockSize(n uint32) Option {
	return func(c *config) { c.minBlockSize = n }
}

// WithMaxBlockSize overrides MAX_BLOCK_SIZE (spec.md §3), the size of one
// heap_extend() chunk and the largest single allocation. Must be a power of
// two no larger than maxHeapSize. Defaults to the largest power of two <=
// maxHeapSize, so a caller who passes a power-of-two maxHeapSize gets a
// heap that is exactly one max-order block (as in spec.md §8's scenarios).
func WithMaxBlockSize(n uint32) Option {
	return func(c *config) { c.maxBlockSize = n }
}

// NewAllocator builds an Allocator whose heap provider can grow to at most
// maxHeapSize bytes, MAX_BLOCK_SIZE bytes at a time (spec.md §3, §4.7).
func NewAllocator(maxHeapSize int, opts ...Option) (*Allocator, error) {
	if maxHeapSize <= 0 {
		return nil, fmt.Errorf("%w: maxHeapSize must be positive, got %d", ErrInvalidArgument, maxHeapSize)
	}

	cfg := config{
		minBlockSize: nextPow2(3 * headerSize),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxBlockSize == 0 {
		cfg.maxBlockSize = prevPow2(uint32(maxHeapSize))
	}
	if cfg.maxBlockSize == 0 || cfg.maxBlockSize&(cfg.maxBlockSize-1) != 0 {
		return nil, fmt.Errorf("%w: maxBlockSize %d is not a power of two", ErrInvalidArgument, cfg.maxBlockSize)
	}
	if uint64(cfg.maxBlockSize) > uint64(maxHeapSize) {
		return nil, fmt.Errorf("%w: maxBlockSize %d exceeds maxHeapSize %d", ErrInvalidArgument, cfg.maxBlockSize, maxHeapSize)
	}
	if cfg.minBlockSize == 0 || cfg.minBlockSize&(cfg.minBlockSize-1) != 0 {
		return nil, fmt.Errorf("%w: minBlockSize %d is not a power of two", ErrInvalidArgument, cfg.minBlockSize)
	}
	if cfg.minBlockSize < 3*headerSize {
		return nil, fmt.Errorf("%w: minBlockSize %d cannot hold header plus two pointers", ErrInvalidArgument, cfg.minBlockSize)
	}
	if cfg.minBlockSize > cfg.maxBlockSize {
		return nil, fmt.Errorf("%w: minBlockSize %d exceeds maxBlockSize %d", ErrInvalidArgument, cfg.minBlockSize, cfg.maxBlockSize)
	}

	if cfg.heapProvider == nil {
		cfg.heapProvider = heapprovider.NewSlice(maxHeapSize, cfg.maxBlockSize)
	}
	if cfg.diagnostics == nil {
		cfg.diagnostics = noopDiagnostics{}
	}

	orderMin := bits.TrailingZeros32(cfg.minBlockSize)
	orderMax := bits.TrailingZeros32(cfg.maxBlockSize) + 1

	a := &Allocator{
		orderMin:     orderMin,
		orderMax:     orderMax,
		minBlockSize: cfg.minBlockSize,
		maxBlockSize: cfg.maxBlockSize,
		heap:         cfg.heapProvider,
		sentinels:    make([]sentinel, orderMax-orderMin),
		diagnostics:  cfg.diagnostics,
	}
	a.initFreeLists()
	return a, nil
}

// growHeap requests one MaxBlockSize chunk from the heap provider and seeds
// it onto the top-order free list as a single free block. Spec.md §4.7 and
// §4.6 allocate() step 3 ("insert at list tail of top free list").
func (a *Allocator) growHeap() (blockAddr uintptr, ok bool) {
	base, ok := a.heap.Extend()
	if !ok {
		return 0, false
	}
	topOrder := a.orderMax - 1
	setHeaderAt(base, makeHeader(false, false, topOrder, 0))
	a.insertFreeTail(topOrder, base)
	a.diagnostics.Tracef("malloc: heap extended by %d bytes at %#x", a.maxBlockSize, base)
	return base, true
}

// Available returns the number of bytes in the managed region that have
// been committed by the heap provider so far (heap_end - heap_start).
func (a *Allocator) Available() int {
	return int(a.heap.End() - a.heap.Start())
}

// Stats reports, for every order currently tracked, the number of free
// blocks on that order's list. Generalizes the teacher's Available() helper
// into a per-order breakdown useful for tests.
func (a *Allocator) Stats() map[int]int {
	out := make(map[int]int, len(a.sentinels))
	for i := range a.sentinels {
		order := i + a.orderMin
		count := 0
		headAddr := a.sentinelAddr(i)
		for cur := getLink(headAddr).next; cur != headAddr; cur = getLink(cur).next {
			count++
		}
		out[order] = count
	}
	return out
}
