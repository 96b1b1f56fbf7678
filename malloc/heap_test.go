package malloc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocatorValidation(t *testing.T) {
	tests := []struct {
		name        string
		maxHeapSize int
		opts        []Option
	}{
		{
			name:        "maxHeapSize not positive",
			maxHeapSize: 0,
		},
		{
			name:        "maxBlockSize not a power of two",
			maxHeapSize: 4096,
			opts:        []Option{WithMaxBlockSize(1000)},
		},
		{
			name:        "maxBlockSize exceeds maxHeapSize",
			maxHeapSize: 1024,
			opts:        []Option{WithMaxBlockSize(2048)},
		},
		{
			name:        "minBlockSize not a power of two",
			maxHeapSize: 4096,
			opts:        []Option{WithMinBlockSize(48)},
		},
		{
			name:        "minBlockSize cannot hold header plus two pointers",
			maxHeapSize: 4096,
			opts:        []Option{WithMinBlockSize(16)},
		},
		{
			name:        "minBlockSize exceeds maxBlockSize",
			maxHeapSize: 4096,
			opts:        []Option{WithMinBlockSize(2048), WithMaxBlockSize(1024)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAllocator(tt.maxHeapSize, tt.opts...)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewAllocatorDefaultsToPowerOfTwoMaxBlockSize(t *testing.T) {
	a, err := NewAllocator(4096)
	require.NoError(t, err)
	assert.Equal(t, uint32(4096), a.maxBlockSize)
}

// failProvider is a HeapProvider whose Extend always fails, letting
// out-of-memory be exercised directly instead of via the 512-allocation
// fill TestScenarioReallocateGrowOutOfMemory (S3) uses.
type failProvider struct {
	start, end uintptr
}

func (p *failProvider) Start() uintptr          { return p.start }
func (p *failProvider) End() uintptr            { return p.end }
func (p *failProvider) Extend() (uintptr, bool) { return 0, false }

func TestCustomHeapProviderOutOfMemoryWithoutFilling(t *testing.T) {
	p := &failProvider{start: 0x1000, end: 0x1000}
	a, err := NewAllocator(1024,
		WithHeapProvider(p),
		WithMaxBlockSize(1024),
		WithMinBlockSize(32),
	)
	require.NoError(t, err)

	q := a.Allocate(8)
	assert.Nil(t, q)
	assert.ErrorIs(t, a.LastError(), ErrOutOfMemory)
}

func TestWithDiagnosticsIsWired(t *testing.T) {
	var got string
	d := recordingDiagnostics{record: func(s string) { got = s }}

	a, err := NewAllocator(4096, WithDiagnostics(d))
	require.NoError(t, err)

	p := a.Allocate(8)
	require.NotNil(t, p)
	assert.Contains(t, got, "allocate(8)")
}

type recordingDiagnostics struct {
	record func(string)
}

func (d recordingDiagnostics) Tracef(format string, args ...any) {
	d.record(fmt.Sprintf(format, args...))
}
