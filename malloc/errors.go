package malloc

import "errors"

var (
	// ErrInvalidArgument is the last-error value set when Allocate or
	// Reallocate is called with a requested size of 0 or larger than
	// MaxBlockSize-H.
	ErrInvalidArgument = errors.New("malloc: invalid argument")

	// ErrOutOfMemory is the last-error value set when no free block of a
	// sufficient order exists and the heap provider refuses to extend
	// the managed region any further.
	ErrOutOfMemory = errors.New("malloc: out of memory")
)
