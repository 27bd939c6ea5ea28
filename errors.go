package gcheap

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory indicates the memory source could not satisfy a growth
	// request. Existing allocations and list structure are unaffected.
	ErrOutOfMemory = errors.New("gcheap: out of memory")

	// ErrBadSize indicates a non-positive allocation size.
	ErrBadSize = errors.New("gcheap: allocation size must be positive")
)
