package gcheap

import "unsafe"

// PageSize is the minimum growth increment. Every request to a Memory source
// is rounded up to a multiple of it.
const PageSize = 4096

// DefaultReserve is the default reservation for NewSliceMemory (1 MiB).
const DefaultReserve = 1 << 20

// Memory is the growth primitive consumed by a Heap: extend the reserved
// address space by n bytes and return the new region's start address.
// Implementations may or may not return contiguous regions; the heap tracks
// every region it receives, so both work.
type Memory interface {
	Grow(n uintptr) (uintptr, error)
}

// SliceMemory carves growth requests monotonically out of one reserved Go
// byte slice. Successive regions are contiguous, mirroring the classic
// heap-break contract, so blocks from separate growths coalesce. It is the
// default source for NewHeap and the one to use in tests: it is deterministic
// and needs no OS cooperation.
type SliceMemory struct {
	buf []byte
	off uintptr
}

// NewSliceMemory reserves a slice of the given size, rounded up to a page
// multiple. If reserve <= 0, DefaultReserve is used.
func NewSliceMemory(reserve int) *SliceMemory {
	if reserve <= 0 {
		reserve = DefaultReserve
	}
	reserve = int(alignUp(uintptr(reserve), PageSize))
	return &SliceMemory{buf: make([]byte, reserve)}
}

// Grow hands out the next n bytes of the reservation. Returns ErrOutOfMemory
// once the reservation is exhausted; the reservation is never extended.
func (m *SliceMemory) Grow(n uintptr) (uintptr, error) {
	if m.off+n > uintptr(len(m.buf)) {
		return 0, ErrOutOfMemory
	}
	start := uintptr(unsafe.Pointer(&m.buf[0])) + m.off
	m.off += n
	return start, nil
}

// Reserved returns the total reservation in bytes.
func (m *SliceMemory) Reserved() int { return len(m.buf) }

// Remaining returns the bytes not yet handed out.
func (m *SliceMemory) Remaining() int { return len(m.buf) - int(m.off) }
