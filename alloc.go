package gcheap

import "unsafe"

// New allocates a zeroed T on the heap and returns a pointer to it. The
// object is subject to collection like any other block: it survives Collect
// only while some registered root or live payload holds its address.
func New[T any](h *Heap) (*T, error) {
	p, err := h.Alloc(sizeFor[T](1))
	if err != nil {
		return nil, err
	}
	clear(unsafe.Slice((*byte)(p), sizeFor[T](1)))
	return (*T)(p), nil
}

// NewUninitialized is New without the zeroing pass. Faster, but the memory
// holds whatever the previous occupant left, including words the collector
// will treat as pointers. Overwrite it fully before the next Collect.
func NewUninitialized[T any](h *Heap) (*T, error) {
	p, err := h.Alloc(sizeFor[T](1))
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// NewSlice allocates a zeroed slice of n elements of T backed by a single
// heap block. Returns nil if n <= 0.
func NewSlice[T any](h *Heap, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	total := sizeFor[T](n)
	p, err := h.Alloc(total)
	if err != nil {
		return nil, err
	}
	clear(unsafe.Slice((*byte)(p), total))
	return unsafe.Slice((*T)(p), n), nil
}

// sizeFor returns the byte size of n values of T, never less than one byte
// so zero-sized types still occupy a distinct block.
func sizeFor[T any](n int) int {
	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	if size == 0 {
		size = 1
	}
	return size
}

// AddressOf returns the heap address of an object previously returned by
// New or NewSlice. Storing this value in a root range or inside a live
// payload is what keeps the object alive across Collect.
func AddressOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}
