package gcheap

import (
	"sync"
	"unsafe"
)

// SafeHeap is a mutex-protected wrapper around Heap for concurrent access.
// Allocation and collection are stop-the-world operations over shared list
// state, so every entry point serializes behind one lock.
type SafeHeap struct {
	mu sync.Mutex
	h  *Heap
}

// NewSafeHeap creates a thread-safe heap drawing memory from mem. If mem is
// nil, a SliceMemory with the default reservation is used.
func NewSafeHeap(mem Memory) *SafeHeap {
	return &SafeHeap{h: NewHeap(mem)}
}

// Alloc thread-safely allocates size bytes and returns the payload address.
func (s *SafeHeap) Alloc(size int) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Alloc(size)
}

// AllocBytes thread-safely allocates size bytes as a zeroed slice.
func (s *SafeHeap) AllocBytes(size int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.AllocBytes(size)
}

// Collect thread-safely runs one full mark-and-sweep cycle.
func (s *SafeHeap) Collect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Collect()
}

// AddRoots thread-safely registers the address range [lo, hi) as roots.
func (s *SafeHeap) AddRoots(lo, hi uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.AddRoots(lo, hi)
}

// AddRootWords thread-safely registers the backing store of words as roots.
func (s *SafeHeap) AddRootWords(words []uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.AddRootWords(words)
}

// ClearRoots thread-safely drops all registered root ranges.
func (s *SafeHeap) ClearRoots() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.ClearRoots()
}

// Generic allocation functions for SafeHeap

// SafeNew thread-safely allocates a zeroed T on the heap.
func SafeNew[T any](s *SafeHeap) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return New[T](s.h)
}

// SafeNewSlice thread-safely allocates a zeroed slice of n elements of T.
func SafeNewSlice[T any](s *SafeHeap, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NewSlice[T](s.h, n)
}
