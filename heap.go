package gcheap

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// span is a half-open address range [lo, hi).
type span struct {
	lo, hi uintptr
}

func (s span) contains(v uintptr) bool { return v >= s.lo && v < s.hi }

// Heap is a free-list allocator with a conservative stop-the-world
// mark-and-sweep collector. All state — the free list, the used list, the
// next-fit cursor, the arena and root tables — is owned by the Heap value,
// so independent heaps never interfere. Not goroutine-safe; use SafeHeap
// for concurrent access.
type Heap struct {
	mem Memory

	base  header  // zero-sized sentinel anchoring the circular free list
	freep *header // next-fit cursor into the free list
	used  *header // any node of the circular used list; nil when empty

	arenas []span // every region obtained from mem, in acquisition order
	roots  []span // caller-registered root ranges, scanned by Collect

	worklist []*header // marked blocks whose payloads are not yet scanned

	collections uint64
	lastMarked  int
	lastSwept   int
}

// NewHeap creates a heap drawing memory from mem. If mem is nil, a
// SliceMemory with the default reservation is used. The heap owns no memory
// until the first allocation forces growth.
func NewHeap(mem Memory) *Heap {
	if mem == nil {
		mem = NewSliceMemory(DefaultReserve)
	}
	h := &Heap{mem: mem}
	h.base.next = &h.base
	h.freep = &h.base
	return h
}

// AddRoots registers the word-aligned address range [lo, hi) as part of the
// root set. Every word in a root range is treated as a candidate pointer by
// Collect. Register the static regions your program stores heap references
// in; a pinned stack segment's bounds can be registered the same way.
func (h *Heap) AddRoots(lo, hi uintptr) {
	if hi <= lo {
		return
	}
	h.roots = append(h.roots, span{lo: lo, hi: hi})
}

// AddRootWords registers the backing store of words as a root range. The
// caller must keep the slice reachable for as long as the heap is in use;
// the heap does not retain the slice itself, only its address range.
func (h *Heap) AddRootWords(words []uintptr) {
	if len(words) == 0 {
		return
	}
	lo := uintptr(unsafe.Pointer(&words[0]))
	h.AddRoots(lo, lo+uintptr(len(words))*wordSize)
}

// ClearRoots drops all registered root ranges.
func (h *Heap) ClearRoots() {
	h.roots = h.roots[:0]
}

// grow obtains at least n more bytes from the memory source, rounded up to a
// whole number of pages, and folds the new region into the free list as one
// block. It does not retry: a refusal from the source propagates to the
// allocation that triggered it.
func (h *Heap) grow(n uintptr) error {
	if n < PageSize {
		n = PageSize
	}
	n = alignUp(n, PageSize)
	if n/HeaderSize > math.MaxUint32 {
		// The region could not be described by a single block's size field.
		return ErrOutOfMemory
	}

	start, err := h.mem.Grow(n)
	if err != nil {
		return errors.Wrapf(err, "gcheap: growing heap by %d bytes", n)
	}
	end := start + n
	h.addArena(start, end)

	// Headers need word alignment; page-aligned sources make this a no-op.
	a := alignUp(start, wordSize)
	b := (*header)(unsafe.Pointer(a))
	b.size = uint32((end - a) / HeaderSize)
	b.marked = false
	h.insertFree(b)
	return nil
}

// addArena records a freshly obtained region, extending the previous entry
// when the source grows contiguously.
func (h *Heap) addArena(lo, hi uintptr) {
	if n := len(h.arenas); n > 0 && h.arenas[n-1].hi == lo {
		h.arenas[n-1].hi = hi
		return
	}
	h.arenas = append(h.arenas, span{lo: lo, hi: hi})
}

// inArena reports whether v falls inside any region obtained from the
// memory source. Used to reject candidate pointers cheaply before walking
// the used list.
func (h *Heap) inArena(v uintptr) bool {
	for _, a := range h.arenas {
		if a.contains(v) {
			return true
		}
	}
	return false
}

// Alloc returns the address of a payload usable for at least size bytes, or
// ErrOutOfMemory if the memory source cannot cover a required growth. The
// payload contents are undefined; see AllocBytes or New for zeroed memory.
//
// The search is next-fit: it resumes from the cursor left by the previous
// allocation, takes the first free block large enough, and splits off the
// tail of an oversized block so the remainder keeps its place on the free
// list. One full circuit without a fit triggers growth and a single retry.
func (h *Heap) Alloc(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	if CheckInvariants {
		h.checkFreeList()
	}

	// One unit on top of the rounded payload pays for the header. Block
	// sizes are stored in 32 bits of units; a request whose unit count does
	// not fit is beyond any block this heap can represent, so it fails the
	// same way an unsatisfiable growth does, before any list surgery.
	wide := (uintptr(size)+HeaderSize-1)/HeaderSize + 1
	if wide > math.MaxUint32 {
		return nil, ErrOutOfMemory
	}
	units := uint32(wide)

	grown := false
	prev := h.freep
	p := prev.next
	for {
		if p.size >= units {
			if p.size == units {
				// Exact fit: unlink the whole block.
				prev.next = p.next
			} else {
				// Split: the free block keeps the head and its list
				// position; the tail becomes the allocation, so the
				// predecessor's link never needs rewriting.
				p.size -= units
				p = (*header)(unsafe.Pointer(p.addr() + uintptr(p.size)*HeaderSize))
				p.size = units
			}
			h.freep = prev
			h.pushUsed(p)
			return unsafe.Pointer(p.payload()), nil
		}

		if p == h.freep {
			// Full circuit without a fit.
			if grown {
				return nil, ErrOutOfMemory
			}
			if err := h.grow(uintptr(units) * HeaderSize); err != nil {
				return nil, err
			}
			grown = true
			prev = h.freep
			p = prev.next
			continue
		}

		prev, p = p, p.next
	}
}

// AllocBytes allocates size bytes and returns them as a zeroed slice backed
// by the heap. Zeroing matters here: recycled payloads still hold their old
// contents, and a stale word that looks like a pointer would conservatively
// retain a dead block.
func (h *Heap) AllocBytes(size int) ([]byte, error) {
	p, err := h.Alloc(size)
	if err != nil {
		return nil, err
	}
	b := unsafe.Slice((*byte)(p), size)
	clear(b)
	return b, nil
}

// blockFor returns the used block whose payload contains v, or nil. This is
// the single address-range query shared by root and heap scanning.
func (h *Heap) blockFor(v uintptr) *header {
	if h.used == nil || !h.inArena(v) {
		return nil
	}
	b := h.used
	for {
		if v >= b.payload() && v < b.end() {
			return b
		}
		b = b.next
		if b == h.used {
			return nil
		}
	}
}
