package gcheap

import "unsafe"

// header is the metadata record prefixed to every managed block. Blocks are
// measured in header-sized units; a block of size N covers its own header
// plus N-1 payload units. The mark flag is an explicit field rather than a
// bit tagged into the link, so list traversal never has to untag pointers.
// On 64-bit targets the layout packs to 16 bytes, which divides PageSize, so
// growth regions carve into whole units with no stranded tail between
// contiguous growths.
type header struct {
	size   uint32  // block length in header-sized units, including the header
	marked bool    // liveness flag; meaningful only while on the used list
	next   *header // next block on the owning circular list (free or used)
}

// HeaderSize is the size in bytes of one block header, which is also the
// allocation unit: block sizes and payload addresses are multiples of it.
const HeaderSize = unsafe.Sizeof(header{})

const wordSize = unsafe.Sizeof(uintptr(0))

func (b *header) addr() uintptr { return uintptr(unsafe.Pointer(b)) }

// end returns the first address past the block.
func (b *header) end() uintptr { return b.addr() + uintptr(b.size)*HeaderSize }

// payload returns the address handed to callers, one unit past the header.
func (b *header) payload() uintptr { return b.addr() + HeaderSize }

func alignUp(p, a uintptr) uintptr   { return (p + a - 1) &^ (a - 1) }
func alignDown(p, a uintptr) uintptr { return p &^ (a - 1) }

// insertFree puts bp back on the free list, keeping the list address-ordered
// and maximally coalesced. The list is circular with h.base as a zero-sized
// sentinel, so there is always a pair of nodes straddling bp. Afterwards the
// next-fit cursor points at bp's predecessor, so the next search resumes near
// the most recent insertion.
func (h *Heap) insertFree(bp *header) {
	bp.marked = false

	// Find the free block right before bp in address order. The second
	// condition handles the wrap-around pair holding the highest and lowest
	// addresses on the list.
	p := h.freep
	for !(bp.addr() > p.addr() && bp.addr() < p.next.addr()) {
		if p.addr() >= p.next.addr() && (bp.addr() > p.addr() || bp.addr() < p.next.addr()) {
			break
		}
		p = p.next
	}

	// Forward coalescence: bp ends exactly where its successor begins.
	if bp.end() == p.next.addr() && p.next != &h.base {
		bp.size += p.next.size
		bp.next = p.next.next
	} else {
		bp.next = p.next
	}

	// Backward coalescence: the predecessor ends exactly where bp begins.
	if p.end() == bp.addr() && p != &h.base {
		p.size += bp.size
		p.next = bp.next
	} else {
		p.next = bp
	}

	h.freep = p
}

// pushUsed links b into the circular used list. The list is unordered;
// membership is all that matters.
func (h *Heap) pushUsed(b *header) {
	b.marked = false
	if h.used == nil {
		b.next = b
		h.used = b
		return
	}
	b.next = h.used.next
	h.used.next = b
}

// countUsed returns the number of blocks on the used list.
func (h *Heap) countUsed() int {
	if h.used == nil {
		return 0
	}
	n := 0
	for b := h.used; ; {
		n++
		b = b.next
		if b == h.used {
			break
		}
	}
	return n
}
