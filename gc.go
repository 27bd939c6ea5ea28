package gcheap

import "unsafe"

// mark sets b's liveness flag and queues its payload for scanning. Marking
// an already-marked block is a no-op, which is what lets the worklist reach
// a fixpoint: each block's payload is scanned exactly once per collection,
// when the block is first discovered.
func (h *Heap) mark(b *header) {
	if b.marked {
		return
	}
	b.marked = true
	h.lastMarked++
	h.worklist = append(h.worklist, b)
}

// scanRegion conservatively scans the address range [lo, hi). Every properly
// aligned word is read as a candidate address; a candidate landing inside a
// used block's payload marks that block. Values that merely look like
// addresses cost over-retention at worst, never corruption.
func (h *Heap) scanRegion(lo, hi uintptr) {
	lo = alignUp(lo, wordSize)
	hi = alignDown(hi, wordSize)
	for a := lo; a < hi; a += wordSize {
		v := *(*uintptr)(unsafe.Pointer(a))
		if b := h.blockFor(v); b != nil {
			h.mark(b)
		}
	}
}

// scanHeap extends marking transitively: it drains the worklist, scanning
// each newly marked block's payload the same way roots are scanned. Blocks
// discovered along the way are appended by mark, so the loop terminates only
// when a full pass adds nothing — the fixpoint the sweeper depends on.
func (h *Heap) scanHeap() {
	for len(h.worklist) > 0 {
		b := h.worklist[len(h.worklist)-1]
		h.worklist = h.worklist[:len(h.worklist)-1]
		h.scanRegion(b.payload(), b.end())
	}
}

// Collect runs one full stop-the-world mark-and-sweep cycle: scan the
// registered root ranges, propagate marks to a fixpoint, then sweep every
// unmarked block back onto the free list. It cannot fail; its only visible
// effect is which payload addresses remain valid afterwards.
func (h *Heap) Collect() {
	h.collections++
	h.lastMarked = 0
	h.lastSwept = 0
	if h.used == nil {
		return
	}
	if CheckInvariants {
		h.checkFreeList()
		h.checkDisjoint()
	}

	h.worklist = h.worklist[:0]
	for _, r := range h.roots {
		h.scanRegion(r.lo, r.hi)
	}
	h.scanHeap()
	h.sweep()

	if CheckInvariants {
		h.checkFreeList()
	}
}

// sweep walks the used list exactly once, freeing unmarked blocks and
// clearing the mark on survivors. Each node's successor is captured before
// any relinking: once a block is back on the free list it may have been
// coalesced away, and its link field must never be read again.
func (h *Heap) sweep() {
	n := h.countUsed()
	prev := h.used
	cur := h.used.next
	for i := 0; i < n; i++ {
		next := cur.next
		if cur.marked {
			cur.marked = false
			prev = cur
		} else {
			h.lastSwept++
			if cur == prev {
				// Last block standing; the used list empties cleanly.
				h.used = nil
				h.insertFree(cur)
				return
			}
			prev.next = next
			if h.used == cur {
				h.used = prev
			}
			h.insertFree(cur)
		}
		cur = next
	}
}
