package gcheap

import "fmt"

// CheckInvariants enables structural verification of the block lists at the
// entry and exit of Alloc and Collect. A violated invariant means the heap
// metadata has been overwritten (a wild store through a stale payload, a
// double insertion, a broken circle) and continuing would corrupt memory,
// so violations panic instead of returning errors. Off by default; intended
// for tests and debug builds.
var CheckInvariants = false

const maxListWalk = 1 << 24 // circle-breakage guard for invariant walks

// checkFreeList verifies the free list is a well-formed circle through the
// base sentinel, address-ordered, and maximally coalesced. The sentinel sits
// at its own real address somewhere in the circle, so a sorted circular list
// has exactly one descending step — the wrap from the highest address back
// to the lowest.
func (h *Heap) checkFreeList() {
	descents := 0
	steps := 0
	p := &h.base
	for {
		if steps++; steps > maxListWalk {
			panic("gcheap: free list circle broken")
		}
		next := p.next
		if next == nil {
			panic(fmt.Sprintf("gcheap: nil link in free list at %#x", p.addr()))
		}
		if next.addr() < p.addr() {
			descents++
		}
		if p != &h.base && next != &h.base && p.end() == next.addr() {
			panic(fmt.Sprintf("gcheap: uncoalesced adjacent free blocks at %#x", next.addr()))
		}
		if p != &h.base {
			if p.marked {
				panic(fmt.Sprintf("gcheap: marked block %#x on the free list", p.addr()))
			}
			if p.size == 0 {
				panic(fmt.Sprintf("gcheap: zero-sized free block at %#x", p.addr()))
			}
		}
		p = next
		if p == &h.base {
			break
		}
	}
	if descents > 1 {
		panic(fmt.Sprintf("gcheap: free list address order violated (%d descents)", descents))
	}
}

// checkDisjoint verifies no block appears on both lists.
func (h *Heap) checkDisjoint() {
	if h.used == nil {
		return
	}
	free := make(map[uintptr]struct{})
	for p := h.base.next; p != &h.base; p = p.next {
		free[p.addr()] = struct{}{}
	}
	steps := 0
	for b := h.used; ; {
		if steps++; steps > maxListWalk {
			panic("gcheap: used list circle broken")
		}
		if _, ok := free[b.addr()]; ok {
			panic(fmt.Sprintf("gcheap: block %#x on both lists", b.addr()))
		}
		b = b.next
		if b == h.used {
			return
		}
	}
}
