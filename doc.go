// Package gcheap implements a free-list allocator with a conservative,
// stop-the-world mark-and-sweep garbage collector over memory obtained from
// a pluggable source in page-sized increments.
//
// # Overview
//
// The heap manages raw blocks of memory with no compiler or runtime
// cooperation: no type information, no precise root tracking. Allocation is
// next-fit over an address-ordered circular free list; collection
// conservatively scans caller-registered root ranges and live payloads for
// anything that looks like a payload address, then sweeps every unreached
// block back onto the free list, coalescing address-adjacent neighbors.
// This is useful for:
//
//   - Embedding a managed sub-heap inside a larger system (interpreters,
//     plugin sandboxes, long-lived caches with reachability semantics)
//   - Studying classic malloc/GC internals with deterministic behavior
//   - Bounding a workload's memory under an explicit reservation
//
// # Basic Usage
//
//	h := gcheap.NewHeap(nil) // 1 MiB slice-backed reservation
//
//	roots := make([]uintptr, 8)
//	h.AddRootWords(roots)
//
//	node, _ := gcheap.New[Node](h)
//	roots[0] = gcheap.AddressOf(node) // reachable: survives Collect
//
//	h.Collect()   // node kept
//	roots[0] = 0
//	h.Collect()   // node reclaimed, space reusable
//
// # Memory Sources
//
// A Heap draws memory through the Memory interface, one Grow call at a
// time. SliceMemory carves contiguous regions out of a single reserved Go
// slice (deterministic, ideal for tests); MmapMemory (Unix) obtains
// anonymous mappings from the OS. Regions need not be contiguous: the heap
// tracks every region it receives and bounds all scanning to them.
//
// # Root Set
//
// The collector traces from ranges registered with AddRoots or
// AddRootWords. Anything reachable from a root through chains of payload
// words survives; everything else is reclaimed by the next Collect. A local
// variable alone does not keep an object alive — publish its address into a
// registered range. Stack segments can be covered by registering their
// bounds like any other range.
//
// # Thread Safety
//
// Heap is single-owner: Alloc and Collect run to completion and must not
// overlap. For concurrent access use SafeHeap, which serializes all entry
// points behind one mutex, or give each goroutine its own Heap.
//
// # Conservatism
//
// Scanning has no type information, so any word whose value falls inside a
// live payload retains that block. False retention is possible; premature
// reclamation of reachable blocks is not. Prefer AllocBytes/New over raw
// Alloc so recycled memory starts zeroed and stale words cannot pin dead
// blocks.
package gcheap
