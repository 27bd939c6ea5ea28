package gcheap

// FreeBytes returns the total bytes currently on the free list, headers
// included.
func (h *Heap) FreeBytes() int {
	sum := 0
	for p := h.base.next; p != &h.base; p = p.next {
		sum += int(p.size) * int(HeaderSize)
	}
	return sum
}

// UsedBytes returns the total bytes currently on the used list, headers
// included.
func (h *Heap) UsedBytes() int {
	if h.used == nil {
		return 0
	}
	sum := 0
	for b := h.used; ; {
		sum += int(b.size) * int(HeaderSize)
		b = b.next
		if b == h.used {
			break
		}
	}
	return sum
}

// Capacity returns the total bytes obtained from the memory source.
func (h *Heap) Capacity() int {
	sum := 0
	for _, a := range h.arenas {
		sum += int(a.hi - a.lo)
	}
	return sum
}

// NumArenas returns the number of distinct regions obtained from the memory
// source. Contiguous growths count as one region.
func (h *Heap) NumArenas() int { return len(h.arenas) }

// NumFree returns the number of blocks on the free list.
func (h *Heap) NumFree() int {
	n := 0
	for p := h.base.next; p != &h.base; p = p.next {
		n++
	}
	return n
}

// NumUsed returns the number of blocks on the used list.
func (h *Heap) NumUsed() int { return h.countUsed() }

// Collections returns how many times Collect has run.
func (h *Heap) Collections() uint64 { return h.collections }

// Utilization returns the ratio of used bytes to total capacity (0.0 to
// 1.0). Returns 0.0 before the first growth.
func (h *Heap) Utilization() float64 {
	capacity := h.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(h.UsedBytes()) / float64(capacity)
}

// Metrics returns a snapshot of heap statistics.
func (h *Heap) Metrics() HeapMetrics {
	return HeapMetrics{
		FreeBytes:   h.FreeBytes(),
		UsedBytes:   h.UsedBytes(),
		Capacity:    h.Capacity(),
		NumArenas:   h.NumArenas(),
		NumFree:     h.NumFree(),
		NumUsed:     h.NumUsed(),
		Collections: h.Collections(),
		LastMarked:  h.lastMarked,
		LastSwept:   h.lastSwept,
		Utilization: h.Utilization(),
	}
}

// HeapMetrics contains statistical information about a heap.
type HeapMetrics struct {
	FreeBytes   int     // Bytes on the free list, headers included
	UsedBytes   int     // Bytes on the used list, headers included
	Capacity    int     // Total bytes obtained from the memory source
	NumArenas   int     // Distinct regions obtained from the memory source
	NumFree     int     // Blocks on the free list
	NumUsed     int     // Blocks on the used list
	Collections uint64  // Completed Collect cycles
	LastMarked  int     // Blocks marked live by the most recent Collect
	LastSwept   int     // Blocks reclaimed by the most recent Collect
	Utilization float64 // Ratio of used bytes to capacity (0.0-1.0)
}

// Thread-safe metrics for SafeHeap

// FreeBytes thread-safely returns the total bytes on the free list.
func (s *SafeHeap) FreeBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.FreeBytes()
}

// UsedBytes thread-safely returns the total bytes on the used list.
func (s *SafeHeap) UsedBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.UsedBytes()
}

// Capacity thread-safely returns the total bytes obtained from the source.
func (s *SafeHeap) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Capacity()
}

// Utilization thread-safely returns the ratio of used bytes to capacity.
func (s *SafeHeap) Utilization() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Utilization()
}

// Collections thread-safely returns how many times Collect has run.
func (s *SafeHeap) Collections() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Collections()
}

// Metrics thread-safely returns a snapshot of heap statistics.
func (s *SafeHeap) Metrics() HeapMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h.Metrics()
}
