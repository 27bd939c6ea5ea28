//go:build unix

package gcheap

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MmapMemory obtains growth regions from the OS as anonymous private
// mappings. Regions are page-aligned but not contiguous with one another;
// the heap's arena list keeps scanning and ordering correct regardless.
type MmapMemory struct {
	regions [][]byte
}

// NewMmapMemory returns an empty mmap-backed memory source.
func NewMmapMemory() *MmapMemory {
	return &MmapMemory{}
}

// Grow maps n bytes of zeroed anonymous memory and returns its start address.
func (m *MmapMemory) Grow(n uintptr) (uintptr, error) {
	data, err := unix.Mmap(-1, 0, int(n),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		if err == unix.ENOMEM {
			return 0, ErrOutOfMemory
		}
		return 0, errors.Wrapf(err, "gcheap: anonymous mmap of %d bytes", n)
	}
	m.regions = append(m.regions, data)
	return uintptr(unsafe.Pointer(&data[0])), nil
}

// Close unmaps every region obtained so far. The owning heap must not be
// used afterwards.
func (m *MmapMemory) Close() error {
	var first error
	for _, r := range m.regions {
		if err := unix.Munmap(r); err != nil && first == nil {
			first = errors.Wrap(err, "gcheap: munmap")
		}
	}
	m.regions = nil
	return first
}
