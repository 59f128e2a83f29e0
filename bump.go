package memalloc

import (
	"fmt"
	"unsafe"
)

// DefaultStaticAlign is the alignment used by NewBumpAllocator's simplest
// callers; BUDDY_MIN_BLOCK_SIZE-style domains will usually want a wider one.
const DefaultStaticAlign = 8

// BumpAllocator hands out monotonically increasing offsets from a
// caller-supplied arena. It never frees; it's meant for bring-up code and
// single-shot arena carving.
type BumpAllocator struct {
	arena      []byte
	arenaStart unsafe.Pointer

	next  unsafe.Pointer
	end   unsafe.Pointer
	align uintptr
}

// NewBumpAllocator creates a bump allocator over region using alignment
// align, which must be one of 1, 2, 4, 8, 16, 32. region itself must
// already be aligned to align.
func NewBumpAllocator(region []byte, align int) (*BumpAllocator, error) {
	switch align {
	case 1, 2, 4, 8, 16, 32:
	default:
		return nil, fmt.Errorf("memalloc: align must be one of 1,2,4,8,16,32, got %d", align)
	}
	if len(region) == 0 {
		return &BumpAllocator{align: uintptr(align)}, nil
	}

	start := unsafe.Pointer(&region[0])
	if uintptr(start)%uintptr(align) != 0 {
		return nil, fmt.Errorf("memalloc: region start is not aligned to %d", align)
	}

	return &BumpAllocator{
		arena:      region,
		arenaStart: start,
		next:       start,
		end:        unsafe.Add(start, len(region)),
		align:      uintptr(align),
	}, nil
}

// Alloc returns a zero-copy pointer to the next size bytes of the arena,
// advancing the bump pointer and rounding it up to the configured
// alignment. Returns nil if size is 0 or the arena is exhausted.
func (a *BumpAllocator) Alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}

	cur := uintptr(a.next)
	newNext := roundUp(cur+uintptr(size), a.align)
	if newNext > uintptr(a.end) {
		return nil
	}

	ptr := a.next
	a.next = unsafe.Pointer(newNext)
	return ptr
}

// Available returns the number of bytes still reachable by further Allocs,
// ignoring the rounding an individual Alloc call would impose.
func (a *BumpAllocator) Available() int {
	return int(uintptr(a.end) - uintptr(a.next))
}

func roundUp(n, align uintptr) uintptr {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}
