package memalloc

import (
	"fmt"
	"unsafe"
)

// SlabAllocator partitions a caller-supplied arena into equal-sized cells
// and hands them out from a singly-linked LIFO free list threaded through
// the cells themselves: a free cell's first machine word holds the address
// of the next free cell, 0 terminating the chain.
type SlabAllocator struct {
	arena      []byte
	arenaStart unsafe.Pointer

	allocSize uintptr
	usedSize  uintptr
	freeHead  unsafe.Pointer
}

// NewSlabAllocator creates a slab allocator over region with fixed cell
// size allocSize. allocSize must be at least the size of a pointer, and
// region must be large enough for at least one cell.
func NewSlabAllocator(region []byte, allocSize int) (*SlabAllocator, error) {
	const wordSize = unsafe.Sizeof(uintptr(0))
	if allocSize < int(wordSize) {
		return nil, fmt.Errorf("memalloc: allocSize (%d) must be >= pointer size (%d)", allocSize, wordSize)
	}
	if len(region) < allocSize {
		return nil, fmt.Errorf("memalloc: region size (%d) must be >= allocSize (%d)", len(region), allocSize)
	}

	start := unsafe.Pointer(&region[0])
	cellCount := len(region) / allocSize
	usedSize := cellCount * allocSize

	for i := 0; i < cellCount; i++ {
		cell := unsafe.Add(start, i*allocSize)
		nextPtr := (*unsafe.Pointer)(cell)
		if i+1 == cellCount {
			*nextPtr = nil
		} else {
			*nextPtr = unsafe.Add(cell, allocSize)
		}
	}

	return &SlabAllocator{
		arena:      region,
		arenaStart: start,
		allocSize:  uintptr(allocSize),
		usedSize:   uintptr(usedSize),
		freeHead:   start,
	}, nil
}

// Alloc pops and returns the first free cell, or nil if the slab is full.
func (a *SlabAllocator) Alloc() unsafe.Pointer {
	if a.freeHead == nil {
		return nil
	}
	cell := a.freeHead
	a.freeHead = *(*unsafe.Pointer)(cell)
	return cell
}

// Free returns ptr, a cell previously returned by Alloc, to the free list.
// Freeing nil is a no-op. Freeing a pointer this slab never handed out is
// not detected.
func (a *SlabAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	*(*unsafe.Pointer)(ptr) = a.freeHead
	a.freeHead = ptr
}

// Cap returns the number of cells this slab can hold.
func (a *SlabAllocator) Cap() int {
	return int(a.usedSize / a.allocSize)
}
