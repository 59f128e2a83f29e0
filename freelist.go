package memalloc

import (
	"fmt"
	"unsafe"

	"github.com/cloudwego/memalloc/internal/list"
)

// DefaultFreeListMinAllocSize is the smallest payload a FreeListAllocator
// will ever carve off; smaller requests are rounded up to it.
const DefaultFreeListMinAllocSize = 64

// tag is the inline chunk header the free-list allocator threads through
// the arena: it sits immediately before its own payload, and tags form a
// single address-ordered, gap-free chain from heap.start to heap.end.
type tag struct {
	node  list.Node
	used  bool
	start uintptr
	size  uintptr
}

var tagNodeOffset = unsafe.Offsetof(tag{}.node)

func tagOf(n *list.Node) *tag {
	return list.ContainerOf[tag](n, tagNodeOffset)
}

// FreeListAllocator is a doubly-linked, variable-size chunk allocator: it
// walks an address-ordered tag chain first-fit on Alloc, optionally
// carving the tail of the chosen chunk into a new free tag, and never
// coalesces adjacent free chunks back together on Free.
type FreeListAllocator struct {
	arena      []byte
	arenaStart unsafe.Pointer
	start, end uintptr

	tags list.List
}

// NewFreeListAllocator creates a free-list allocator over region. region
// must be at least the size of one tag and aligned for one.
func NewFreeListAllocator(region []byte) (*FreeListAllocator, error) {
	tagSize := unsafe.Sizeof(tag{})
	tagAlign := unsafe.Alignof(tag{})

	if uintptr(len(region)) < tagSize {
		return nil, fmt.Errorf("memalloc: region size (%d) is too small, need at least %d", len(region), tagSize)
	}

	start := unsafe.Pointer(&region[0])
	if uintptr(start)%tagAlign != 0 {
		return nil, fmt.Errorf("memalloc: region start has bad alignment for a tag (need %d)", tagAlign)
	}

	a := &FreeListAllocator{
		arena:      region,
		arenaStart: start,
		start:      uintptr(start),
		end:        uintptr(start) + uintptr(len(region)),
	}
	a.tags.Init()

	first := (*tag)(start)
	*first = tag{}
	first.used = false
	first.start = a.start + tagSize
	first.size = a.end - first.start
	a.tags.Append(&first.node)

	return a, nil
}

// Alloc finds the first unused tag whose payload is large enough
// (first-fit), optionally splitting off the unused tail into a new free
// tag, and returns a pointer to the chosen chunk's payload. Requests
// smaller than DefaultFreeListMinAllocSize are rounded up to it. Returns
// nil if no chunk is large enough.
func (a *FreeListAllocator) Alloc(size int) unsafe.Pointer {
	if size < DefaultFreeListMinAllocSize {
		size = DefaultFreeListMinAllocSize
	}
	want := uintptr(size)

	var found *tag
	for n := a.tags.First(); n != nil; n = n.Next() {
		t := tagOf(n)
		if t.used || t.size < want {
			continue
		}
		found = t
		break
	}
	if found == nil {
		return nil
	}

	tagSize := unsafe.Sizeof(tag{})
	extra := found.size - want
	if extra > tagSize+DefaultFreeListMinAllocSize {
		newTagAddr := found.start + want
		newTag := (*tag)(unsafe.Pointer(newTagAddr))
		*newTag = tag{}
		newTag.used = false
		newTag.start = newTagAddr + tagSize
		newTag.size = found.size - want - tagSize

		found.size = want

		a.tags.InsertAfter(&found.node, &newTag.node)
	}

	found.used = true
	return unsafe.Pointer(found.start)
}

// Free returns the chunk whose payload starts at ptr to the allocator.
// Freeing nil is a no-op. Freed chunks are never coalesced with their
// neighbors. Panics if ptr was not produced by this allocator's Alloc.
func (a *FreeListAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	want := uintptr(ptr)

	for n := a.tags.First(); n != nil; n = n.Next() {
		t := tagOf(n)
		if t.start == want {
			t.used = false
			return
		}
	}
	panic(fmt.Sprintf("memalloc: free: no chunk starts at %#x", want))
}

// CheckInvariants walks the tag chain and returns an error describing the
// first invariant violation it finds, or nil if the chain is consistent:
// every tag's payload bounds fall inside the managed region, and adjacent
// tags are contiguous (no gaps, no overlaps).
func (a *FreeListAllocator) CheckInvariants() error {
	var prev *tag
	idx := 0
	for n := a.tags.First(); n != nil; n = n.Next() {
		t := tagOf(n)
		if t.start < a.start || t.start+t.size > a.end {
			return fmt.Errorf("memalloc: tag #%d out of bounds: start=%#x size=%d", idx, t.start, t.size)
		}
		if prev != nil {
			wantAddr := prev.start + prev.size
			gotAddr := uintptr(unsafe.Pointer(t))
			if gotAddr != wantAddr {
				return fmt.Errorf("memalloc: tag #%d is not contiguous with its predecessor: want %#x, got %#x", idx, wantAddr, gotAddr)
			}
		} else if uintptr(unsafe.Pointer(t)) != a.start {
			return fmt.Errorf("memalloc: first tag is not at region start")
		}
		prev = t
		idx++
	}
	return nil
}
