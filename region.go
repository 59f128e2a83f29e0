package memalloc

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"
)

// NewRegion returns a size-byte arena suitable for handing to any of this
// package's New* constructors. It is not part of any allocator's control
// flow: the four allocators never call it themselves, own no heap of
// their own, and are just as happy operating on a region the caller
// obtained some other way (a static buffer, an mmap'd file, a stack
// array). NewRegion exists only because most callers don't already have
// one lying around.
//
// The returned bytes are not zeroed. The allocators in this package write
// only their own bookkeeping (free-list links, tags) into the region and
// never zero a payload before returning it, so allocated memory starts
// out with arbitrary contents.
func NewRegion(size int) []byte {
	return dirtmake.Bytes(size, size)
}

// NewPooledRegion is NewRegion backed by a size-class pool instead of a
// fresh allocation. Call the returned release func once the region (and
// anything built on top of it) is no longer needed.
func NewPooledRegion(size int) (region []byte, release func()) {
	region = mcache.Malloc(size)
	return region, func() { mcache.Free(region) }
}
