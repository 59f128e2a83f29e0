// Package memalloc implements a family of freestanding memory allocators
// that partition a caller-supplied []byte region: bump, slab, free-list,
// and buddy. None of them call into the Go runtime's heap from their
// Alloc/Free paths, none are safe for concurrent use, and none of them
// resize or coalesce across instances — the caller owns the region and the
// handle for as long as the handle is in use.
package memalloc
