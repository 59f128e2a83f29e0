// Package list implements a doubly-linked intrusive list: the link fields
// live inside the caller's own struct rather than in a wrapper node, so
// building the list never allocates. It backs the free-list allocator's tag
// chain, where each node is itself a chunk header embedded in the managed
// region.
package list

import "unsafe"

// Node is meant to be embedded as a field of the caller's struct.
type Node struct {
	prev *Node
	next *Node
}

// List is a doubly-ended list of Nodes.
type List struct {
	first *Node
	last  *Node
}

// Init resets l to empty.
func (l *List) Init() {
	l.first = nil
	l.last = nil
}

// First returns the first node, or nil if l is empty.
func (l *List) First() *Node { return l.first }

// Next returns the node following n, or nil if n is the last node.
func (n *Node) Next() *Node { return n.next }

// Prev returns the node preceding n, or nil if n is the first node.
func (n *Node) Prev() *Node { return n.prev }

// Append adds n to the end of l.
func (l *List) Append(n *Node) {
	if l.last == nil {
		l.first = n
	} else {
		l.last.next = n
	}
	n.prev = l.last
	n.next = nil
	l.last = n
}

// InsertAfter inserts n immediately after after. after == nil means insert
// at the front of the list.
func (l *List) InsertAfter(after, n *Node) {
	if after == nil {
		n.prev = nil
		n.next = l.first
		if l.first != nil {
			l.first.prev = n
		}
		l.first = n
		if l.last == nil {
			l.last = n
		}
		return
	}
	n.next = after.next
	n.prev = after
	if after.next != nil {
		after.next.prev = n
	} else {
		l.last = n
	}
	after.next = n
}

// Remove removes n from l. Reports whether n was found in l.
// O(n): it walks the list to confirm membership before unlinking.
func (l *List) Remove(n *Node) bool {
	for it := l.first; it != nil; it = it.next {
		if it != n {
			continue
		}
		if it.prev != nil {
			it.prev.next = it.next
		} else {
			l.first = it.next
		}
		if it.next != nil {
			it.next.prev = it.prev
		} else {
			l.last = it.prev
		}
		n.prev = nil
		n.next = nil
		return true
	}
	return false
}

// PopFirst removes and returns the first node, or nil if l is empty.
func (l *List) PopFirst() *Node {
	n := l.first
	if n == nil {
		return nil
	}
	l.first = n.next
	if l.first != nil {
		l.first.prev = nil
	} else {
		l.last = nil
	}
	n.next = nil
	return n
}

// PopLast removes and returns the last node, or nil if l is empty.
func (l *List) PopLast() *Node {
	n := l.last
	if n == nil {
		return nil
	}
	l.last = n.prev
	if l.last != nil {
		l.last.next = nil
	} else {
		l.first = nil
	}
	n.prev = nil
	return n
}

// IsEmpty reports whether l has no nodes.
func (l *List) IsEmpty() bool { return l.first == nil }

// Count walks the whole list and returns its length. O(n).
func (l *List) Count() int {
	n := 0
	for it := l.first; it != nil; it = it.next {
		n++
	}
	return n
}

// ContainerOf recovers a pointer to the struct of type T embedding n at
// byte offset fieldOffset. Callers typically pass unsafe.Offsetof(t.Node)
// for fieldOffset, where t is a zero value of T.
func ContainerOf[T any](n *Node, fieldOffset uintptr) *T {
	return (*T)(unsafe.Pointer(uintptr(unsafe.Pointer(n)) - fieldOffset))
}
