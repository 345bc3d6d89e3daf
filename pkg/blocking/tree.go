// Package blocking keeps a stack of blocking elements over a document tree
// and makes everything outside the top element inert.
//
// The top element, its composed ancestors and the content distributed into
// its shadow root stay interactive. On every change of top, the ancestor
// paths of the old and new top are compared from the anchor downward so that
// levels both paths share are left alone and only the differing levels are
// touched.
//
// All operations are synchronous and expect a single goroutine, the one that
// owns the document. Calling back into a Stack from a SetInert implementation
// while a transition is being applied is not supported; such calls are
// logged and ignored.
package blocking

// Tree is the set of host-tree capabilities the propagator consumes. The zero
// value of E stands for "no element".
type Tree[E comparable] interface {
	// Parent returns the structural parent, or the host for a shadow root.
	Parent(e E) E
	// DestinationInsertionPoints returns the insertion points e is distributed
	// through, nearest first. Nodes that take no part in distribution return
	// an empty slice.
	DestinationInsertionPoints(e E) []E
	PreviousElementSibling(e E) E
	NextElementSibling(e E) E
	// IsElement is false for shadow roots and other fragments; those are
	// walked through but never appear in an ancestor path.
	IsElement(e E) bool
	// ShadowRoot returns the composition root hosted by e, if any.
	ShadowRoot(e E) E
	// DistributedChildren returns the elements rendered inside the insertion
	// points of a composition root.
	DistributedChildren(root E) []E
	// Inertable is false for elements that must never carry inert state
	// (style, template, script).
	Inertable(e E) bool
	IsInert(e E) bool
	// SetInert is the only write the propagator performs. It must be
	// idempotent.
	SetInert(e E, inert bool)
}
