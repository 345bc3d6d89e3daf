package blocking

// AncestorPath returns e followed by its composed ancestors, stopping before
// anchor. Distributed content climbs through its insertion points rather than
// its structural parent. A zero e yields an empty path.
func AncestorPath[E comparable](tree Tree[E], anchor, e E) []E {
	var zero E
	var path []E
	for cur := e; cur != zero && cur != anchor; {
		if tree.IsElement(cur) {
			path = append(path, cur)
		}
		if points := tree.DestinationInsertionPoints(cur); len(points) > 0 {
			last := len(points) - 1
			path = append(path, points[:last]...)
			cur = points[last]
			continue
		}
		cur = tree.Parent(cur)
	}
	return path
}

// DistributedSet returns the elements distributed into top's shadow root.
// They are logically inside top and are never inerted while it is on top.
func DistributedSet[E comparable](tree Tree[E], top E) map[E]struct{} {
	var zero E
	if top == zero {
		return nil
	}
	root := tree.ShadowRoot(top)
	if root == zero {
		return nil
	}
	children := tree.DistributedChildren(root)
	if len(children) == 0 {
		return nil
	}
	set := make(map[E]struct{}, len(children))
	for _, c := range children {
		set[c] = struct{}{}
	}
	return set
}

// Delta is the set of inert writes that moves the tree from the state of
// OldTop being on top to the state of NewTop being on top.
type Delta[E comparable] struct {
	NewTop E
	OldTop E
	// Release lists elements to un-inert, Block elements to inert. An element
	// present in both ends up inert.
	Release []E
	Block   []E

	Shared int // levels both paths have in common
	Pairs  int // levels resolved by toggling two sibling entries
	Sweeps int // levels resolved by sweeping all siblings
}

// Diff computes the Delta for a change of top without touching the tree.
//
// Both paths are consumed from their root-most entry inward. Identical entries
// are shared ancestors and need nothing. Two entries with the same parent only
// swap: the old one is blocked, the new one released. Otherwise the old
// entry's siblings are released and the new entry's siblings blocked, except
// for content distributed into newTop.
func Diff[E comparable](tree Tree[E], anchor, newTop, oldTop E) Delta[E] {
	var zero E
	d := Delta[E]{NewTop: newTop, OldTop: oldTop}
	oldPath := AncestorPath(tree, anchor, oldTop)
	newPath := AncestorPath(tree, anchor, newTop)
	skip := DistributedSet(tree, newTop)
	oldSkip := DistributedSet(tree, oldTop)

	for len(oldPath) > 0 || len(newPath) > 0 {
		oldEl, newEl := zero, zero
		if n := len(oldPath); n > 0 {
			oldEl, oldPath = oldPath[n-1], oldPath[:n-1]
		}
		if n := len(newPath); n > 0 {
			newEl, newPath = newPath[n-1], newPath[:n-1]
		}

		if oldEl == newEl {
			d.Shared++
			d.reconcileExemptions(tree, newEl, skip, oldSkip)
			continue
		}
		if oldEl != zero && newEl != zero && tree.Parent(oldEl) == tree.Parent(newEl) {
			d.Pairs++
			if _, exempt := skip[oldEl]; !exempt {
				d.Block = append(d.Block, oldEl)
			}
			d.Release = append(d.Release, newEl)
			d.reconcileExemptions(tree, newEl, skip, oldSkip)
			continue
		}
		d.Sweeps++
		if oldEl != zero {
			d.Release = appendSiblings(tree, d.Release, oldEl, nil)
		}
		if newEl != zero {
			d.Release = append(d.Release, newEl)
			d.Block = appendSiblings(tree, d.Block, newEl, skip)
		}
	}
	return d
}

// reconcileExemptions handles siblings of a new-path entry that the old and
// new top exempt differently. Levels that are not swept would otherwise keep
// the old top's exemptions.
func (d *Delta[E]) reconcileExemptions(tree Tree[E], entry E, skip, oldSkip map[E]struct{}) {
	if len(skip) == 0 && len(oldSkip) == 0 {
		return
	}
	parent := tree.Parent(entry)
	for e := range oldSkip {
		if _, still := skip[e]; !still && e != entry && tree.Parent(e) == parent {
			d.Block = append(d.Block, e)
		}
	}
	for e := range skip {
		if _, was := oldSkip[e]; !was && e != entry && tree.Parent(e) == parent {
			d.Release = append(d.Release, e)
		}
	}
}

// appendSiblings appends every previous and next element sibling of e that
// is not in skip.
func appendSiblings[E comparable](tree Tree[E], out []E, e E, skip map[E]struct{}) []E {
	var zero E
	for s := tree.PreviousElementSibling(e); s != zero; s = tree.PreviousElementSibling(s) {
		if _, ok := skip[s]; !ok {
			out = append(out, s)
		}
	}
	for s := tree.NextElementSibling(e); s != zero; s = tree.NextElementSibling(s) {
		if _, ok := skip[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Transition summarises an applied Delta.
type Transition[E comparable] struct {
	NewTop   E
	OldTop   E
	Shared   int
	Pairs    int
	Sweeps   int
	Released int // elements whose inert state was cleared
	Blocked  int // elements whose inert state was set
}

// Apply writes the delta to the tree: releases first, then blocks, so that
// blocking wins for elements listed in both. Non-inertable elements and
// elements already in the wanted state are skipped.
func (d Delta[E]) Apply(tree Tree[E]) Transition[E] {
	return d.apply(tree, nil)
}

// owner restricts releases to elements a Stack inerted itself and records
// the elements it inerts.
type owner[E comparable] map[E]struct{}

func (d Delta[E]) apply(tree Tree[E], owned owner[E]) Transition[E] {
	t := Transition[E]{
		NewTop: d.NewTop,
		OldTop: d.OldTop,
		Shared: d.Shared,
		Pairs:  d.Pairs,
		Sweeps: d.Sweeps,
	}
	blocked := make(map[E]struct{}, len(d.Block))
	for _, e := range d.Block {
		blocked[e] = struct{}{}
	}
	for _, e := range d.Release {
		if _, ok := blocked[e]; ok || !tree.Inertable(e) || !tree.IsInert(e) {
			continue
		}
		if owned != nil {
			if _, mine := owned[e]; !mine {
				continue
			}
			delete(owned, e)
		}
		tree.SetInert(e, false)
		t.Released++
	}
	for _, e := range d.Block {
		if !tree.Inertable(e) || tree.IsInert(e) {
			continue
		}
		if owned != nil {
			owned[e] = struct{}{}
		}
		tree.SetInert(e, true)
		t.Blocked++
	}
	return t
}

// TopChanged computes and applies the delta for a change of top from oldTop
// to newTop. Either may be the zero value: a zero oldTop means nothing was
// blocking, a zero newTop releases everything oldTop's path had inerted.
func TopChanged[E comparable](tree Tree[E], anchor, newTop, oldTop E) Transition[E] {
	return Diff(tree, anchor, newTop, oldTop).Apply(tree)
}
