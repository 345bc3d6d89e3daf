package html

import (
	"errors"
	"fmt"
	"strings"

	"blockade/pkg/selector"
)

// Insertion points are <slot> elements and legacy <content> elements inside a
// shadow root. A light child of a host is assigned to the first insertion
// point in tree order that accepts it.

// IsInsertionPoint reports whether n is a <slot> or <content> element.
func (n *Node) IsInsertionPoint() bool {
	return n.IsElement() && (n.TagName == "slot" || n.TagName == "content")
}

// ShadowScope returns the shadow root n lives in, or nil for document nodes.
func (n *Node) ShadowScope() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == FragmentNode {
			return cur
		}
	}
	return nil
}

// InsertionPoints lists the insertion points of a shadow root in tree order.
// Nested shadow roots are separate scopes and are not entered.
func InsertionPoints(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.IsInsertionPoint() {
				out = append(out, c)
			}
			if c.IsElement() {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

func accepts(point, n *Node) bool {
	switch point.TagName {
	case "slot":
		name, _ := point.GetAttribute("name")
		want, _ := n.GetAttribute("slot")
		return name == want
	case "content":
		sel, _ := point.GetAttribute("select")
		if strings.TrimSpace(sel) == "" {
			return true
		}
		g, err := selector.Parse(sel)
		if err != nil || !g.IsCompound() {
			return false
		}
		return g.Match(view{n})
	}
	return false
}

// AssignedSlot returns the insertion point n is distributed into, if n is a
// light child of a shadow host.
func (n *Node) AssignedSlot() *Node {
	if !n.IsElement() || n.Parent == nil || n.Parent.ShadowRoot == nil {
		return nil
	}
	for _, point := range InsertionPoints(n.Parent.ShadowRoot) {
		if accepts(point, n) {
			return point
		}
	}
	return nil
}

// DestinationInsertionPoints returns the chain of insertion points n is
// routed through, nearest first. An insertion point that is itself a light
// child of another host is re-distributed, which extends the chain.
func (n *Node) DestinationInsertionPoints() []*Node {
	var chain []*Node
	for point := n.AssignedSlot(); point != nil; point = point.AssignedSlot() {
		chain = append(chain, point)
	}
	return chain
}

// AssignedNodes returns the light children of the host assigned to point.
func AssignedNodes(point *Node) []*Node {
	if !point.IsInsertionPoint() {
		return nil
	}
	scope := point.ShadowScope()
	if scope == nil || scope.Host == nil {
		return nil
	}
	var out []*Node
	for _, c := range scope.Host.Children {
		if c.AssignedSlot() == point {
			out = append(out, c)
		}
	}
	return out
}

// DistributedNodes is AssignedNodes with re-distributed insertion points
// replaced by whatever they carry.
func DistributedNodes(point *Node) []*Node {
	var out []*Node
	for _, n := range AssignedNodes(point) {
		if n.IsInsertionPoint() {
			out = append(out, DistributedNodes(n)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// DistributedChildren returns every element distributed into the insertion
// points of a shadow root.
func DistributedChildren(root *Node) []*Node {
	var out []*Node
	for _, point := range InsertionPoints(root) {
		out = append(out, DistributedNodes(point)...)
	}
	return out
}

// FlatParent is the parent in the rendered tree: the assigned insertion point
// for distributed content, the host for a shadow root, else the parent.
func (n *Node) FlatParent() *Node {
	if slot := n.AssignedSlot(); slot != nil {
		return slot
	}
	if n.Type == FragmentNode {
		return n.Host
	}
	return n.Parent
}

// EffectivelyInert reports whether n or any node it renders inside is inert.
func (n *Node) EffectivelyInert() bool {
	for cur := n; cur != nil; cur = cur.FlatParent() {
		if cur.Inert() {
			return true
		}
	}
	return false
}

// ComposedTree adapts *Node to the blocking package's tree capabilities.
// The zero value is ready to use.
type ComposedTree struct{}

func (ComposedTree) Parent(n *Node) *Node {
	if n.Type == FragmentNode {
		return n.Host
	}
	return n.Parent
}

func (ComposedTree) DestinationInsertionPoints(n *Node) []*Node {
	return n.DestinationInsertionPoints()
}

func (ComposedTree) PreviousElementSibling(n *Node) *Node { return n.PreviousElementSibling() }

func (ComposedTree) NextElementSibling(n *Node) *Node { return n.NextElementSibling() }

func (ComposedTree) IsElement(n *Node) bool { return n.IsElement() }

func (ComposedTree) ShadowRoot(n *Node) *Node { return n.ShadowRoot }

func (ComposedTree) DistributedChildren(root *Node) []*Node { return DistributedChildren(root) }

func (ComposedTree) Inertable(n *Node) bool { return n.Inertable() }

func (ComposedTree) IsInert(n *Node) bool { return n.Inert() }

func (ComposedTree) SetInert(n *Node, inert bool) { n.SetInert(inert) }

// view exposes a node to the selector package.
type view struct{ n *Node }

func (v view) LocalName() string { return v.n.TagName }

func (v view) Attribute(name string) (string, bool) { return v.n.GetAttribute(name) }

func (v view) ParentElement() (selector.Element, bool) {
	p := v.n.Parent
	if !p.IsElement() || p.TagName == "document" {
		return nil, false
	}
	return view{p}, true
}

func (v view) PreviousElementSibling() (selector.Element, bool) {
	prev := v.n.PreviousElementSibling()
	if prev == nil {
		return nil, false
	}
	return view{prev}, true
}

// Matches reports whether n matches the selector group.
func (n *Node) Matches(g selector.Group) bool {
	return n.IsElement() && g.Match(view{n})
}

// QuerySelectorAll returns descendants of n matching sel in tree order.
// With deep set, open and closed shadow trees are searched as well.
func (n *Node) QuerySelectorAll(sel string, deep bool) ([]*Node, error) {
	g, err := selector.Parse(sel)
	if err != nil {
		return nil, err
	}
	var out []*Node
	n.walk(deep, func(c *Node) bool {
		if c.Matches(g) {
			out = append(out, c)
		}
		return false
	})
	return out, nil
}

// QuerySelector returns the first match or nil.
func (n *Node) QuerySelector(sel string, deep bool) (*Node, error) {
	g, err := selector.Parse(sel)
	if err != nil {
		return nil, err
	}
	var found *Node
	n.walk(deep, func(c *Node) bool {
		if c.Matches(g) {
			found = c
			return true
		}
		return false
	})
	return found, nil
}

// ErrNoMatch is returned by Find when no element matches the selector.
var ErrNoMatch = errors.New("no element matches")

// Find returns the first element of the document matching sel, looking into
// shadow trees.
func (d *Document) Find(sel string) (*Node, error) {
	n, err := d.Root.QuerySelector(sel, true)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, sel)
	}
	return n, nil
}

// walk visits descendants of n (not n itself) depth-first. fn returns true to
// stop. A host's shadow tree is visited before its light children.
func (n *Node) walk(deep bool, fn func(*Node) bool) bool {
	if deep && n.ShadowRoot != nil {
		if n.ShadowRoot.walk(deep, fn) {
			return true
		}
	}
	for _, c := range n.Children {
		if c.IsElement() && fn(c) {
			return true
		}
		if c.walk(deep, fn) {
			return true
		}
	}
	return false
}

// Walk visits every element below n, entering shadow trees.
func (n *Node) Walk(fn func(*Node)) {
	n.walk(true, func(c *Node) bool {
		fn(c)
		return false
	})
}
